/*
aggregate_test.go - Aggregation engine tables

Tests for:
- KPI totals including unmatched-store records
- Discount bucket relabeling and counts
- Top-N truncation, descending order, stable ties
- Null group keys excluded from their table only
- Latest-transactions length
*/
package aggregate

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"
)

func testCache() *refdata.Cache {
	return &refdata.Cache{
		Stores: map[string]refdata.Store{
			"1": {ID: "1", Name: "Skippy Cairo", Country: "Egypt", City: "Cairo"},
			"2": {ID: "2", Name: "Skippy Paris", Country: "France", City: "Paris"},
		},
		Products: map[string]refdata.Product{
			"p-1": {ID: "p-1", Description: "Denim Jacket"},
		},
		Employees: map[string]refdata.Employee{
			"e-1": {ID: "e-1", Name: "José Gonçalves"},
		},
	}
}

// records normalizes a set of raw payload maps through the real enrich
// stage so the engine sees exactly what it sees in production.
func records(t *testing.T, fields ...map[string]any) []enrich.Record {
	t.Helper()
	events := make([]stream.RawEvent, 0, len(fields))
	for _, f := range fields {
		events = append(events, stream.RawEvent{Fields: f})
	}
	return enrich.Normalize(events, testCache())
}

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCompute_KPITotals(t *testing.T) {
	// GIVEN: two matched records and one with an unknown store
	recs := records(t,
		map[string]any{"Store ID": float64(1), "Invoice Total": float64(10), "Quantity": float64(2)},
		map[string]any{"Store ID": float64(2), "Invoice Total": float64(20), "Quantity": float64(3)},
		map[string]any{"Store ID": "999", "Invoice Total": float64(5), "Quantity": float64(1)},
	)

	snap := Compute(recs, testCache())

	// THEN: the unmatched record still counts toward the totals
	if !snap.TotalSalesUSD.Equal(usd(35)) {
		t.Fatalf("expected total sales 35, got %s", snap.TotalSalesUSD)
	}
	if !snap.TotalQuantity.Equal(usd(6)) {
		t.Fatalf("expected total quantity 6, got %s", snap.TotalQuantity)
	}

	// AND: it is excluded from the city and country tables, not an error
	for _, row := range snap.SalesByCity {
		if row.City == "" {
			t.Fatal("null city leaked into the city table")
		}
	}
	if len(snap.SalesByCity) != 2 || len(snap.SalesByCountry) != 2 {
		t.Fatalf("expected 2 city and 2 country rows, got %d / %d",
			len(snap.SalesByCity), len(snap.SalesByCountry))
	}
}

func TestCompute_CountrySortedDescending(t *testing.T) {
	recs := records(t,
		map[string]any{"Store ID": float64(1), "Invoice Total": float64(10)},
		map[string]any{"Store ID": float64(2), "Invoice Total": float64(30)},
		map[string]any{"Store ID": float64(1), "Invoice Total": float64(5)},
	)

	snap := Compute(recs, testCache())

	if snap.SalesByCountry[0].Country != "France" {
		t.Fatalf("expected France first, got %s", snap.SalesByCountry[0].Country)
	}
	if !snap.SalesByCountry[0].SalesUSD.Equal(usd(30)) || !snap.SalesByCountry[1].SalesUSD.Equal(usd(15)) {
		t.Fatalf("unexpected country sums: %v", snap.SalesByCountry)
	}
}

func TestCompute_DiscountBuckets(t *testing.T) {
	// GIVEN: discounts [0, 0, 0.1]
	recs := records(t,
		map[string]any{"Discount": float64(0), "Invoice Total": float64(10)},
		map[string]any{"Discount": float64(0), "Invoice Total": float64(20)},
		map[string]any{"Discount": float64(0.1), "Invoice Total": float64(30)},
	)

	snap := Compute(recs, testCache())

	// THEN: exactly two buckets
	if len(snap.SalesByDiscount) != 2 {
		t.Fatalf("expected 2 discount buckets, got %d", len(snap.SalesByDiscount))
	}
	noDiscount := snap.SalesByDiscount[0]
	if noDiscount.Discount != NoDiscountLabel || noDiscount.Count != 2 || !noDiscount.SalesUSD.Equal(usd(30)) {
		t.Fatalf("unexpected no-discount bucket: %+v", noDiscount)
	}
	tenPct := snap.SalesByDiscount[1]
	if tenPct.Discount != "0.1" || tenPct.Count != 1 || !tenPct.SalesUSD.Equal(usd(30)) {
		t.Fatalf("unexpected 0.1 bucket: %+v", tenPct)
	}
}

func TestCompute_DiscountAbsentExcluded(t *testing.T) {
	recs := records(t,
		map[string]any{"Invoice Total": float64(10)},
		map[string]any{"Discount": float64(0.2), "Invoice Total": float64(20)},
	)

	snap := Compute(recs, testCache())

	if len(snap.SalesByDiscount) != 1 {
		t.Fatalf("expected 1 discount bucket, got %d", len(snap.SalesByDiscount))
	}
}

func TestCompute_TopProducts_TruncatedStableDescending(t *testing.T) {
	// GIVEN: ten products, quantities descending from p-0
	var fields []map[string]any
	for i := 0; i < 10; i++ {
		fields = append(fields, map[string]any{
			"Product ID": fmt.Sprintf("p-%d", i),
			"Quantity":   float64(10 - i),
		})
	}
	recs := records(t, fields...)

	snap := Compute(recs, testCache())

	// THEN: at most 7 rows, descending
	if len(snap.TopProducts) != TopProductsLimit {
		t.Fatalf("expected %d rows, got %d", TopProductsLimit, len(snap.TopProducts))
	}
	for i := 1; i < len(snap.TopProducts); i++ {
		if snap.TopProducts[i].Quantity.GreaterThan(snap.TopProducts[i-1].Quantity) {
			t.Fatalf("rows not descending at %d: %v", i, snap.TopProducts)
		}
	}
	// AND: p-0 leads with no reference match, p-1 joins to its description
	if snap.TopProducts[0].ProductID != "p-0" || snap.TopProducts[0].Description != nil {
		t.Fatalf("expected unreferenced p-0 first: %+v", snap.TopProducts[0])
	}
	if snap.TopProducts[1].Description == nil || *snap.TopProducts[1].Description != "Denim Jacket" {
		t.Fatalf("expected p-1 joined to Denim Jacket: %+v", snap.TopProducts[1])
	}
}

func TestCompute_TopProducts_TieKeepsFirstEncounteredOrder(t *testing.T) {
	recs := records(t,
		map[string]any{"Product ID": "p-b", "Quantity": float64(5)},
		map[string]any{"Product ID": "p-a", "Quantity": float64(5)},
	)

	snap := Compute(recs, testCache())

	if snap.TopProducts[0].ProductID != "p-b" || snap.TopProducts[1].ProductID != "p-a" {
		t.Fatalf("tie broke first-encountered order: %v", snap.TopProducts)
	}
}

func TestCompute_TopCashiers_TransliteratedAndCapped(t *testing.T) {
	var fields []map[string]any
	for i := 0; i < 8; i++ {
		fields = append(fields, map[string]any{
			"Employee ID":   fmt.Sprintf("e-%d", i),
			"Invoice Total": float64(100 - i),
		})
	}
	// e-1 rings up a second, larger sale and overtakes e-0.
	fields = append(fields, map[string]any{"Employee ID": "e-1", "Invoice Total": float64(50)})
	recs := records(t, fields...)

	snap := Compute(recs, testCache())

	if len(snap.TopCashiers) != TopCashiersLimit {
		t.Fatalf("expected %d cashiers, got %d", TopCashiersLimit, len(snap.TopCashiers))
	}
	if snap.TopCashiers[0].EmployeeID != "e-1" {
		t.Fatalf("expected e-1 first, got %s", snap.TopCashiers[0].EmployeeID)
	}
	if snap.TopCashiers[0].Name == nil || *snap.TopCashiers[0].Name != "Jose Goncalves" {
		t.Fatalf("expected transliterated name, got %v", snap.TopCashiers[0].Name)
	}
}

func TestCompute_PaymentTables(t *testing.T) {
	recs := records(t,
		map[string]any{"Payment Method": "Cash", "Invoice Total": float64(10)},
		map[string]any{"Payment Method": "Card", "Invoice Total": float64(30)},
		map[string]any{"Payment Method": "Cash", "Invoice Total": float64(15)},
		map[string]any{"Invoice Total": float64(99)}, // no payment method
	)

	snap := Compute(recs, testCache())

	if len(snap.SalesByPayment) != 2 {
		t.Fatalf("expected 2 payment rows, got %d", len(snap.SalesByPayment))
	}
	// Sales table in first-encountered order.
	if snap.SalesByPayment[0].Method != "Cash" || !snap.SalesByPayment[0].SalesUSD.Equal(usd(25)) {
		t.Fatalf("unexpected payment sales: %v", snap.SalesByPayment)
	}
	// Distribution sorted by count, Cash (2) before Card (1).
	if snap.PaymentCounts[0].Method != "Cash" || snap.PaymentCounts[0].Count != 2 {
		t.Fatalf("unexpected payment distribution: %v", snap.PaymentCounts)
	}
}

func TestCompute_TopStores_JoinedToName(t *testing.T) {
	recs := records(t,
		map[string]any{"Store ID": float64(1), "Invoice Total": float64(10)},
		map[string]any{"Store ID": "999", "Invoice Total": float64(40)},
	)

	snap := Compute(recs, testCache())

	if len(snap.TopStores) != 2 {
		t.Fatalf("expected 2 store rows, got %d", len(snap.TopStores))
	}
	if snap.TopStores[0].StoreID != "999" || snap.TopStores[0].StoreName != nil {
		t.Fatalf("expected unmatched store 999 first with nil name: %+v", snap.TopStores[0])
	}
	if snap.TopStores[1].StoreName == nil || *snap.TopStores[1].StoreName != "Skippy Cairo" {
		t.Fatalf("expected joined store name: %+v", snap.TopStores[1])
	}
}

func TestCompute_LatestTransactionsLength(t *testing.T) {
	for _, n := range []int{0, 5, 20, 35} {
		var fields []map[string]any
		for i := 0; i < n; i++ {
			fields = append(fields, map[string]any{"Invoice ID": fmt.Sprintf("inv-%d", i)})
		}
		recs := records(t, fields...)

		snap := Compute(recs, testCache())

		want := n
		if want > LatestViewLimit {
			want = LatestViewLimit
		}
		if len(snap.Latest) != want {
			t.Fatalf("n=%d: expected %d latest records, got %d", n, want, len(snap.Latest))
		}
		if n > LatestViewLimit {
			// Tail of the window, arrival order.
			first, _ := snap.Latest[0].Event.StringField("Invoice ID")
			if first != fmt.Sprintf("inv-%d", n-LatestViewLimit) {
				t.Fatalf("latest view not the window tail: first=%s", first)
			}
		}
	}
}

func TestCompute_SalesOverTime_SkipsNullTimes(t *testing.T) {
	recs := records(t,
		map[string]any{"Time": "09:00:00", "Invoice Total": float64(10)},
		map[string]any{"Time": "bogus", "Invoice Total": float64(20)},
		map[string]any{"Invoice Total": float64(30)},
	)

	snap := Compute(recs, testCache())

	if len(snap.SalesOverTime) != 1 {
		t.Fatalf("expected 1 time point, got %d", len(snap.SalesOverTime))
	}
	// The null-time records still count toward totals.
	if !snap.TotalSalesUSD.Equal(usd(60)) {
		t.Fatalf("expected total 60, got %s", snap.TotalSalesUSD)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	recs := records(t,
		map[string]any{"Store ID": float64(1), "Invoice Total": float64(10), "Payment Method": "Cash"},
		map[string]any{"Store ID": float64(2), "Invoice Total": float64(20), "Payment Method": "Card"},
	)

	a := Compute(recs, testCache())
	b := Compute(recs, testCache())

	if !a.TotalSalesUSD.Equal(b.TotalSalesUSD) || len(a.SalesByCountry) != len(b.SalesByCountry) {
		t.Fatal("repeated computation diverged")
	}
	for i := range a.SalesByCountry {
		if a.SalesByCountry[i].Country != b.SalesByCountry[i].Country ||
			!a.SalesByCountry[i].SalesUSD.Equal(b.SalesByCountry[i].SalesUSD) {
			t.Fatalf("country row %d diverged", i)
		}
	}
}
