/*
Package aggregate derives the dashboard metrics from the enriched window.

PURPOSE:
  Compute is a pure function: same enriched records + same reference cache
  in, byte-identical Snapshot out. Every table is recomputed from scratch
  per event; at the 1000-row window cap a full pass beats carrying
  incremental group state.

TABLES (see Snapshot):
  KPI totals, sales by city / country, top-7 products by quantity,
  top-5 cashiers by sales, payment-method sales and count distribution,
  discount buckets, top-7 stores by sales, per-record sales-over-time
  points, latest-20 transactions.

ORDERING:
  Group rows are collected in first-encountered order; ranked tables use
  sort.SliceStable so ties keep that order. Records with an absent group
  key are excluded from that one table only, never from the KPI totals.

SEE ALSO:
  - enrich/enrich.go: the input records
  - api/dto.go: the JSON shape served to the dashboard
*/
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
)

// Ranked-table truncation bounds, matching the dashboard layout.
const (
	TopProductsLimit  = 7
	TopCashiersLimit  = 5
	TopStoresLimit    = 7
	LatestViewLimit   = 20
	NoDiscountLabel   = "No Discount"
	zeroDiscountLabel = "0"
)

// =============================================================================
// SNAPSHOT - the full set of derived tables
// =============================================================================

// CityRow is one sales-by-city entry.
type CityRow struct {
	City     string
	SalesUSD decimal.Decimal
}

// CountryRow is one sales-by-country entry.
type CountryRow struct {
	Country  string
	SalesUSD decimal.Decimal
}

// ProductRow is one top-products entry. Description is nil when the
// product has no reference match.
type ProductRow struct {
	ProductID   string
	Description *string
	Quantity    decimal.Decimal
}

// CashierRow is one top-cashiers entry. Name is transliterated for
// display and nil when the employee has no reference match.
type CashierRow struct {
	EmployeeID string
	Name       *string
	SalesUSD   decimal.Decimal
}

// PaymentRow is one sales-by-payment-method entry.
type PaymentRow struct {
	Method   string
	SalesUSD decimal.Decimal
}

// PaymentCountRow is one payment-method distribution entry.
type PaymentCountRow struct {
	Method string
	Count  int
}

// DiscountRow is one discount-bucket entry. Buckets key on the raw
// discount value; zero is relabeled "No Discount".
type DiscountRow struct {
	Discount string
	SalesUSD decimal.Decimal
	Count    int
}

// StoreRow is one top-stores entry. StoreName is nil when unmatched.
type StoreRow struct {
	StoreID   string
	StoreName *string
	SalesUSD  decimal.Decimal
}

// TimePoint is one sales-over-time sample, in arrival order, for records
// with a parsable Time field.
type TimePoint struct {
	Time     time.Time
	SalesUSD decimal.Decimal
}

// Snapshot is the full aggregate output for one window state. It is
// replaced wholesale on every recomputation and never mutated after
// Compute returns.
type Snapshot struct {
	TotalSalesUSD decimal.Decimal
	TotalQuantity decimal.Decimal

	SalesByCity    []CityRow
	SalesByCountry []CountryRow
	TopProducts    []ProductRow
	TopCashiers    []CashierRow
	SalesByPayment []PaymentRow
	PaymentCounts  []PaymentCountRow
	SalesByDiscount []DiscountRow
	TopStores      []StoreRow
	SalesOverTime  []TimePoint

	// Latest holds the last LatestViewLimit enriched records in arrival
	// order, passed through unmodified for the transactions view.
	Latest []enrich.Record

	WindowSize int
	ComputedAt time.Time
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute derives the Snapshot from the enriched window. Pure and
// deterministic; the cache is read-only.
func Compute(records []enrich.Record, cache *refdata.Cache) *Snapshot {
	snap := &Snapshot{
		TotalSalesUSD: decimal.Zero,
		TotalQuantity: decimal.Zero,
		WindowSize:    len(records),
		ComputedAt:    time.Now().UTC(),
	}

	cities := newGroupSums()
	countries := newGroupSums()
	products := newGroupSums()
	cashiers := newGroupSums()
	payments := newGroupSums()
	discounts := newGroupSums()
	stores := newGroupSums()

	for _, rec := range records {
		snap.TotalSalesUSD = snap.TotalSalesUSD.Add(rec.InvoiceTotalUSD)
		snap.TotalQuantity = snap.TotalQuantity.Add(rec.Quantity)

		if rec.City != nil {
			cities.add(*rec.City, rec.InvoiceTotalUSD)
		}
		if rec.Country != nil {
			countries.add(*rec.Country, rec.InvoiceTotalUSD)
		}
		if rec.ProductID != "" {
			products.add(rec.ProductID, rec.Quantity)
		}
		if rec.EmployeeID != "" {
			cashiers.add(rec.EmployeeID, rec.InvoiceTotalUSD)
		}
		if rec.PaymentMethod != "" {
			payments.add(rec.PaymentMethod, rec.InvoiceTotalUSD)
		}
		if rec.Discount != "" {
			discounts.add(rec.Discount, rec.InvoiceTotalUSD)
		}
		if rec.StoreID != "" {
			stores.add(rec.StoreID, rec.InvoiceTotalUSD)
		}
		if rec.TimeOfDay != nil {
			snap.SalesOverTime = append(snap.SalesOverTime, TimePoint{
				Time:     *rec.TimeOfDay,
				SalesUSD: rec.InvoiceTotalUSD,
			})
		}
	}

	snap.SalesByCity = cityTable(cities)
	snap.SalesByCountry = countryTable(countries)
	snap.TopProducts = topProducts(products, cache)
	snap.TopCashiers = topCashiers(cashiers, cache)
	snap.SalesByPayment, snap.PaymentCounts = paymentTables(payments)
	snap.SalesByDiscount = discountTable(discounts)
	snap.TopStores = topStores(stores, cache)
	snap.Latest = latest(records)

	return snap
}

// =============================================================================
// GROUP-BY ACCUMULATOR
// =============================================================================

// groupSums accumulates (sum, count) per key, remembering the order in
// which keys were first seen so ties can be broken deterministically.
type groupSums struct {
	order  []string
	sums   map[string]decimal.Decimal
	counts map[string]int
}

func newGroupSums() *groupSums {
	return &groupSums{
		sums:   make(map[string]decimal.Decimal),
		counts: make(map[string]int),
	}
}

func (g *groupSums) add(key string, amount decimal.Decimal) {
	if _, seen := g.sums[key]; !seen {
		g.order = append(g.order, key)
		g.sums[key] = decimal.Zero
	}
	g.sums[key] = g.sums[key].Add(amount)
	g.counts[key]++
}

// sortedDesc returns the keys stable-sorted by descending sum; ties keep
// first-encountered order.
func (g *groupSums) sortedDesc() []string {
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return g.sums[keys[i]].GreaterThan(g.sums[keys[j]])
	})
	return keys
}

// =============================================================================
// TABLE BUILDERS
// =============================================================================

func cityTable(g *groupSums) []CityRow {
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	sort.Strings(keys)

	rows := make([]CityRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, CityRow{City: k, SalesUSD: g.sums[k]})
	}
	return rows
}

func countryTable(g *groupSums) []CountryRow {
	rows := make([]CountryRow, 0, len(g.order))
	for _, k := range g.sortedDesc() {
		rows = append(rows, CountryRow{Country: k, SalesUSD: g.sums[k]})
	}
	return rows
}

func topProducts(g *groupSums, cache *refdata.Cache) []ProductRow {
	rows := make([]ProductRow, 0, TopProductsLimit)
	for _, k := range truncate(g.sortedDesc(), TopProductsLimit) {
		row := ProductRow{ProductID: k, Quantity: g.sums[k]}
		if p, ok := cache.Products[k]; ok {
			desc := p.Description
			row.Description = &desc
		}
		rows = append(rows, row)
	}
	return rows
}

func topCashiers(g *groupSums, cache *refdata.Cache) []CashierRow {
	rows := make([]CashierRow, 0, TopCashiersLimit)
	for _, k := range truncate(g.sortedDesc(), TopCashiersLimit) {
		row := CashierRow{EmployeeID: k, SalesUSD: g.sums[k]}
		if e, ok := cache.Employees[k]; ok {
			name := enrich.Transliterate(e.Name)
			row.Name = &name
		}
		rows = append(rows, row)
	}
	return rows
}

func paymentTables(g *groupSums) ([]PaymentRow, []PaymentCountRow) {
	sales := make([]PaymentRow, 0, len(g.order))
	counts := make([]PaymentCountRow, 0, len(g.order))
	for _, k := range g.order {
		sales = append(sales, PaymentRow{Method: k, SalesUSD: g.sums[k]})
	}
	// Distribution sorted by descending count, ties first-encountered.
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return g.counts[keys[i]] > g.counts[keys[j]]
	})
	for _, k := range keys {
		counts = append(counts, PaymentCountRow{Method: k, Count: g.counts[k]})
	}
	return sales, counts
}

func discountTable(g *groupSums) []DiscountRow {
	rows := make([]DiscountRow, 0, len(g.order))
	for _, k := range g.order {
		label := k
		if label == zeroDiscountLabel {
			label = NoDiscountLabel
		}
		rows = append(rows, DiscountRow{
			Discount: label,
			SalesUSD: g.sums[k],
			Count:    g.counts[k],
		})
	}
	return rows
}

func topStores(g *groupSums, cache *refdata.Cache) []StoreRow {
	rows := make([]StoreRow, 0, TopStoresLimit)
	for _, k := range truncate(g.sortedDesc(), TopStoresLimit) {
		row := StoreRow{StoreID: k, SalesUSD: g.sums[k]}
		if s, ok := cache.Stores[k]; ok {
			name := s.Name
			row.StoreName = &name
		}
		rows = append(rows, row)
	}
	return rows
}

func latest(records []enrich.Record) []enrich.Record {
	n := len(records)
	if n > LatestViewLimit {
		records = records[n-LatestViewLimit:]
	}
	out := make([]enrich.Record, len(records))
	copy(out, records)
	return out
}

func truncate(keys []string, limit int) []string {
	if len(keys) > limit {
		return keys[:limit]
	}
	return keys
}
