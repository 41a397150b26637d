/*
enrich.go - Normalization and enrichment of the event window

PURPOSE:
  Turns the raw window snapshot into typed, joined records ready for
  aggregation. Runs over the whole window on every new event; at the
  1000-row cap a full pass is cheaper than maintaining incremental state.

PIPELINE (in order):
  1. Collapse exact duplicates (all fields equal), keeping first position
  2. Coerce Quantity / Invoice Total to decimal, unparsable -> 0
  3. Coerce Date (tolerant parse) and Time (HH:MM:SS), unparsable -> nil
  4. Canonicalize Store ID to a string key
  5. Left-join the Stores reference table; unmatched keeps nil
     Store Name / Country / City, the record is retained
  6. Derive Invoice Total (USD) from the static currency table

NULL SEMANTICS:
  Absent or unparsable group keys (store, product, employee, payment
  method, discount) come out as the empty string / nil and are excluded
  from their group-by tables downstream, never from the KPI totals.

SEE ALSO:
  - aggregate/aggregate.go: the consumer of []Record
  - currency.go: the USD table
*/
package enrich

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"
)

// Record is one enriched transaction: the raw event plus coerced fields,
// denormalized store attributes, and the derived USD total.
type Record struct {
	Event stream.RawEvent

	StoreID    string // "" when absent
	ProductID  string
	EmployeeID string

	Quantity     decimal.Decimal
	InvoiceTotal decimal.Decimal
	Currency     string

	Date      *time.Time // calendar date, nil when unparsable
	TimeOfDay *time.Time // time on the zero date, nil when unparsable

	PaymentMethod string // "" when absent
	Discount      string // canonical raw value, "" when absent

	InvoiceTotalUSD decimal.Decimal

	// Denormalized from the Stores reference table; nil when unmatched.
	StoreName *string
	Country   *string
	City      *string
}

// Normalize runs the full normalization and enrichment pass over a window
// snapshot. Idempotent: feeding its own output's events back in yields
// the same records.
func Normalize(events []stream.RawEvent, cache *refdata.Cache) []Record {
	deduped := dedupe(events)

	records := make([]Record, 0, len(deduped))
	for _, ev := range deduped {
		rec := Record{Event: ev}

		rec.StoreID, _ = ev.StringField(stream.FieldStoreID)
		rec.ProductID, _ = ev.StringField(stream.FieldProductID)
		rec.EmployeeID, _ = ev.StringField(stream.FieldEmployeeID)
		rec.PaymentMethod, _ = ev.StringField(stream.FieldPaymentMethod)
		rec.Discount, _ = ev.StringField(stream.FieldDiscount)
		rec.Currency, _ = ev.StringField(stream.FieldCurrency)

		rec.Quantity = coerceDecimal(ev, stream.FieldQuantity)
		rec.InvoiceTotal = coerceDecimal(ev, stream.FieldInvoiceTotal)
		rec.Date = coerceDate(ev)
		rec.TimeOfDay = coerceTime(ev)

		if store, ok := cache.Stores[refdata.CanonicalID(rec.StoreID)]; ok && rec.StoreID != "" {
			rec.StoreName = ptr(store.Name)
			rec.Country = ptr(store.Country)
			rec.City = ptr(store.City)
		}

		rec.InvoiceTotalUSD = ToUSD(rec.InvoiceTotal, rec.Currency)
		records = append(records, rec)
	}
	return records
}

// dedupe collapses exact-duplicate events to their first occurrence,
// preserving arrival order.
func dedupe(events []stream.RawEvent) []stream.RawEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]stream.RawEvent, 0, len(events))
	for _, ev := range events {
		id := ev.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, ev)
	}
	return out
}

// coerceDecimal reads a numeric field. Missing, null, or unparsable
// values become zero.
func coerceDecimal(ev stream.RawEvent, field string) decimal.Decimal {
	v, ok := ev.Get(field)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(stream.CanonicalString(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// coerceDate parses the Date field tolerantly and truncates to the
// calendar day. Unparsable -> nil.
func coerceDate(ev stream.RawEvent) *time.Time {
	s, ok := ev.StringField(stream.FieldDate)
	if !ok || s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

// coerceTime parses the Time field as HH:MM:SS. Unparsable -> nil.
func coerceTime(ev stream.RawEvent) *time.Time {
	s, ok := ev.StringField(stream.FieldTime)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return nil
	}
	return &t
}

func ptr(s string) *string {
	return &s
}
