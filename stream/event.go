/*
event.go - Schema-tolerant point-of-sale event records

PURPOSE:
  RawEvent is the decoded form of one message payload: an arbitrary-keyed
  JSON object. No field is required; every field of interest has a named
  accessor with defined coercion behavior so downstream stages never touch
  the map directly.

FIELDS OF INTEREST:
  Store ID, Product ID, Employee ID, Quantity, Invoice Total, Currency,
  Date, Time, Payment Method, Discount

DESIGN:
  The producer is outside our control, so the record is deliberately
  untyped at the edge. Typed coercion happens in the enrich package; this
  file only answers "what is in the payload" questions.

SEE ALSO:
  - enrich/enrich.go: coercion and join rules
*/
package stream

import (
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Well-known payload field names, exactly as the producer emits them.
const (
	FieldStoreID       = "Store ID"
	FieldProductID     = "Product ID"
	FieldEmployeeID    = "Employee ID"
	FieldQuantity      = "Quantity"
	FieldInvoiceTotal  = "Invoice Total"
	FieldCurrency      = "Currency"
	FieldDate          = "Date"
	FieldTime          = "Time"
	FieldPaymentMethod = "Payment Method"
	FieldDiscount      = "Discount"
)

// RawEvent is one decoded stream message. Fields holds the payload object
// as delivered; absent fields are simply absent.
type RawEvent struct {
	Fields map[string]any
}

// DecodeEvent parses a UTF-8 JSON object payload into a RawEvent.
// Non-object or invalid JSON yields ErrMalformedPayload.
func DecodeEvent(payload []byte) (RawEvent, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return RawEvent{}, ErrMalformedPayload
	}
	return RawEvent{Fields: fields}, nil
}

// Get returns the raw field value and whether it was present and non-null.
func (e RawEvent) Get(key string) (any, bool) {
	v, ok := e.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// StringField returns the canonical string form of a field, or "" and
// false when the field is absent or null. Numbers render without an
// exponent so numeric and string-typed IDs join against the same key.
func (e RawEvent) StringField(key string) (string, bool) {
	v, ok := e.Get(key)
	if !ok {
		return "", false
	}
	return CanonicalString(v), true
}

// Identity returns a canonical serialization of the event used for
// exact-duplicate detection: two events with equal fields produce equal
// identities regardless of key order in the original payload.
func (e RawEvent) Identity() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		raw, err := json.Marshal(e.Fields[k])
		if err != nil {
			b.WriteString(CanonicalString(e.Fields[k]))
		} else {
			b.Write(raw)
		}
		b.WriteByte(';')
	}
	return b.String()
}

// CanonicalString renders any decoded JSON value as a stable string key.
// Floats use the shortest round-tripping form, so 7.0 and "7" collide the
// way the reference joins expect.
func CanonicalString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
