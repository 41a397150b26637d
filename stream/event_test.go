/*
event_test.go - RawEvent decode, field coercion, and identity
*/
package stream

import (
	"errors"
	"testing"
)

func TestDecodeEvent_ValidObject(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"Store ID": 7, "Currency": "EUR", "Quantity": 2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := ev.StringField(FieldStoreID); got != "7" {
		t.Fatalf("expected store id 7, got %q", got)
	}
	if got, _ := ev.StringField(FieldCurrency); got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}
}

func TestDecodeEvent_MalformedPayload(t *testing.T) {
	for _, payload := range []string{`not json`, `[1,2,3]`, `"just a string"`, ``} {
		_, err := DecodeEvent([]byte(payload))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("payload %q: expected ErrMalformedPayload, got %v", payload, err)
		}
	}
}

func TestStringField_AbsentAndNull(t *testing.T) {
	ev := RawEvent{Fields: map[string]any{"Currency": nil}}

	if _, ok := ev.StringField("Currency"); ok {
		t.Fatal("null field reported as present")
	}
	if _, ok := ev.StringField("Missing"); ok {
		t.Fatal("absent field reported as present")
	}
}

func TestCanonicalString_NumbersJoinAsStrings(t *testing.T) {
	// Numeric and string-typed IDs must land on the same key.
	cases := map[any]string{
		float64(7):   "7",
		float64(7.5): "7.5",
		"  7 ":       "7",
		true:         "true",
	}
	for in, want := range cases {
		if got := CanonicalString(in); got != want {
			t.Fatalf("CanonicalString(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestIdentity_KeyOrderIndependent(t *testing.T) {
	// GIVEN: two payloads with the same fields in different order
	a, err := DecodeEvent([]byte(`{"Store ID": 1, "Quantity": 2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, err := DecodeEvent([]byte(`{"Quantity": 2, "Store ID": 1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// THEN: identities collide
	if a.Identity() != b.Identity() {
		t.Fatalf("identities differ:\n%s\n%s", a.Identity(), b.Identity())
	}

	// AND: a different value produces a different identity
	c, _ := DecodeEvent([]byte(`{"Store ID": 1, "Quantity": 3}`))
	if a.Identity() == c.Identity() {
		t.Fatal("distinct events share an identity")
	}
}
