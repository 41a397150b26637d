/*
handlers_test.go - Dashboard read API behavior

Tests for:
- 503 before the first processed event
- Snapshot and transactions payload shapes
- Holder publish/subscribe semantics
*/
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/aggregate"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/logging"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"
)

func testSnapshot(t *testing.T) (*aggregate.Snapshot, []enrich.Record) {
	t.Helper()
	cache := &refdata.Cache{
		Stores: map[string]refdata.Store{
			"1": {ID: "1", Name: "Skippy Cairo", Country: "Egypt", City: "Cairo"},
		},
		Products:  map[string]refdata.Product{},
		Employees: map[string]refdata.Employee{},
	}
	records := enrich.Normalize([]stream.RawEvent{
		{Fields: map[string]any{"Store ID": float64(1), "Invoice Total": float64(92), "Currency": "EUR"}},
	}, cache)
	return aggregate.Compute(records, cache), records
}

func TestGetSnapshot_BeforeFirstEvent(t *testing.T) {
	h := NewHandler(NewHolder(), logging.NewLogger(true))
	router := NewRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first event, got %d", rec.Code)
	}
}

func TestGetSnapshot_AfterPublish(t *testing.T) {
	// GIVEN: a holder with one published snapshot
	holder := NewHolder()
	snap, records := testSnapshot(t)
	holder.Publish(snap, records)

	router := NewRouter(NewHandler(holder, logging.NewLogger(true)))

	// WHEN: fetching the snapshot
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	// THEN: the DTO carries the converted totals
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body)
	}
	var dto SnapshotDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dto.TotalSalesUSD != 100 {
		t.Fatalf("expected 92 EUR to serve as 100 USD, got %v", dto.TotalSalesUSD)
	}
	if dto.WindowSize != 1 || len(dto.Latest) != 1 {
		t.Fatalf("unexpected window: size=%d latest=%d", dto.WindowSize, len(dto.Latest))
	}
	if dto.Latest[0].StoreName == nil || *dto.Latest[0].StoreName != "Skippy Cairo" {
		t.Fatalf("expected joined store name in latest view: %+v", dto.Latest[0])
	}
}

func TestGetTransactions_AfterPublish(t *testing.T) {
	holder := NewHolder()
	snap, records := testSnapshot(t)
	holder.Publish(snap, records)

	router := NewRouter(NewHandler(holder, logging.NewLogger(true)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []TransactionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(out) != 1 || out[0].InvoiceTotalUSD != 100 {
		t.Fatalf("unexpected transactions payload: %+v", out)
	}
}

func TestHealth_ReportsPublishCount(t *testing.T) {
	holder := NewHolder()
	snap, records := testSnapshot(t)
	holder.Publish(snap, records)
	holder.Publish(snap, records)

	router := NewRouter(NewHandler(holder, logging.NewLogger(true)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" || body["snapshots"] != float64(2) {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestHolder_SubscribeReceivesLatest(t *testing.T) {
	holder := NewHolder()
	updates, cancel := holder.Subscribe()
	defer cancel()

	snap, records := testSnapshot(t)
	holder.Publish(snap, records)

	select {
	case got := <-updates:
		if got != snap {
			t.Fatal("subscriber received a different snapshot")
		}
	default:
		t.Fatal("subscriber channel empty after publish")
	}
}

func TestHolder_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	holder := NewHolder()
	_, cancel := holder.Subscribe()
	defer cancel()

	snap, records := testSnapshot(t)
	// Two publishes against a full channel of capacity one must not block.
	holder.Publish(snap, records)
	holder.Publish(snap, records)

	if holder.Published() != 2 {
		t.Fatalf("expected 2 publishes, got %d", holder.Published())
	}
}
