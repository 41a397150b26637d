/*
handlers.go - HTTP handlers for the dashboard read API

ENDPOINTS:
  GET /api/snapshot      Latest aggregate snapshot (503 until first event)
  GET /api/transactions  Latest-20 enriched transactions
  GET /api/stream        Server-sent events, one snapshot per processed event
  GET /api/health        Liveness + processed counter

SEE ALSO:
  - server.go: routing and middleware
  - holder.go: the data these handlers read
*/
package api

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/aggregate"
)

// Handler serves the dashboard read API from the snapshot holder.
type Handler struct {
	holder *Holder
	logger *zap.SugaredLogger
}

// NewHandler creates a handler over the given holder.
func NewHandler(holder *Holder, logger *zap.SugaredLogger) *Handler {
	return &Handler{holder: holder, logger: logger}
}

// GetSnapshot returns the latest aggregate snapshot.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, _, ok := h.holder.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no data received from the stream yet")
		return
	}
	h.writeJSON(w, http.StatusOK, NewSnapshotDTO(snap))
}

// GetTransactions returns the latest-transactions view on its own.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	snap, _, ok := h.holder.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no data received from the stream yet")
		return
	}
	out := make([]TransactionDTO, 0, len(snap.Latest))
	for _, rec := range snap.Latest {
		out = append(out, newTransactionDTO(rec))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// StreamSnapshots pushes each new snapshot as a server-sent event until
// the client disconnects.
func (h *Handler) StreamSnapshots(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, cancel := h.holder.Subscribe()
	defer cancel()

	// Send the current snapshot immediately so a reconnecting dashboard
	// doesn't render empty until the next event.
	if snap, _, ok := h.holder.Latest(); ok {
		h.writeEvent(w, snap)
		flusher.Flush()
	}

	for {
		select {
		case snap := <-updates:
			h.writeEvent(w, snap)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Health reports liveness and the number of snapshots published.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"snapshots": h.holder.Published(),
	})
}

func (h *Handler) writeEvent(w http.ResponseWriter, snap *aggregate.Snapshot) {
	payload, err := json.Marshal(NewSnapshotDTO(snap))
	if err != nil {
		h.logger.Errorw("failed to encode snapshot event", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorw("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
