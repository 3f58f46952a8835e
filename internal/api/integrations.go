package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/mqtt"
)

// Raw integration endpoints. These expose the guarded facades directly so
// operators can exercise each dependency and observe its degraded
// behaviour. Degradation is never a request-level failure: a missing or
// demoted dependency yields a successful response whose body carries the
// neutral outcome (stored/enqueued/published false), mirroring the no-op
// contract of the facades themselves. /api/v1/health is where dependency
// trouble is reported.

// handleCachePut stores the request body under the key. TTL in seconds can
// be supplied with the ttl query parameter; 0 uses the default. Without a
// live cache the write is a no-op and the response reports stored=false.
func (s *Server) handleCachePut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			writeBadRequest(w, "ttl must be a non-negative integer (seconds)")
			return
		}
		ttl = time.Duration(seconds) * time.Second
	}

	value, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":    key,
		"stored": s.cache.Store(r.Context(), key, value, ttl),
	})
}

// handleCacheGet returns the raw value for a key, or 404 on a miss.
// A miss and an unavailable cache are indistinguishable here: both read
// as absent, matching the neutral-default contract.
func (s *Server) handleCacheGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, ok := s.cache.Fetch(r.Context(), key)
	if !ok {
		writeNotFound(w, "key not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	w.Write(value)
}

// handleCacheDelete removes a key from the cache, best-effort.
func (s *Server) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	writeJSON(w, http.StatusOK, map[string]any{
		"key":     key,
		"deleted": s.cache.Delete(r.Context(), key),
	})
}

// handleCacheExists reports whether a key is present.
func (s *Server) handleCacheExists(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	writeJSON(w, http.StatusOK, map[string]any{
		"key":    key,
		"exists": s.cache.Exists(r.Context(), key),
	})
}

// jobRequest is the request body for POST /jobs.
type jobRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleEnqueueJob submits a background job to the queue. Without a live
// queue the submission is dropped and the response reports enqueued=false
// with an empty job ID.
func (s *Server) handleEnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Type == "" {
		writeBadRequest(w, "type is required")
		return
	}

	jobID, enqueued := s.queue.Enqueue(r.Context(), req.Type, req.Payload)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"enqueued": enqueued,
		"job_id":   jobID,
		"subject":  s.queue.Subject(req.Type),
	})
}

// eventRequest is the request body for POST /events.
type eventRequest struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// handlePublishEvent publishes an event to the broker, best-effort. Topics
// outside the service namespace are rejected so callers cannot write into
// foreign trees.
func (s *Server) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !(mqtt.Topics{}).InNamespace(req.Topic) {
		writeBadRequest(w, "topic is outside the service namespace")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"published": s.events.Publish(r.Context(), req.Topic, req.Payload),
		"topic":     req.Topic,
	})
}
