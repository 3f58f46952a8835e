package note

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/mqtt"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/nats"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/redis"
)

// cacheTTL bounds how long a cached note survives without a refresh.
const cacheTTL = 5 * time.Minute

// indexJobType names the background job enqueued on note creation.
const indexJobType = "note.index"

// Service coordinates note persistence with the optional integrations.
//
// The repository is the source of truth; the cache, queue, and event broker
// are best-effort. Each facade method already no-ops when its dependency is
// absent or down, so the service never branches on dependency state itself.
type Service struct {
	repo   Repository
	cache  *redis.Cache
	queue  *nats.Queue
	events *mqtt.Events
	logger *logging.Logger
}

// NewService creates a note service.
//
// Parameters:
//   - repo: the persistence backend (required)
//   - cache: the guarded cache facade (required, may be unconfigured)
//   - queue: the guarded job queue facade (required, may be unconfigured)
//   - events: the guarded event broker facade (required, may be unconfigured)
//   - logger: structured logger for integration diagnostics
func NewService(repo Repository, cache *redis.Cache, queue *nats.Queue, events *mqtt.Events, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		queue:  queue,
		events: events,
		logger: logger,
	}
}

// cacheKey returns the cache key for a note ID.
func cacheKey(id string) string {
	return "note:" + id
}

// Create validates and stores a new note, then fans out to the optional
// integrations: primes the cache, enqueues an indexing job, and publishes
// a created event. Integration failures are absorbed; only the database
// write can fail the call.
func (s *Service) Create(ctx context.Context, title, body string) (*Note, error) {
	n := NewNote(title, body)
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.prime(ctx, n)
	s.enqueueIndex(ctx, n.ID)
	s.publish(ctx, "created", n)

	return n, nil
}

// Get retrieves a note, cache-aside. A cache hit skips the database; a miss
// reads the database and refreshes the cache.
func (s *Service) Get(ctx context.Context, id string) (*Note, error) {
	if raw, ok := s.cache.Fetch(ctx, cacheKey(id)); ok {
		var n Note
		if err := json.Unmarshal(raw, &n); err == nil {
			return &n, nil
		}
		// A corrupt entry falls through to the database and gets rewritten.
		s.logger.Warn("discarding undecodable cache entry", "key", cacheKey(id))
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.prime(ctx, n)
	return n, nil
}

// List retrieves all notes, newest first. Listings are not cached.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

// Update replaces a note's title and body, refreshes the cache, and
// publishes an updated event.
func (s *Service) Update(ctx context.Context, id, title, body string) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	n.Title = title
	n.Body = body
	n.UpdatedAt = time.Now().UTC()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	s.prime(ctx, n)
	s.publish(ctx, "updated", n)

	return n, nil
}

// Delete removes a note, evicts its cache entry, and publishes a deleted
// event carrying only the ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(ctx, cacheKey(id))
	s.publish(ctx, "deleted", &Note{ID: id})

	return nil
}

// prime writes a note into the cache, best-effort.
func (s *Service) prime(ctx context.Context, n *Note) {
	raw, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("encoding note for cache", "note_id", n.ID, "error", err)
		return
	}
	s.cache.Store(ctx, cacheKey(n.ID), raw, cacheTTL)
}

// enqueueIndex submits an indexing job for the note, best-effort.
func (s *Service) enqueueIndex(ctx context.Context, id string) {
	payload, err := json.Marshal(map[string]string{"note_id": id})
	if err != nil {
		s.logger.Warn("encoding index job", "note_id", id, "error", err)
		return
	}
	if jobID, ok := s.queue.Enqueue(ctx, indexJobType, payload); ok {
		s.logger.Debug("enqueued index job", "note_id", id, "job_id", jobID)
	}
}

// publish emits a note lifecycle event, best-effort.
func (s *Service) publish(ctx context.Context, event string, n *Note) {
	payload, err := json.Marshal(map[string]any{
		"event": event,
		"note":  n,
		"at":    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logger.Warn(fmt.Sprintf("encoding %s event", event), "note_id", n.ID, "error", err)
		return
	}
	s.events.Publish(ctx, mqtt.Topics{}.NoteEvent(event), payload)
}
