package note

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain errors for the note package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, note.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a note ID does not exist.
	ErrNotFound = errors.New("note: not found")

	// ErrInvalid is returned when note validation fails.
	ErrInvalid = errors.New("note: invalid")
)

// Note is a stored note record.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// maxTitleLength bounds titles so the cache and event payloads stay small.
const maxTitleLength = 256

// NewNote builds a note with a fresh UUID and matching timestamps.
func NewNote(title, body string) *Note {
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the note fields are acceptable for storage.
//
// Returns:
//   - error: ErrInvalid (wrapped with the reason) if validation fails, nil otherwise
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.Join(ErrInvalid, errors.New("title must not be empty"))
	}
	if len(n.Title) > maxTitleLength {
		return errors.Join(ErrInvalid, errors.New("title exceeds maximum length"))
	}
	return nil
}
