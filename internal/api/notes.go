package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinedev/vitrine-core/internal/note"
)

// noteRequest is the request body for note create and update.
type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// handleListNotes returns all notes, newest first.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context())
	if err != nil {
		s.logger.Error("listing notes", "error", err)
		writeInternalError(w, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"count": len(notes),
	})
}

// handleCreateNote creates a note and returns it with a 201.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	n, err := s.notes.Create(r.Context(), req.Title, req.Body)
	if err != nil {
		if errors.Is(err, note.ErrInvalid) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		s.logger.Error("creating note", "error", err)
		writeInternalError(w, "failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// handleGetNote returns a single note by ID.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := s.notes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			writeNotFound(w, "note not found")
			return
		}
		s.logger.Error("getting note", "note_id", id, "error", err)
		writeInternalError(w, "failed to get note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleUpdateNote replaces a note's title and body.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	n, err := s.notes.Update(r.Context(), id, req.Title, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, note.ErrNotFound):
			writeNotFound(w, "note not found")
		case errors.Is(err, note.ErrInvalid):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("updating note", "note_id", id, "error", err)
			writeInternalError(w, "failed to update note")
		}
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNote removes a note by ID.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.notes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, note.ErrNotFound) {
			writeNotFound(w, "note not found")
			return
		}
		s.logger.Error("deleting note", "note_id", id, "error", err)
		writeInternalError(w, "failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
