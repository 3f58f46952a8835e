package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for note persistence operations.
// The abstraction keeps the service testable without a live database.
type Repository interface {
	// GetByID retrieves a note by its unique identifier.
	// Returns ErrNotFound if the note does not exist.
	GetByID(ctx context.Context, id string) (*Note, error)

	// List retrieves all notes, newest first.
	List(ctx context.Context) ([]Note, error)

	// Create inserts a new note.
	Create(ctx context.Context, n *Note) error

	// Update modifies an existing note.
	// Returns ErrNotFound if the note does not exist.
	Update(ctx context.Context, n *Note) error

	// Delete removes a note by ID.
	// Returns ErrNotFound if the note does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a note by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Note, error) {
	query := `
		SELECT id, title, body, created_at, updated_at
		FROM notes
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying note by id: %w", err)
	}
	return n, nil
}

// List retrieves all notes ordered by creation time, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Note, error) {
	query := `
		SELECT id, title, body, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating note rows: %w", err)
	}
	return notes, nil
}

// Create inserts a new note.
func (r *SQLiteRepository) Create(ctx context.Context, n *Note) error {
	query := `
		INSERT INTO notes (id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Body,
		n.CreatedAt.Format(time.RFC3339Nano),
		n.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

// Update modifies an existing note's title and body.
func (r *SQLiteRepository) Update(ctx context.Context, n *Note) error {
	query := `
		UPDATE notes
		SET title = ?, body = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		n.Title, n.Body,
		n.UpdatedAt.Format(time.RFC3339Nano),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a note by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*Note, error) {
	var (
		n         Note
		createdAt string
		updatedAt string
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	n.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	n.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &n, nil
}
