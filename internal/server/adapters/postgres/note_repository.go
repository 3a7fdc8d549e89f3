// Package postgres provides PostgreSQL implementations of the repository
// ports.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"noted/internal/server/domain/entities"
	"noted/internal/server/ports/repositories"
	"noted/pkg/logger"
)

// ErrNoteNotFound is returned by Update/Delete when no row was affected.
var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `n.id, n.title, n.content, n.is_private, n.created_at,
        u.id, u.username, u.avatar_url`

const noteFromClause = `FROM notes n
        LEFT JOIN users u ON u.id = n.author_id`

// Cursor rows are excluded: the page starts strictly after the cursor note in
// (created_at DESC, id DESC) order. A vanished cursor note makes the row
// comparison NULL, which yields an empty page rather than an error.
const cursorPredicate = `(n.created_at, n.id) <
        (SELECT c.created_at, c.id FROM notes c WHERE c.id = `

// NoteRepository implements repositories.NoteRepository on pgx.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create persists a new note and returns it with the server-assigned id.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Create"))
	log.Debug(ctx, "creating note", zap.Bool("is_private", note.IsPrivate))

	var authorID any
	if note.Author != nil {
		authorID = note.Author.ID
	}

	created := *note
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notes (title, content, is_private, author_id)
         VALUES ($1, $2, $3, $4)
         RETURNING id, created_at`,
		note.Title, note.Content, note.IsPrivate, authorID,
	).Scan(&created.ID, &created.CreatedAt)

	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("note_id", created.ID))
	return &created, nil
}

// GetByID fetches a note with its author, returning (nil, nil) when missing.
func (r *NoteRepository) GetByID(ctx context.Context, noteID string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "GetByID"))

	row := r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+`
         `+noteFromClause+`
         WHERE n.id = $1`,
		noteID,
	)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.String("note_id", noteID))
			return nil, nil
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListFeed returns up to q.Fetch notes ordered by (created_at DESC, id DESC),
// starting strictly after the cursor note and filtered by visibility.
func (r *NoteRepository) ListFeed(ctx context.Context, q repositories.FeedQuery) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "ListFeed"))
	log.Debug(ctx, "listing feed",
		zap.Int("fetch", q.Fetch),
		zap.Bool("my_notes", q.MyNotes),
		zap.String("cursor", q.Cursor))

	query, args := buildFeedQuery(q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "failed to list feed", zap.Error(err))
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0, q.Fetch)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// Update rewrites the mutable fields of an existing note.
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) error {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Update"))
	log.Debug(ctx, "updating note", zap.String("note_id", note.ID))

	result, err := r.pool.Exec(ctx,
		`UPDATE notes SET title = $1, content = $2, is_private = $3 WHERE id = $4`,
		note.Title, note.Content, note.IsPrivate, note.ID,
	)
	if err != nil {
		log.Error(ctx, "failed to update note", zap.Error(err))
		return fmt.Errorf("failed to update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found", zap.String("note_id", note.ID))
		return ErrNoteNotFound
	}

	return nil
}

// Delete removes a note by id.
func (r *NoteRepository) Delete(ctx context.Context, noteID string) error {
	log := logger.Log(ctx).With(zap.String("repository", "note"), zap.String("method", "Delete"))
	log.Debug(ctx, "deleting note", zap.String("note_id", noteID))

	result, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1`,
		noteID,
	)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found", zap.String("note_id", noteID))
		return ErrNoteNotFound
	}

	return nil
}

// buildFeedQuery assembles the visibility and cursor predicates. Placeholders
// are numbered in append order.
func buildFeedQuery(q repositories.FeedQuery) (string, []any) {
	args := make([]any, 0, 3)

	var visibility string
	switch {
	case q.MyNotes:
		args = append(args, q.CallerID)
		visibility = fmt.Sprintf("n.author_id = $%d", len(args))
	case q.CallerID != "":
		args = append(args, q.CallerID)
		visibility = fmt.Sprintf("(NOT n.is_private OR n.author_id = $%d)", len(args))
	default:
		visibility = "NOT n.is_private"
	}

	where := visibility
	if q.Cursor != "" {
		args = append(args, q.Cursor)
		where += fmt.Sprintf(" AND %s$%d)", cursorPredicate, len(args))
	}

	args = append(args, q.Fetch)
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE %s
        ORDER BY n.created_at DESC, n.id DESC
        LIMIT $%d`, noteColumns, noteFromClause, where, len(args))

	return query, args
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var (
		note         entities.Note
		authorID     *string
		authorName   *string
		authorAvatar *string
	)

	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.IsPrivate,
		&note.CreatedAt,
		&authorID,
		&authorName,
		&authorAvatar,
	)
	if err != nil {
		return nil, err
	}

	if authorID != nil {
		note.Author = &entities.Author{ID: *authorID}
		if authorName != nil {
			note.Author.Name = *authorName
		}
		if authorAvatar != nil {
			note.Author.AvatarURL = *authorAvatar
		}
	}

	return &note, nil
}
