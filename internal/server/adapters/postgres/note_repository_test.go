package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noted/internal/server/adapters/postgres"
	"noted/internal/server/domain/entities"
	"noted/internal/server/ports/repositories"
	"noted/pkg/logger"
)

var noteColumns = []string{"id", "title", "content", "is_private", "created_at", "id", "username", "avatar_url"}

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func TestNoteRepository_Create(t *testing.T) {
	ctx := testContext(t)
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("authored note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		input := entities.NewNote(&entities.Author{ID: "author-1"}, "Hi there", "", true)

		mock.ExpectQuery("INSERT INTO notes .+").
			WithArgs("Hi there", entities.DefaultContent, true, "author-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("note-1", createdAt))

		repo := postgres.NewNoteRepository(mock)
		created, err := repo.Create(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "note-1", created.ID)
		assert.Equal(t, entities.DefaultContent, created.Content)
		assert.Equal(t, createdAt, created.CreatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("anonymous note stores NULL author", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		input := entities.NewNote(nil, "Anon title", "hello world", false)

		mock.ExpectQuery("INSERT INTO notes .+").
			WithArgs("Anon title", "hello world", false, nil).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("note-2", createdAt))

		repo := postgres.NewNoteRepository(mock)
		created, err := repo.Create(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "note-2", created.ID)
		assert.Nil(t, created.Author)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO notes .+").
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewNoteRepository(mock)
		created, err := repo.Create(ctx, entities.NewNote(nil, "Anon title", "x", false))

		require.Error(t, err)
		assert.Nil(t, created)
		assert.Contains(t, err.Error(), "failed to create note")
	})
}

func TestNoteRepository_GetByID(t *testing.T) {
	ctx := testContext(t)
	createdAt := time.Now().UTC()

	t.Run("found with author", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		name := "alice"
		avatar := "https://example.com/a.png"
		authorID := "author-1"
		mock.ExpectQuery(`(?s)SELECT .+ FROM notes n`).
			WithArgs("note-1").
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow("note-1", "Hi there", "no content", false, createdAt, &authorID, &name, &avatar))

		repo := postgres.NewNoteRepository(mock)
		note, err := repo.GetByID(ctx, "note-1")

		require.NoError(t, err)
		require.NotNil(t, note)
		require.NotNil(t, note.Author)
		assert.Equal(t, "author-1", note.Author.ID)
		assert.Equal(t, "alice", note.Author.Name)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`(?s)SELECT .+ FROM notes n`).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(noteColumns))

		repo := postgres.NewNoteRepository(mock)
		note, err := repo.GetByID(ctx, "missing")

		require.NoError(t, err)
		assert.Nil(t, note)
	})
}

func TestNoteRepository_ListFeed(t *testing.T) {
	ctx := testContext(t)
	now := time.Now().UTC()

	t.Run("anonymous public feed", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`(?s)SELECT .+ WHERE NOT n\.is_private\s+ORDER BY n\.created_at DESC, n\.id DESC`).
			WithArgs(3).
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow("a", "Note A", "no content", false, now, nil, nil, nil).
				AddRow("b", "Note B", "no content", false, now.Add(-time.Minute), nil, nil, nil))

		repo := postgres.NewNoteRepository(mock)
		notes, err := repo.ListFeed(ctx, repositories.FeedQuery{Fetch: 3})

		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "a", notes[0].ID)
		assert.Nil(t, notes[0].Author)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("authenticated feed includes own private notes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`(?s)SELECT .+ WHERE \(NOT n\.is_private OR n\.author_id = \$1\)`).
			WithArgs("caller-1", 11).
			WillReturnRows(pgxmock.NewRows(noteColumns))

		repo := postgres.NewNoteRepository(mock)
		_, err = repo.ListFeed(ctx, repositories.FeedQuery{Fetch: 11, CallerID: "caller-1"})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("my notes scope with cursor", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`(?s)SELECT .+ WHERE n\.author_id = \$1 AND \(n\.created_at, n\.id\) <`).
			WithArgs("caller-1", "cursor-id", 6).
			WillReturnRows(pgxmock.NewRows(noteColumns))

		repo := postgres.NewNoteRepository(mock)
		_, err = repo.ListFeed(ctx, repositories.FeedQuery{
			Fetch:    6,
			MyNotes:  true,
			Cursor:   "cursor-id",
			CallerID: "caller-1",
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_Update(t *testing.T) {
	ctx := testContext(t)

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE notes SET .+").
			WithArgs("New title", "new content", true, "note-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := postgres.NewNoteRepository(mock)
		err = repo.Update(ctx, &entities.Note{
			ID:        "note-1",
			Title:     "New title",
			Content:   "new content",
			IsPrivate: true,
		})

		require.NoError(t, err)
	})

	t.Run("missing note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE notes SET .+").
			WithArgs("New title", "new content", false, "gone").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := postgres.NewNoteRepository(mock)
		err = repo.Update(ctx, &entities.Note{ID: "gone", Title: "New title", Content: "new content"})

		assert.ErrorIs(t, err, postgres.ErrNoteNotFound)
	})
}

func TestNoteRepository_Delete(t *testing.T) {
	ctx := testContext(t)

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM notes WHERE .+").
			WithArgs("note-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewNoteRepository(mock)
		require.NoError(t, repo.Delete(ctx, "note-1"))
	})

	t.Run("missing note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM notes WHERE .+").
			WithArgs("gone").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewNoteRepository(mock)
		assert.ErrorIs(t, repo.Delete(ctx, "gone"), postgres.ErrNoteNotFound)
	})
}
