package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"noted/internal/server/domain/entities"
	"noted/internal/server/ports/repositories"
	"noted/pkg/logger"
)

// PgxPoolInterface is the subset of pgxpool.Pool the repositories use; it is
// satisfied by pgxmock pools in tests.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// ErrEmailTaken is returned when an email collides with an existing account.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, username, password_hash, avatar_url, created_at, updated_at`

// UserRepository implements repositories.UserRepository on pgx.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account and returns it with server-assigned fields.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))
	log.Debug(ctx, "creating user", zap.String("email", user.Email))

	var created entities.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, avatar_url)
         VALUES ($1, $2, $3, $4)
         RETURNING `+userColumns,
		user.Email, user.Username, user.PasswordHash, user.AvatarURL,
	).Scan(
		&created.ID,
		&created.Email,
		&created.Username,
		&created.PasswordHash,
		&created.AvatarURL,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			log.Debug(ctx, "email already registered", zap.String("email", user.Email))
			return nil, ErrEmailTaken
		}
		log.Error(ctx, "failed to create user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &created, nil
}

// FindByID looks up an account by id, returning (nil, nil) when missing.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findBy(ctx, "FindByID", `WHERE id = $1`, id)
}

// FindByEmail looks up an account by email, returning (nil, nil) when missing.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findBy(ctx, "FindByEmail", `WHERE email = $1`, email)
}

func (r *UserRepository) findBy(ctx context.Context, method, where string, arg any) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	var user entities.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found")
			return nil, nil
		}
		log.Error(ctx, "failed to find user", zap.Error(err))
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &user, nil
}
