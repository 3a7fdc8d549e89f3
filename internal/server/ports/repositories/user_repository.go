package repositories

import (
	"context"

	"noted/internal/server/domain/entities"
)

// UserRepository is the persistence port for user accounts. Lookups return
// (nil, nil) when the user does not exist.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
}
