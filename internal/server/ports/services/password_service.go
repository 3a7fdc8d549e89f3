package services

import "context"

// PasswordService hashes and verifies account passwords.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, hashedPassword, password string) (bool, error)
}
