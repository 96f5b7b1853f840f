package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultAdminEmail is the seed administrator account.
const DefaultAdminEmail = "admin@gmail.com"

// EnsureAdminAccount creates the seed administrator when no account
// with the given email exists yet. Idempotent, safe to run on every
// start.
func EnsureAdminAccount(ctx context.Context, repo RepositoryManager, email, password string, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	if email == "" {
		email = DefaultAdminEmail
	}
	email = NormalizeEmail(email)

	exists, err := repo.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for admin account")
	}

	if exists {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash admin password")
	}

	admin := &User{
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         RoleAdmin,
		Active:       true,
	}

	if _, err := repo.Users().Register(ctx, admin); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create admin account")
	}

	logger.Info("seeded administrator account", "email", email)

	return nil
}
