package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	Actor       Identity `json:"-"`
	Email       string   `json:"email"`
	NewPassword string   `json:"new_password"`
}

func (p ChangePasswordMessage) Type() string { return "user.change_password" }

// ChangePasswordHandler rotates a password for an already
// authenticated staff member, no verification code involved.
type ChangePasswordHandler struct {
	repo     RepositoryManager
	logger   Logger
	activity ActivitySink
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:     repo,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

// WithActivitySink overrides the sink that receives password change audit events.
func (h *ChangePasswordHandler) WithActivitySink(sink ActivitySink) *ChangePasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if event.Actor == nil {
		return ErrUnauthenticated
	}

	email := NormalizeEmail(event.Email)

	// Editors can only rotate their own password, admins anyone's.
	if !event.Actor.Role().IsAtLeast(RoleAdmin) && NormalizeEmail(event.Actor.Email()) != email {
		return ErrForbidden
	}

	if err := ValidatePasswordStrength(event.NewPassword); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	h.logger.Info("password changed", "email", email)

	if err := h.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventPasswordChanged,
		Email:      email,
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"actor": event.Actor.Email()},
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("failed to record password change event", "error", err)
	}

	return nil
}
