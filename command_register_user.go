package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Actor      Identity `json:"-"`
	FullName   string   `json:"full_name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       string   `json:"role"`
	UseHashid  bool     `json:"-"`
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User  *User
	Token string
}

type RegisterUserHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	logger   Logger
	activity ActivitySink
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenService, logger Logger) *RegisterUserHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &RegisterUserHandler{
		repo:     repo,
		tokens:   tokens,
		logger:   logger,
		activity: noopActivitySink{},
	}
}

// WithActivitySink overrides the sink that receives registration audit events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if event.Actor == nil || !event.Actor.Role().IsAtLeast(RoleAdmin) {
		return ErrForbidden
	}

	if err := ValidatePasswordStrength(event.Password); err != nil {
		return err
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		email := NormalizeEmail(event.Email)

		taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
		}
		if taken {
			return ErrEmailTaken
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = email
		user.FullName = event.FullName
		user.Role = resolveRequestedRole(event.Role)
		user.Active = true
		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	token, err := h.tokens.IssueSessionToken(NewIdentityFromUser(user))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue token for new user")
	}

	if err := h.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventUserRegistered,
		Email:      user.Email,
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"role": string(user.Role)},
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("failed to record registration event", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: user, Token: token})
	}

	return nil
}

// resolveRequestedRole elevates to admin only on an explicit request,
// anything else gets the default editor role.
func resolveRequestedRole(requested string) UserRole {
	if role, ok := ParseRole(requested); ok && role == RoleAdmin {
		return RoleAdmin
	}
	return RoleEditor
}
