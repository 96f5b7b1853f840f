package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

type AuthControllerRoutes struct {
	Login              string
	Register           string
	ForgotPassword     string
	ResendVerification string
	ResetPassword      string
	ResetTokenValidate string
	ChangePassword     string
}

type AuthController struct {
	Debug   bool
	Logger  Logger
	Repo    RepositoryManager
	Auther  Authenticator
	Mailer  Mailer
	Captcha CaptchaVerifier
	Cfg     Config
	Routes  *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerCaptcha(verifier CaptchaVerifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Captcha = verifier
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Cfg = cfg
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:              "/login",
			Register:           "/register",
			ForgotPassword:     "/forgot-password",
			ResendVerification: "/resend-verification",
			ResetPassword:      "/reset-password",
			ResetTokenValidate: "/reset-password/validate",
			ChangePassword:     "/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	if c.Cfg == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on the given router,
// typically an /api/v1/auth group.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).Name("auth.login")
	app.Post(controller.Routes.Register, controller.RegisterPost).Name("auth.register")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).Name("auth.forgot-password")
	app.Post(controller.Routes.ResendVerification, controller.ResendVerificationPost).Name("auth.resend-verification")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).Name("auth.reset-password")
	app.Get(controller.Routes.ResetTokenValidate, controller.ResetTokenValidateGet).Name("auth.reset-password.validate")
	app.Post(controller.Routes.ChangePassword, controller.ChangePasswordPost).Name("auth.change-password")

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Info("login failed", "email", NormalizeEmail(payload.Email))
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Login successful", fiber.Map{
		"token": token,
	})
}

// RegisterRequest payload
type RegisterRequest struct {
	FullName string `form:"full_name" json:"full_name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, StrongPassword),
	)
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	actor, err := a.requireIdentity(c)
	if err != nil {
		return JSONError(c, err, a.Logger)
	}

	var res *RegisterUserResponse
	msg := RegisterUserMessage{
		Actor:    actor,
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	handler := NewRegisterUserHandler(a.Repo, a.Auther.TokenService(), a.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("register user error", "error", err)
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusCreated, "Account created", fiber.Map{
		"user":  res.User,
		"token": res.Token,
	})
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email        string `form:"email" json:"email"`
	CaptchaToken string `form:"captcha_token" json:"captcha_token"`
}

// Validate will validate the payload
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	if a.Captcha != nil {
		if err := a.Captcha.Verify(c.UserContext(), payload.CaptchaToken); err != nil {
			a.Logger.Info("captcha rejected", "email", NormalizeEmail(payload.Email))
			return JSONError(c, ErrCaptchaFailed, a.Logger)
		}
	}

	msg := InitializePasswordResetMessage{Email: payload.Email}

	handler := NewInitializePasswordResetHandler(a.Repo, a.Mailer, a.Auther.TokenService(), a.Cfg, a.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("forgot password error", "error", err)
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Verification code sent", nil)
}

// ResendVerificationRequest payload
type ResendVerificationRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerificationPost(c *fiber.Ctx) error {
	payload := new(ResendVerificationRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := ResendVerificationMessage{Email: payload.Email}

	handler := NewResendVerificationHandler(a.Repo, a.Mailer, a.Cfg, a.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("resend verification error", "error", err)
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Verification code resent", nil)
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Email    string `form:"email" json:"email"`
	Code     string `form:"code" json:"code"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required, validation.Length(VerificationCodeLength, VerificationCodeLength), is.Digit),
		validation.Field(&r.Password, validation.Required, StrongPassword),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := FinalizePasswordResetMessage{
		Email:    payload.Email,
		Code:     payload.Code,
		Password: payload.Password,
	}

	handler := NewFinalizePasswordResetHandler(a.Repo, a.Cfg).WithLogger(a.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("reset password error", "error", err)
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Password has been reset", nil)
}

// ResetTokenValidateGet checks a reset link token and reports the
// account it belongs to, so the UI can prefill the reset form.
func (a *AuthController) ResetTokenValidateGet(c *fiber.Ctx) error {
	raw := c.Query("token")
	if raw == "" {
		return JSONError(c, ErrTokenMalformed, a.Logger)
	}

	claims, err := a.Auther.TokenService().Validate(raw)
	if err != nil {
		return JSONError(c, err, a.Logger)
	}

	if claims.Purpose() != TokenPurposeReset {
		return JSONError(c, ErrTokenMalformed, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Reset token is valid", fiber.Map{
		"email":   claims.Subject(),
		"expires": claims.Expires(),
	})
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	Email       string `form:"email" json:"email"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.NewPassword, validation.Required, StrongPassword),
	)
}

func (a *AuthController) ChangePasswordPost(c *fiber.Ctx) error {
	payload := new(ChangePasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	actor, err := a.requireIdentity(c)
	if err != nil {
		return JSONError(c, err, a.Logger)
	}

	msg := ChangePasswordMessage{
		Actor:       actor,
		Email:       payload.Email,
		NewPassword: payload.NewPassword,
	}

	handler := NewChangePasswordHandler(a.Repo).WithLogger(a.Logger)
	if err := handler.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("change password error", "error", err)
		return JSONError(c, err, a.Logger)
	}

	return JSONSuccess(c, http.StatusOK, "Password has been changed", nil)
}

// requireIdentity resolves the request principal to a stored identity.
func (a *AuthController) requireIdentity(c *fiber.Ctx) (Identity, error) {
	principal := PrincipalFromFiberCtx(c, a.Cfg.GetContextKey())
	if principal == nil {
		return nil, ErrUnauthenticated
	}

	auther, ok := a.Auther.(*Auther)
	if !ok {
		return principalIdentity{principal}, nil
	}

	identity, err := auther.IdentityFromPrincipal(c.UserContext(), principal)
	if err != nil {
		return nil, err
	}

	return identity, nil
}

// principalIdentity adapts a token principal into an Identity when we
// cannot resolve the stored record.
type principalIdentity struct {
	principal *AuthenticatedPrincipal
}

func (p principalIdentity) ID() string       { return "" }
func (p principalIdentity) Email() string    { return p.principal.Email }
func (p principalIdentity) FullName() string { return "" }
func (p principalIdentity) Role() UserRole   { return p.principal.Role }

func (a *AuthController) badRequest(c *fiber.Ctx, err error) error {
	a.Logger.Error("failed to parse request payload", "error", err)
	return c.Status(http.StatusBadRequest).JSON(APIResponse{
		Success:   false,
		Error:     "Failed to parse request body",
		Timestamp: nowUTC(),
		Path:      c.Path(),
	})
}

func (a *AuthController) validationError(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(APIResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: nowUTC(),
		Path:      c.Path(),
	})
}
