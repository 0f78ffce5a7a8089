package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned for missing, unknown or expired sessions
var ErrUnauthenticated = errors.New("not authenticated")

// AccountOptions tunes sessions and login throttling
type AccountOptions struct {
	SessionTTL       time.Duration
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// AccountService handles registration, login sessions, the caller's
// profile, and staff management of users and user types
type AccountService struct {
	users    UserStore
	sessions SessionStore
	throttle LoginThrottle
	opts     AccountOptions
	logger   *zap.Logger
}

// NewAccountService creates a new account service. throttle may be nil.
func NewAccountService(users UserStore, sessions SessionStore, throttle LoginThrottle, opts AccountOptions) *AccountService {
	return &AccountService{
		users:    users,
		sessions: sessions,
		throttle: throttle,
		opts:     opts,
		logger:   util.GetLogger(),
	}
}

// PrincipalFor builds the session principal for a user
func PrincipalFor(u *models.User) auth.Principal {
	role := auth.RoleNone
	if u.UserType != nil {
		role = auth.ParseRole(*u.UserType)
	}
	return auth.Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: role}
}

// RegisterInput is the public sign-up form
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	NIF             string `json:"nif"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Register creates a client account. The client role is assigned when a
// user type labelled "cliente" exists.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Register")
	defer span.End()

	if blank(in.Name, in.Email, in.NIF, in.Password) {
		return nil, invalid("user", "Preenche todos os campos obrigatórios.")
	}
	if in.Password != in.PasswordConfirm {
		return nil, invalid("password_confirm", "As passwords não coincidem.")
	}
	nif := strings.TrimSpace(in.NIF)
	if err := validateNIF(nif); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		NIF:     nif,
		Address: optionalString(in.Address),
	}

	clientType, err := s.users.GetUserTypeByLabel(ctx, string(auth.RoleClient))
	switch {
	case err == nil:
		user.UserTypeID = &clientType.ID
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to resolve client role: %w", err)
	}

	if err := s.createUser(ctx, user, in.Password); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *AccountService) createUser(ctx context.Context, user *models.User, password string) error {
	if _, err := s.users.GetUserByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		return mapUserWriteError(err)
	}
	return nil
}

func mapUserWriteError(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return ErrEmailTaken
	case errors.Is(err, store.ErrReferenced):
		return invalid("user_type_id", "Tipo de utilizador não encontrado.")
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}

// Login checks credentials and opens a session. It returns the session
// token and the principal stored under it.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *auth.Principal, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()

	email = strings.TrimSpace(email)

	if s.throttle != nil {
		allowed, err := s.throttle.AllowLogin(ctx, email, s.opts.LoginMaxAttempts, s.opts.LoginWindow)
		if err != nil {
			// throttle errors never block a login
			s.logger.Warn("Login throttle unavailable", zap.Error(err))
		} else if !allowed {
			util.LoginFailuresTotal.WithLabelValues("throttled").Inc()
			return "", nil, ErrTooManyAttempts
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		util.LoginFailuresTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, ErrInvalidCredentials
	}

	principal := PrincipalFor(user)
	token, err := s.sessions.CreateSession(ctx, principal, s.opts.SessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.ResetLogin(ctx, email); err != nil {
			s.logger.Warn("Failed to reset login throttle", zap.Error(err))
		}
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("role", string(principal.Role)))
	return token, &principal, nil
}

// Logout ends a session
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its principal
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthenticated
	}
	p, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, redisclient.ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	}
	return p, err
}

// Profile returns the caller's account
func (s *AccountService) Profile(ctx context.Context, p *auth.Principal) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Profile")
	defer span.End()

	u, err := s.users.GetUser(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ProfileInput is the caller's editable profile
type ProfileInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	NIF     string `json:"nif"`
	Address string `json:"address"`
}

// UpdateProfile edits the caller's profile and refreshes the principal
// stored under token
func (s *AccountService) UpdateProfile(ctx context.Context, token string, p *auth.Principal, in ProfileInput) (*auth.Principal, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.UpdateProfile")
	defer span.End()

	if blank(in.Name, in.Email, in.NIF) {
		return nil, invalid("user", "Preenche nome, email e NIF.")
	}
	nif := strings.TrimSpace(in.NIF)
	if err := validateNIF(nif); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Email = strings.TrimSpace(in.Email)
	user.NIF = nif
	user.Address = optionalString(in.Address)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, mapUserWriteError(err)
	}

	refreshed := PrincipalFor(user)
	if err := s.sessions.SaveSession(ctx, token, refreshed, s.opts.SessionTTL); err != nil {
		s.logger.Warn("Failed to refresh session", zap.Error(err), zap.Int64("user_id", user.ID))
	}
	return &refreshed, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AccountService) ChangePassword(ctx context.Context, p *auth.Principal, current, next, confirm string) error {
	ctx, span := util.StartSpan(ctx, "AccountService.ChangePassword")
	defer span.End()

	if next == "" {
		return invalid("password_new", "A nova password é obrigatória.")
	}
	if next != confirm {
		return invalid("password_confirm", "As novas passwords não coincidem.")
	}

	user, err := s.Profile(ctx, p)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return mapUserWriteError(s.users.UpdateUserPassword(ctx, user.ID, hash))
}

// UserInput is the admin user form. Password is optional on update.
type UserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	NIF             string `json:"nif"`
	Address         string `json:"address"`
	UserTypeID      *int64 `json:"user_type_id"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.ListUsers")
	defer span.End()

	return s.users.ListUsers(ctx)
}

func (s *AccountService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// CreateUser adds an account with any role
func (s *AccountService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.CreateUser")
	defer span.End()

	if blank(in.Name, in.Email, in.NIF, in.Password) {
		return nil, invalid("user", "Preenche nome, email, NIF e password.")
	}
	if in.Password != in.PasswordConfirm {
		return nil, invalid("password_confirm", "As passwords não coincidem.")
	}
	nif := strings.TrimSpace(in.NIF)
	if err := validateNIF(nif); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		NIF:        nif,
		Address:    optionalString(in.Address),
		UserTypeID: in.UserTypeID,
	}
	if err := s.createUser(ctx, user, in.Password); err != nil {
		return nil, err
	}

	s.logger.Info("User created by admin", zap.Int64("user_id", user.ID))
	return user, nil
}

// UpdateUser edits an account. A blank password keeps the current one.
func (s *AccountService) UpdateUser(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.UpdateUser", attribute.Int64("user_id", id))
	defer span.End()

	if blank(in.Name, in.Email, in.NIF) {
		return nil, invalid("user", "Preenche nome, email e NIF.")
	}
	if in.Password != "" && in.Password != in.PasswordConfirm {
		return nil, invalid("password_confirm", "As passwords não coincidem.")
	}
	nif := strings.TrimSpace(in.NIF)
	if err := validateNIF(nif); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		NIF:        nif,
		Address:    optionalString(in.Address),
		UserTypeID: in.UserTypeID,
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, mapUserWriteError(err)
	}

	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.users.UpdateUserPassword(ctx, id, hash); err != nil {
			return nil, mapUserWriteError(err)
		}
	}
	return user, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id int64) error {
	err := s.users.DeleteUser(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrReferenced):
		return ErrInUse
	}
	return err
}

func (s *AccountService) ListUserTypes(ctx context.Context) ([]models.UserType, error) {
	return s.users.ListUserTypes(ctx)
}

func (s *AccountService) GetUserType(ctx context.Context, id int64) (*models.UserType, error) {
	ut, err := s.users.GetUserType(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return ut, err
}

func (s *AccountService) CreateUserType(ctx context.Context, label string) (*models.UserType, error) {
	if blank(label) {
		return nil, invalid("label", "A designação é obrigatória.")
	}
	ut := &models.UserType{Label: strings.TrimSpace(label)}
	if err := s.users.CreateUserType(ctx, ut); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, invalid("label", "Já existe um tipo de utilizador com essa designação.")
		}
		return nil, err
	}
	return ut, nil
}

func (s *AccountService) UpdateUserType(ctx context.Context, id int64, label string) error {
	if blank(label) {
		return invalid("label", "A designação é obrigatória.")
	}
	err := s.users.UpdateUserType(ctx, &models.UserType{ID: id, Label: strings.TrimSpace(label)})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return invalid("label", "Já existe um tipo de utilizador com essa designação.")
	}
	return err
}

func (s *AccountService) DeleteUserType(ctx context.Context, id int64) error {
	err := s.users.DeleteUserType(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
