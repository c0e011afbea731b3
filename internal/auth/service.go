package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/config"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt limit
)

// userStore abstracts the persistence layer.
type userStore interface {
	CreateUser(ctx context.Context, in NewUser) (User, error)
	FindUserByLogin(ctx context.Context, login string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (User, error)
}

type activityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, kind activity.Kind, description string, rc activity.RequestContext, metadata map[string]any)
}

// Service encapsulates authentication and user administration use cases.
type Service struct {
	store    userStore
	activity activityRecorder
	cfg      config.AuthConfig
	nowFunc  func() time.Time
	idIssuer string
	parser   *jwt.Parser
}

// NewService creates a Service with dependencies.
func NewService(store userStore, recorder activityRecorder, cfg config.AuthConfig) *Service {
	return &Service{
		store:    store,
		activity: recorder,
		cfg:      cfg,
		nowFunc:  time.Now,
		idIssuer: "infinityfire",
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
	}
}

// LoginInput carries login credentials. Login is a username or an email.
type LoginInput struct {
	Login    string
	Password string
}

// AuthResult contains user and token information.
type AuthResult struct {
	User  User
	Token AccessToken
}

// CreateUserInput carries an admin-created account.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// UserClaims describes the validated identity extracted from an access token.
type UserClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Login authenticates credentials, stamps the login and issues an access token.
func (s *Service) Login(ctx context.Context, input LoginInput, rc activity.RequestContext) (AuthResult, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" || input.Password == "" || len(input.Password) > maxPasswordLength {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, ErrInactiveUser
	}

	now := s.nowFunc()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return AuthResult{}, err
	}
	user.LastLogin = &now

	token, err := s.generateAccessToken(user, now)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	s.activity.Record(ctx, user.ID, activity.KindLogin, "User logged in", rc, map[string]any{
		"username": user.Username,
	})

	return AuthResult{User: user, Token: token}, nil
}

// Logout records the logout. Tokens are stateless, so nothing is revoked.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, rc activity.RequestContext) {
	s.activity.Record(ctx, userID, activity.KindLogout, "User logged out", rc, nil)
}

// Me returns the current user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.store.FindUserByID(ctx, userID)
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// CreateUser registers an account on behalf of an administrator.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if input.Role == "" {
		input.Role = RoleUser
	}
	if !input.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
		return User{}, ErrWeakPassword
	}

	hashed, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, NewUser{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hashed,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
	})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return User{}, ErrUserAlreadyExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUser changes role, active flag or names.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (User, error) {
	if upd.Role != nil && !upd.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	return s.store.UpdateUser(ctx, id, upd)
}

// EnsureAdmin creates the configured bootstrap administrator when no account
// with that email exists. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, bootstrap config.BootstrapAdminConfig) (bool, error) {
	if !bootstrap.Enabled() {
		return false, nil
	}

	_, err := s.store.FindUserByLogin(ctx, strings.ToLower(bootstrap.Email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Username: bootstrap.Username,
		Email:    bootstrap.Email,
		Password: bootstrap.Password,
		Role:     RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	return true, nil
}

// Authenticate validates the token and reloads its subject so that
// deactivation and role changes apply to tokens already issued.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (ContextUser, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return ContextUser{}, err
	}

	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ContextUser{}, ErrUnauthorized
		}
		return ContextUser{}, fmt.Errorf("load token subject: %w", err)
	}
	if !user.IsActive {
		return ContextUser{}, ErrInactiveUser
	}

	return ContextUser{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// ValidateAccessToken verifies the token signature and extracts user claims.
func (s *Service) ValidateAccessToken(tokenString string) (UserClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return UserClaims{}, ErrUnauthorized
	}

	parsed, err := s.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.AccessTokenSecret), nil
	})
	if err != nil || !parsed.Valid {
		return UserClaims{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, ErrUnauthorized
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return UserClaims{}, ErrUnauthorized
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return UserClaims{}, ErrUnauthorized
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	expFloat, okExp := claims["exp"].(float64)
	if !okExp {
		return UserClaims{}, ErrUnauthorized
	}
	exp := time.Unix(int64(expFloat), 0)

	iat := time.Time{}
	if iatFloat, ok := claims["iat"].(float64); ok {
		iat = time.Unix(int64(iatFloat), 0)
	}

	if exp.Before(s.nowFunc()) {
		return UserClaims{}, ErrUnauthorized
	}

	return UserClaims{
		UserID:    userID,
		Email:     email,
		Role:      Role(role),
		ExpiresAt: exp,
		IssuedAt:  iat,
	}, nil
}

func (s *Service) generateAccessToken(user User, now time.Time) (AccessToken, error) {
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"iss":   s.idIssuer,
		"aud":   "infinityfire-api",
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"email": user.Email,
		"role":  string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length of %d characters", maxPasswordLength)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
