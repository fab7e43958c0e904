package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"docuvault/internal/config"
	"docuvault/internal/email"
	"docuvault/internal/model"
	"docuvault/internal/repository"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCodeInvalid        = errors.New("verification code is invalid")
	ErrCodeExpired        = errors.New("verification code has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// codeTTL is how long an emailed verification code stays valid.
const codeTTL = 24 * time.Hour

// Identity is the authenticated caller extracted from a session token.
type Identity struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

// AuthResult bundles a user with a freshly issued session token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService defines the use cases for accounts and sessions.
type AuthService interface {
	// Register creates an account, emails a verification code, and issues a
	// session token. New accounts start as unverified guests.
	Register(ctx context.Context, emailAddr, password, name string) (*AuthResult, error)

	// Login checks credentials and issues a session token.
	Login(ctx context.Context, emailAddr, password string) (*AuthResult, error)

	// VerifyCode redeems an emailed code and marks the account verified.
	VerifyCode(ctx context.Context, emailAddr, code string) (*model.User, error)

	// ResendCode generates and emails a fresh verification code.
	ResendCode(ctx context.Context, emailAddr string) error

	// UpdateRole changes a user's role. Admin-only at the HTTP layer.
	UpdateRole(ctx context.Context, userID, role string) (*model.User, error)

	// Profile returns the account for an authenticated caller.
	Profile(ctx context.Context, userID string) (*model.User, error)

	// VerifyToken validates a session token and returns the caller identity.
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

type authService struct {
	users  repository.UserRepository
	mailer email.Sender
	cfg    config.AuthConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, mailer email.Sender, cfg config.AuthConfig) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenTTLHrs == 0 {
		cfg.TokenTTLHrs = 168
	}
	return &authService{users: users, mailer: mailer, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, emailAddr, password, name string) (*AuthResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:        emailAddr,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         model.RoleGuest,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueCode(ctx, user); err != nil {
		// The account exists; the client can request a resend.
		logEvent("auth", "verification_email_failed", map[string]any{
			"email":         user.Email,
			"error_message": err.Error(),
		})
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) VerifyCode(ctx context.Context, emailAddr, code string) (*model.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil, ErrEmailRequired
	}
	code = strings.TrimSpace(code)

	stored, err := s.users.GetVerificationCode(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("load verification code: %w", err)
	}
	if stored.Code != code {
		return nil, ErrCodeInvalid
	}
	if stored.Expired(time.Now()) {
		return nil, ErrCodeExpired
	}

	if err := s.users.MarkVerified(ctx, emailAddr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	if err := s.users.DeleteVerificationCode(ctx, emailAddr); err != nil {
		logEvent("auth", "redeemed_code_cleanup_failed", map[string]any{
			"email":         emailAddr,
			"error_message": err.Error(),
		})
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

func (s *authService) ResendCode(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return ErrEmailRequired
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	return s.issueCode(ctx, user)
}

func (s *authService) UpdateRole(ctx context.Context, userID, role string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	switch role {
	case model.RoleGuest, model.RoleMember, model.RoleAdmin:
	default:
		return nil, ErrInvalidRole
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	return user, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, _ := claims["sub"].(string)
	if id == "" {
		return nil, ErrInvalidToken
	}

	// Role and verification status are read fresh so a promotion or a
	// completed verification takes effect without re-login.
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &Identity{ID: user.ID, Email: user.Email, Role: user.Role, IsVerified: user.IsVerified}, nil
}

func (s *authService) issueCode(ctx context.Context, user *model.User) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	vc := &model.VerificationCode{
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
	}
	if err := s.users.SetVerificationCode(ctx, vc); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return s.mailer.SendVerificationCode(user.Email, user.Name, code)
}

func (s *authService) signToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(s.cfg.TokenTTLHrs) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// generateCode returns a uniformly random 6-digit code with leading zeros
// preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
