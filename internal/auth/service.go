// Package auth implements the authentication collaborator the billing
// core trusts for ownership checks: credential verification, token
// issuance and token-to-user resolution. Tokens live in redis with a TTL,
// so restarting the process does not invalidate them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
	"github.com/invoiceflow/invoiceflow/internal/users"
)

// tokenGrace keeps expired token payloads around long enough to report
// "expired" instead of "invalid" to recently timed-out sessions.
const tokenGrace = 24 * time.Hour

// DemoEmail is the account created by EnsureDemoUser on first run.
const DemoEmail = "demo@invoiceflow.com"

const demoPassword = "demo123"

// Service wraps authentication business rules.
type Service struct {
	users    *store.Store[*users.User]
	tokens   *redis.Client
	ttl      time.Duration
	cost     int
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service. cost is the bcrypt cost used for new
// password hashes; ttl bounds token lifetime.
func NewService(usersStore *store.Store[*users.User], tokens *redis.Client, ttl time.Duration, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:    usersStore,
		tokens:   tokens,
		ttl:      ttl,
		cost:     cost,
		validate: validator.New(),
		now:      time.Now,
	}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	FirstName string
	LastName  string
	Company   string
	Phone     string
	Role      users.Role
}

type tokenPayload struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a new user account and issues a token. Email
// uniqueness is enforced here, at the authentication layer.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*users.User, string, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	existing, err := s.users.FindOneBy(ctx, store.Where{"email": input.Email})
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("user %q: %w", input.Email, shared.ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, users.New(users.Input{
		Email:     input.Email,
		Password:  string(hash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Company:   input.Company,
		Phone:     input.Phone,
		Role:      input.Role,
	}))
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return sanitize(user), token, nil
}

// Authenticate validates email/password credentials, refreshes the
// user's last login and issues a token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, string, error) {
	user, err := s.users.FindOneBy(ctx, store.Where{"email": email})
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	if _, err := s.users.Update(ctx, user.ID, map[string]any{"lastLogin": shared.NowStamp()}); err != nil {
		return nil, "", fmt.Errorf("record login: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return sanitize(user), token, nil
}

// CurrentUser resolves a token to its active user.
func (s *Service) CurrentUser(ctx context.Context, token string) (*users.User, error) {
	raw, err := s.tokens.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, shared.ErrInvalidToken
	}
	if s.now().After(payload.ExpiresAt) {
		return nil, shared.ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, shared.ErrInvalidToken
	}
	return sanitize(user), nil
}

// RevokeToken invalidates a token before its expiry.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	if err := s.tokens.Del(ctx, tokenKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// EnsureDemoUser creates the demo account on first run when the user
// store is empty. Safe to call repeatedly.
func (s *Service) EnsureDemoUser(ctx context.Context) (*users.User, error) {
	existing, err := s.users.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if len(existing) > 0 {
		for _, user := range existing {
			if user.Email == DemoEmail {
				return sanitize(user), nil
			}
		}
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, users.New(users.Input{
		ID:        "demo-user",
		Email:     DemoEmail,
		Password:  string(hash),
		FirstName: "Demo",
		LastName:  "User",
		Company:   "InvoiceFlow Demo",
		Role:      users.RoleAdmin,
	}))
	if err != nil {
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	return sanitize(user), nil
}

func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(tokenPayload{UserID: userID, ExpiresAt: s.now().Add(s.ttl)})
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	if err := s.tokens.Set(ctx, tokenKey(token), payload, s.ttl+tokenGrace).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

func tokenKey(token string) string {
	return "token:" + token
}

// sanitize returns a copy of the user with the credential hash blanked.
func sanitize(user *users.User) *users.User {
	clean := *user
	clean.Password = ""
	return &clean
}
