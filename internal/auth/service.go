package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bloghq/blog-backend/internal/storage"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles registration and login.
type Service struct {
	store  storage.Store
	tokens *Tokens
	logger *zap.SugaredLogger
}

// Result is what a successful register or login hands back to the transport
// layer.
type Result struct {
	Token     string
	ExpiresIn int
	User      *storage.User
}

func NewService(store storage.Store, tokens *Tokens, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account and returns a freshly issued token.
// A taken email surfaces as storage.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Result, error) {
	digest, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storage.User{
		Name:     name,
		Email:    email,
		Password: digest,
		Active:   1,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("User registered", "user_id", user.ID)
	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	s.logger.Debugw("User logged in", "user_id", user.ID)
	return s.issue(user)
}

func (s *Service) issue(user *storage.User) (*Result, error) {
	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Result{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      user,
	}, nil
}
