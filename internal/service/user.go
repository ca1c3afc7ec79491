package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/metrics"
	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/repository"
)

// UserRepository is the persistence the user service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByToken(ctx context.Context, userID, access, token string) (*model.User, error)
	AddUserToken(ctx context.Context, userID string, token model.Token) error
	RemoveUserToken(ctx context.Context, userID, token string) (bool, error)
}

// SessionCache short-circuits token resolution. Optional.
// Once RevokeSession returns, GetSession must miss for that token and
// SetSession must not store it again.
type SessionCache interface {
	GetSession(ctx context.Context, token string) (*model.User, error)
	SetSession(ctx context.Context, token string, user *model.User) error
	RevokeSession(ctx context.Context, token string) error
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// UserService handles accounts and sessions.
type UserService struct {
	repo    UserRepository
	cache   SessionCache
	hasher  *auth.Hasher
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewUserService creates a UserService. cache may be nil.
func NewUserService(
	repo UserRepository,
	cache SessionCache,
	hasher *auth.Hasher,
	tokens *auth.TokenIssuer,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:    repo,
		cache:   cache,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates an account and its first session.
func (s *UserService) Register(ctx context.Context, in Credentials) (*model.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}

	digest, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        in.Email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, err := s.tokens.Issue(user.ID, auth.ScopeAuth)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = []model.Token{{Access: auth.ScopeAuth, Token: token}}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered", slog.String("user_id", user.ID))

	return user, token, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		// burn the same hashing cost as a real check
		s.hasher.VerifyPassword(password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and opens a new session, leaving existing ones intact.
func (s *UserService) Login(ctx context.Context, in Credentials) (*model.User, string, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		s.metrics.IncLogin(false)
		return nil, "", &ValidationError{Field: "email", Message: "email and password are required"}
	}

	user, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncLogin(false)
		}
		return nil, "", err
	}

	token, err := s.IssueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncLogin(true)
	return user, token, nil
}

// IssueSession signs a fresh auth token and appends it to the user's sessions.
func (s *UserService) IssueSession(ctx context.Context, user *model.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, auth.ScopeAuth)
	if err != nil {
		return "", err
	}

	entry := model.Token{Access: auth.ScopeAuth, Token: token}
	if err := s.repo.AddUserToken(ctx, user.ID, entry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	user.Tokens = append(user.Tokens, entry)

	return token, nil
}

// Logout revokes exactly token. Revoking an unknown token is a no-op.
func (s *UserService) Logout(ctx context.Context, user *model.User, token string) error {
	removed, err := s.repo.RemoveUserToken(ctx, user.ID, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.RevokeSession(ctx, token); err != nil {
			return fmt.Errorf("evict cached session: %w", err)
		}
	}

	if removed {
		s.metrics.IncLogout()
	}
	user.RemoveToken(token)
	return nil
}

// ResolveByToken returns the user a live token belongs to.
// Every failure wraps ErrUnauthorized together with the specific cause,
// except store outages which surface as plain errors.
func (s *UserService) ResolveByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken)
	}

	claims, err := s.tokens.Verify(token, auth.ScopeAuth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if s.cache != nil {
		cached, err := s.cache.GetSession(ctx, token)
		switch {
		case err != nil:
			s.logger.Warn("session cache read failed", slog.String("error", err.Error()))
		case cached != nil && cached.ID == claims.UserID:
			s.metrics.IncSessionCacheHit()
			return cached, nil
		default:
			s.metrics.IncSessionCacheMiss()
		}
	}

	user, err := s.repo.FindUserByToken(ctx, claims.UserID, auth.ScopeAuth, token)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenRevoked)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSession(ctx, token, user); err != nil {
			s.logger.Warn("session cache write failed", slog.String("error", err.Error()))
		}
	}

	return user, nil
}

// RejectReason classifies a ResolveByToken error for logs and metrics.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return metrics.ReasonMissingToken
	case errors.Is(err, auth.ErrTokenExpired):
		return metrics.ReasonExpired
	case errors.Is(err, auth.ErrInvalidSignature):
		return metrics.ReasonBadSignature
	case errors.Is(err, auth.ErrWrongScope):
		return metrics.ReasonWrongScope
	case errors.Is(err, auth.ErrMalformedToken):
		return metrics.ReasonMalformed
	case errors.Is(err, ErrTokenRevoked):
		return metrics.ReasonRevoked
	default:
		return metrics.ReasonInternal
	}
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.HashPassword("not-a-real-password")
		if err != nil {
			s.logger.Error("failed to prepare dummy digest", slog.String("error", err.Error()))
			return
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
