package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/zinchenko-maksym/zinware-backend/internal/user"
)

var (
	ErrInvalidEmail    = errors.New("malformed email address")
	ErrInvalidPassword = errors.New("password is required")

	// ErrInvalidCredentials is the single rejection value for login. Bad
	// email and bad password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service owns registration and login. It keeps no per-call state: the
// authenticated principal is carried by the returned token, never by a field.
type Service struct {
	users  user.Repository
	hasher PasswordHasher
	signer TokenSigner

	// dummyHash is compared against the supplied password when the email is
	// unknown, so lookup misses and hash mismatches take similar time.
	dummyHash string
}

func NewService(users user.Repository, hasher PasswordHasher, signer TokenSigner) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{users: users, hasher: hasher, signer: signer, dummyHash: dummy}, nil
}

// Register creates a new user. The raw password is hashed exactly once and
// never stored or logged.
func (s *Service) Register(ctx context.Context, email, rawPassword string) (*user.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if rawPassword == "" {
		return nil, ErrInvalidPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	// The unique index on users.email backstops the pre-check: a concurrent
	// duplicate registration surfaces as ErrEmailExists here.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and returns a freshly signed token whose
// subject is the user id.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	email = normalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn a compare anyway so unknown emails are not detectable
			// by response timing.
			_ = s.hasher.Compare(s.dummyHash, rawPassword)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.signer.Sign(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
