package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskz/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated is returned when no usable token is presented.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrPrincipalNotFound is returned for a valid token whose user no longer exists.
	ErrPrincipalNotFound = errors.New("user not found")
)

// UserFinder loads the principal named by a token subject.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns a bearer token into the authenticated user. It re-reads the
// user on every call.
type Resolver struct {
	codec  *TokenCodec
	users  UserFinder
	logger *zap.Logger
}

func NewResolver(codec *TokenCodec, users UserFinder, logger *zap.Logger) *Resolver {
	return &Resolver{
		codec:  codec,
		users:  users,
		logger: logger,
	}
}

// Resolve validates token and loads its subject.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.codec.Validate(token)
	if err != nil {
		r.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrUnauthenticated
	}

	user, err := r.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return user, nil
}

// IdentityState is the outcome of an optional resolution.
type IdentityState int

const (
	// Anonymous means no bearer token was presented.
	Anonymous IdentityState = iota
	// Authenticated means the token resolved to an existing user.
	Authenticated
	// Rejected means a bearer token was presented but could not be resolved.
	Rejected
)

// Identity is the tri-state result of ResolveOptional.
type Identity struct {
	State     IdentityState
	Principal *models.User
	// Err holds the reason a token was rejected.
	Err error
}

// ResolveOptional inspects an Authorization header without requiring one. A
// missing header or a non-bearer scheme yields Anonymous; a bad token yields
// Rejected rather than an error so the caller decides whether it matters.
func (r *Resolver) ResolveOptional(ctx context.Context, authorization string) (Identity, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return Identity{State: Anonymous}, nil
	}

	user, err := r.Resolve(ctx, token)
	switch {
	case err == nil:
		return Identity{State: Authenticated, Principal: user}, nil
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrPrincipalNotFound):
		return Identity{State: Rejected, Err: err}, nil
	default:
		return Identity{}, err
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
