package auth

import (
	"context"
	"strings"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// ExtractBearerToken returns the credential after the "Bearer " prefix.
func ExtractBearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Resolver maps an Authorization header to a caller identity.
type Resolver struct {
	verifier Verifier
}

func NewResolver(verifier Verifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve never fails loudly: a missing or rejected credential just means
// there is no identity.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (Identity, bool) {
	token, err := ExtractBearerToken(authorization)
	if err != nil {
		return Identity{}, false
	}

	identity, err := r.verifier.Verify(ctx, token)
	if err != nil {
		logger.Warn("Auth: token rejected", zap.Error(err))
		return Identity{}, false
	}
	return identity, true
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
