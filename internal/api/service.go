package api

import (
	"context"

	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
)

// Service exposes the backend operations the client screens need.
//
// Implementations are immutable: Login and Logout return a new Service and
// leave the receiver untouched.
type Service interface {
	// FetchUserSelf loads the authenticated user.
	FetchUserSelf(ctx context.Context) (User, error)
	// FetchDiscovery loads one page of projects matching params.
	FetchDiscovery(ctx context.Context, params DiscoveryParams) (DiscoveryEnvelope, error)
	// Login returns a Service that authenticates with token.
	Login(token string) Service
	// Logout returns a Service without credentials.
	Logout() Service
	// IsAuthenticated reports whether requests carry a token.
	IsAuthenticated() bool
}

// NewUnavailableService returns a Service whose every fetch fails with
// KindUnavailable.
func NewUnavailableService() Service {
	return unavailableService{}
}

type unavailableService struct {
	token string
}

func (unavailableService) FetchUserSelf(context.Context) (User, error) {
	return User{}, apperrors.E(apperrors.KindUnavailable, "api service is not configured")
}

func (unavailableService) FetchDiscovery(context.Context, DiscoveryParams) (DiscoveryEnvelope, error) {
	return DiscoveryEnvelope{}, apperrors.E(apperrors.KindUnavailable, "api service is not configured")
}

func (unavailableService) Login(token string) Service { return unavailableService{token: token} }

func (unavailableService) Logout() Service { return unavailableService{} }

func (s unavailableService) IsAuthenticated() bool { return s.token != "" }
