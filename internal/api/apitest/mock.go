// Package apitest provides a configurable in-memory api.Service.
package apitest

import (
	"context"
	"sync"

	"github.com/louisbranch/backer.space/internal/api"
)

// Option configures a MockService.
type Option func(*MockService)

// WithFetchUserSelfResponse sets the user returned by FetchUserSelf.
func WithFetchUserSelfResponse(user api.User) Option {
	return func(m *MockService) { m.userSelf = user }
}

// WithFetchUserSelfError makes FetchUserSelf fail with err.
func WithFetchUserSelfError(err error) Option {
	return func(m *MockService) { m.userSelfErr = err }
}

// WithFetchDiscoveryResponse sets the envelope returned by FetchDiscovery.
func WithFetchDiscoveryResponse(envelope api.DiscoveryEnvelope) Option {
	return func(m *MockService) { m.discovery = envelope }
}

// WithFetchDiscoveryError makes FetchDiscovery fail with err.
func WithFetchDiscoveryError(err error) Option {
	return func(m *MockService) { m.discoveryErr = err }
}

// MockService answers with canned responses and records what it was asked.
// Without options it returns api.UserTemplate and a non-empty
// api.DiscoveryEnvelopeTemplate.
type MockService struct {
	userSelf     api.User
	userSelfErr  error
	discovery    api.DiscoveryEnvelope
	discoveryErr error
	token        string

	calls *calls
}

type calls struct {
	mu              sync.Mutex
	userSelf        int
	discoveryParams []api.DiscoveryParams
}

// NewMockService returns a MockService with the given options applied.
func NewMockService(opts ...Option) *MockService {
	m := &MockService{
		userSelf:  api.UserTemplate(),
		discovery: api.DiscoveryEnvelopeTemplate(),
		calls:     &calls{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchUserSelf returns the configured user or error.
func (m *MockService) FetchUserSelf(context.Context) (api.User, error) {
	m.calls.mu.Lock()
	m.calls.userSelf++
	m.calls.mu.Unlock()
	if m.userSelfErr != nil {
		return api.User{}, m.userSelfErr
	}
	return m.userSelf, nil
}

// FetchDiscovery returns the configured envelope or error.
func (m *MockService) FetchDiscovery(_ context.Context, params api.DiscoveryParams) (api.DiscoveryEnvelope, error) {
	m.calls.mu.Lock()
	m.calls.discoveryParams = append(m.calls.discoveryParams, params)
	m.calls.mu.Unlock()
	if m.discoveryErr != nil {
		return api.DiscoveryEnvelope{}, m.discoveryErr
	}
	return m.discovery, nil
}

// Login returns a copy carrying token. Copies share call records.
func (m *MockService) Login(token string) api.Service {
	out := *m
	out.token = token
	return &out
}

// Logout returns a copy without a token. Copies share call records.
func (m *MockService) Logout() api.Service {
	out := *m
	out.token = ""
	return &out
}

// IsAuthenticated reports whether Login was applied.
func (m *MockService) IsAuthenticated() bool { return m.token != "" }

// Token returns the token set by Login.
func (m *MockService) Token() string { return m.token }

// FetchUserSelfCalls reports how many times FetchUserSelf ran.
func (m *MockService) FetchUserSelfCalls() int {
	m.calls.mu.Lock()
	defer m.calls.mu.Unlock()
	return m.calls.userSelf
}

// FetchDiscoveryParams returns the params of every FetchDiscovery call.
func (m *MockService) FetchDiscoveryParams() []api.DiscoveryParams {
	m.calls.mu.Lock()
	defer m.calls.mu.Unlock()
	return append([]api.DiscoveryParams(nil), m.calls.discoveryParams...)
}

var _ api.Service = (*MockService)(nil)
