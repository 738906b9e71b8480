package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
	"github.com/louisbranch/backer.space/internal/platform/logging"
	"github.com/louisbranch/backer.space/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	userSelfPath  = "/v1/users/self"
	discoveryPath = "/v1/discover"

	// maxErrorBody bounds how much of a failed response is kept for logs.
	maxErrorBody = 4 << 10
)

// HTTPOption customises an HTTPService.
type HTTPOption func(*HTTPService)

// withHTTPClient replaces the default instrumented client.
func withHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLanguage sets the Accept-Language sent with every request.
func WithLanguage(tag language.Tag) HTTPOption {
	return func(s *HTTPService) { s.language = tag }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(s *HTTPService) { s.logger = logging.OrNop(logger) }
}

// HTTPService talks JSON to the backer.space API.
type HTTPService struct {
	baseURL  *url.URL
	client   *http.Client
	token    string
	language language.Tag
	logger   *zap.Logger
}

// NewHTTPService returns a Service for the API rooted at baseURL. An empty
// baseURL yields the unavailable service.
func NewHTTPService(baseURL string, opts ...HTTPOption) (Service, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return NewUnavailableService(), nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "parse api base url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, apperrors.E(apperrors.KindInvalidInput, fmt.Sprintf("api base url scheme %q is not http(s)", parsed.Scheme))
	}
	s := &HTTPService{
		baseURL: parsed,
		client: &http.Client{
			Timeout:   timeouts.APIRequest,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		language: language.English,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchUserSelf loads the authenticated user.
func (s *HTTPService) FetchUserSelf(ctx context.Context) (User, error) {
	var user User
	if err := s.get(ctx, userSelfPath, nil, &user); err != nil {
		return User{}, fmt.Errorf("fetch user self: %w", err)
	}
	return user, nil
}

// FetchDiscovery loads one page of projects matching params.
func (s *HTTPService) FetchDiscovery(ctx context.Context, params DiscoveryParams) (DiscoveryEnvelope, error) {
	var envelope DiscoveryEnvelope
	if err := s.get(ctx, discoveryPath, params.Encode(), &envelope); err != nil {
		return DiscoveryEnvelope{}, fmt.Errorf("fetch discovery: %w", err)
	}
	return envelope, nil
}

// Login returns a copy that authenticates with token.
func (s *HTTPService) Login(token string) Service {
	out := *s
	out.token = strings.TrimSpace(token)
	return &out
}

// Logout returns a copy without credentials.
func (s *HTTPService) Logout() Service {
	out := *s
	out.token = ""
	return &out
}

// IsAuthenticated reports whether requests carry a token.
func (s *HTTPService) IsAuthenticated() bool {
	return s.token != ""
}

func (s *HTTPService) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := s.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInvalidInput, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", s.language.String())
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "api request", err)
	}
	defer resp.Body.Close()

	s.logger.Debug("api request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("authenticated", s.token != ""),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.Error{
			Kind:    apperrors.KindFromHTTPStatus(resp.StatusCode),
			Message: fmt.Sprintf("api responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, "decode response", err)
	}
	return nil
}
