// Package environment bundles the collaborators a view-model depends on.
//
// An Environment is built explicitly and passed to view-models; nothing here
// is global. Tests build one per case with fakes, and With derives a scoped
// variant without touching the original.
package environment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/backer.space/internal/api"
	"github.com/louisbranch/backer.space/internal/platform/logging"
	"github.com/louisbranch/backer.space/internal/platform/scheduler"
	"github.com/louisbranch/backer.space/internal/session"
	"github.com/louisbranch/backer.space/internal/tracking"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Environment is safe for concurrent use. Only the API service changes after
// construction, through Login and Logout.
type Environment struct {
	mu         sync.RWMutex
	apiService api.Service

	session        *session.Session
	sessionStore   session.Store
	trackingClient tracking.Client
	distinctID     string
	koala          *tracking.Koala
	scheduler      scheduler.Scheduler
	apiDelay       time.Duration
	language       language.Tag
	logger         *zap.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithAPIService sets the backend client.
func WithAPIService(svc api.Service) Option {
	return func(e *Environment) {
		if svc != nil {
			e.apiService = svc
		}
	}
}

// WithSession sets the signed-in state.
func WithSession(s *session.Session) Option {
	return func(e *Environment) {
		if s != nil {
			e.session = s
		}
	}
}

// WithSessionStore persists logins and refreshed users to store.
func WithSessionStore(store session.Store) Option {
	return func(e *Environment) { e.sessionStore = store }
}

// WithTrackingClient sets where analytics events go.
func WithTrackingClient(client tracking.Client) Option {
	return func(e *Environment) { e.trackingClient = client }
}

// WithScheduler sets where deferred work runs.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(e *Environment) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithAPIDelay delays scheduled API work by d.
func WithAPIDelay(d time.Duration) Option {
	return func(e *Environment) {
		if d >= 0 {
			e.apiDelay = d
		}
	}
}

// WithLanguage sets the client language.
func WithLanguage(tag language.Tag) Option {
	return func(e *Environment) { e.language = tag }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Environment) { e.logger = logging.OrNop(logger) }
}

// New returns an Environment with defaults for everything not set by opts:
// an unavailable API service, a signed-out session, discarded analytics,
// the Immediate scheduler, English and a no-op logger.
func New(opts ...Option) *Environment {
	e := &Environment{
		apiService:     api.NewUnavailableService(),
		session:        session.New(),
		trackingClient: tracking.Discard{},
		distinctID:     uuid.NewString(),
		scheduler:      scheduler.Immediate{},
		language:       language.English,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.authenticateAPI()
	e.koala = e.newKoala()
	return e
}

// With returns a copy of e with opts applied. The copy shares e's session
// unless WithSession replaces it.
func (e *Environment) With(opts ...Option) *Environment {
	out := &Environment{
		apiService:     e.APIService(),
		session:        e.session,
		sessionStore:   e.sessionStore,
		trackingClient: e.trackingClient,
		distinctID:     e.distinctID,
		scheduler:      e.scheduler,
		apiDelay:       e.apiDelay,
		language:       e.language,
		logger:         e.logger,
	}
	for _, opt := range opts {
		opt(out)
	}
	out.authenticateAPI()
	out.koala = out.newKoala()
	return out
}

// authenticateAPI makes the API service match a session signed in before
// the environment was built.
func (e *Environment) authenticateAPI() {
	if token := e.session.AccessToken(); token != "" && !e.apiService.IsAuthenticated() {
		e.apiService = e.apiService.Login(token)
	}
}

func (e *Environment) newKoala() *tracking.Koala {
	return tracking.NewKoala(e.trackingClient,
		tracking.WithDistinctID(e.distinctID),
		tracking.WithCurrentUser(e.CurrentUser),
	)
}

// APIService returns the backend client, authenticated when signed in.
func (e *Environment) APIService() api.Service {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.apiService
}

// Session returns the signed-in state.
func (e *Environment) Session() *session.Session { return e.session }

// Koala returns the analytics tracker.
func (e *Environment) Koala() *tracking.Koala { return e.koala }

// Scheduler returns where deferred work runs.
func (e *Environment) Scheduler() scheduler.Scheduler { return e.scheduler }

// APIDelay returns the delay applied to scheduled API work.
func (e *Environment) APIDelay() time.Duration { return e.apiDelay }

// Language returns the client language.
func (e *Environment) Language() language.Tag { return e.language }

// Logger returns the logger.
func (e *Environment) Logger() *zap.Logger { return e.logger }

// CurrentUser returns the signed-in user, if any.
func (e *Environment) CurrentUser() (api.User, bool) {
	return e.session.CurrentUser()
}

// Login signs envelope's user in: the session takes the envelope, the API
// service starts sending its token and the session store, if any, saves it.
// If saving fails the session and API service are returned to their prior
// state.
func (e *Environment) Login(ctx context.Context, envelope api.AccessTokenEnvelope) error {
	prevEnvelope, wasLoggedIn := e.session.Envelope()
	prevService := e.APIService()

	if err := e.session.Login(envelope); err != nil {
		return err
	}
	e.mu.Lock()
	e.apiService = e.apiService.Login(e.session.AccessToken())
	e.mu.Unlock()
	if err := e.session.Persist(ctx, e.sessionStore); err != nil {
		if wasLoggedIn {
			_ = e.session.Login(prevEnvelope)
		} else {
			e.session.Logout()
		}
		e.mu.Lock()
		e.apiService = prevService
		e.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	e.logger.Debug("logged in", zap.Int64("user_id", envelope.User.ID))
	return nil
}

// Logout signs out and clears the session store, if any.
func (e *Environment) Logout(ctx context.Context) error {
	e.session.Logout()
	e.mu.Lock()
	e.apiService = e.apiService.Logout()
	e.mu.Unlock()
	if err := e.session.Persist(ctx, e.sessionStore); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	e.logger.Debug("logged out")
	return nil
}

// UpdateCurrentUser stores a refreshed copy of the signed-in user. Updates
// for another account are ignored.
func (e *Environment) UpdateCurrentUser(ctx context.Context, user api.User) error {
	if !e.session.UpdateCurrentUser(user) {
		return nil
	}
	if err := e.session.Persist(ctx, e.sessionStore); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
