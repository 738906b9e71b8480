// Package profile parses profile command flags and renders one profile
// screen appearance to a terminal.
package profile

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/backer.space/internal/api"
	"github.com/louisbranch/backer.space/internal/environment"
	entrypoint "github.com/louisbranch/backer.space/internal/platform/cmd"
	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
	"github.com/louisbranch/backer.space/internal/platform/logging"
	"github.com/louisbranch/backer.space/internal/platform/scheduler"
	"github.com/louisbranch/backer.space/internal/platform/timeouts"
	"github.com/louisbranch/backer.space/internal/session"
	sessionsqlite "github.com/louisbranch/backer.space/internal/session/storage/sqlite"
	"github.com/louisbranch/backer.space/internal/signal"
	"github.com/louisbranch/backer.space/internal/tracking"
	profilevm "github.com/louisbranch/backer.space/internal/viewmodel/profile"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Config holds profile command configuration.
type Config struct {
	APIBaseURL  string        `env:"BACKER_SPACE_API_BASE_URL"`
	AccessToken string        `env:"BACKER_SPACE_ACCESS_TOKEN"`
	SessionDB   string        `env:"BACKER_SPACE_SESSION_DB" envDefault:"data/session.db"`
	Language    string        `env:"BACKER_SPACE_LANGUAGE" envDefault:"en"`
	APIDelay    time.Duration `env:"BACKER_SPACE_API_DELAY" envDefault:"0s"`
	Logging     logging.Config
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "Access token used when no session is stored")
	fs.StringVar(&cfg.SessionDB, "session-db", cfg.SessionDB, "SQLite session store path; empty keeps the session in memory")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Accept-Language tag")
	fs.DurationVar(&cfg.APIDelay, "api-delay", cfg.APIDelay, "Delay before the profile refresh")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run shows the signed-in profile once on stdout.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, os.Stdout)
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceProfile, options, func(ctx context.Context) error {
		return show(ctx, cfg, logger, out)
	})
}

func show(ctx context.Context, cfg Config, logger *zap.Logger, out io.Writer) error {
	tag, err := language.Parse(strings.TrimSpace(cfg.Language))
	if err != nil {
		return fmt.Errorf("parse language %q: %w", cfg.Language, err)
	}
	svc, err := api.NewHTTPService(cfg.APIBaseURL, api.WithLanguage(tag), api.WithLogger(logger))
	if err != nil {
		return err
	}

	var store session.Store
	if path := strings.TrimSpace(cfg.SessionDB); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
		sqlStore, err := sessionsqlite.Open(ctx, path)
		if err != nil {
			return err
		}
		defer func() {
			if err := sqlStore.Close(); err != nil {
				logger.Warn("close session store", zap.Error(err))
			}
		}()
		store = sqlStore
	}

	sess, err := restoreSession(ctx, store)
	if err != nil {
		return err
	}

	sched := scheduler.NewBackground()
	env := environment.New(
		environment.WithAPIService(svc),
		environment.WithSession(sess),
		environment.WithSessionStore(store),
		environment.WithTrackingClient(tracking.Multi{tracking.LogClient{Logger: logger}, tracking.OTelClient{}}),
		environment.WithScheduler(sched),
		environment.WithAPIDelay(cfg.APIDelay),
		environment.WithLanguage(tag),
		environment.WithLogger(logger),
	)

	if !sess.IsLoggedIn() && strings.TrimSpace(cfg.AccessToken) != "" {
		if err := loginWithToken(ctx, env, strings.TrimSpace(cfg.AccessToken)); err != nil {
			return err
		}
	}
	if !sess.IsLoggedIn() {
		logger.Info("no session; profile shows nothing until sign in")
	}

	vm := profilevm.New(ctx, env)
	p := &printer{out: out}
	outputs := vm.Outputs()
	outputs.User().Observe(p.user)
	outputs.BackedProjects().Observe(p.projects)
	signal.Map(outputs.BackedProjects(), func(projects []api.Project) int { return len(projects) }).Observe(p.backedCount)
	outputs.ShowEmptyState().Observe(p.emptyState)
	outputs.RefreshFailed().Observe(p.failure)

	vm.Inputs().ViewWillAppear(false)
	sched.Wait()

	return p.err()
}

func restoreSession(ctx context.Context, store session.Store) (*session.Session, error) {
	loadCtx, cancel := context.WithTimeout(ctx, timeouts.SessionStore)
	defer cancel()
	return session.Restore(loadCtx, store)
}

// loginWithToken resolves token to its user and signs the session in.
func loginWithToken(ctx context.Context, env *environment.Environment, token string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, timeouts.APIRequest)
	defer cancel()
	user, err := env.APIService().Login(token).FetchUserSelf(fetchCtx)
	if err != nil {
		return fmt.Errorf("log in with token: %w", err)
	}
	return env.Login(ctx, api.AccessTokenEnvelope{AccessToken: token, User: user})
}

// printer writes one line per emission.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	lastErr error
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) user(u api.User) {
	p.printf("user %d %s (%d backed)", u.ID, u.Name, u.Stats.BackedProjectsCount)
}

func (p *printer) projects(projects []api.Project) {
	for _, project := range projects {
		p.printf("backed %d %s %d%% funded", project.ID, project.Name, project.PercentFunded())
	}
}

func (p *printer) backedCount(n int) {
	p.printf("%d backed projects", n)
}

func (p *printer) emptyState(empty bool) {
	if empty {
		p.printf("no backed projects yet")
	}
}

func (p *printer) failure(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	p.printf("refresh failed (%s): %v", apperrors.KindOf(stderrors.Unwrap(err)), err)
}

func (p *printer) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
