package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/louisbranch/backer.space/internal/api"
	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
	"github.com/louisbranch/backer.space/internal/platform/logging"
	sessionsqlite "github.com/louisbranch/backer.space/internal/session/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("BACKER_SPACE_API_BASE_URL", "")
	t.Setenv("BACKER_SPACE_SESSION_DB", "")

	cfg, err := ParseConfig(flag.NewFlagSet("profile", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Language != "en" {
		t.Fatalf("Language = %q, want %q", cfg.Language, "en")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.APIDelay != 0 {
		t.Fatalf("APIDelay = %v, want 0", cfg.APIDelay)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BACKER_SPACE_API_BASE_URL", "http://env.example")
	t.Setenv("BACKER_SPACE_LANGUAGE", "de")
	t.Setenv("BACKER_SPACE_API_DELAY", "2s")

	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-api", "http://flag.example", "-token", "deadbeef"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.APIBaseURL != "http://flag.example" {
		t.Fatalf("APIBaseURL = %q, want flag value", cfg.APIBaseURL)
	}
	if cfg.AccessToken != "deadbeef" {
		t.Fatalf("AccessToken = %q, want %q", cfg.AccessToken, "deadbeef")
	}
	if cfg.Language != "de" {
		t.Fatalf("Language = %q, want env value", cfg.Language)
	}
	if cfg.APIDelay != 2*time.Second {
		t.Fatalf("APIDelay = %v, want 2s", cfg.APIDelay)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// fakeAPI serves the two profile endpoints.
type fakeAPI struct {
	user      api.User
	projects  []api.Project
	failDisco bool
	userCalls atomic.Int32
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/self", func(w http.ResponseWriter, r *http.Request) {
		f.userCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer deadbeef" {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/v1/discover", func(w http.ResponseWriter, r *http.Request) {
		if f.failDisco {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		if got := r.URL.Query().Get("backed"); got != "1" {
			t.Errorf("backed = %q, want 1", got)
		}
		_ = json.NewEncoder(w).Encode(api.DiscoveryEnvelopeTemplate().WithProjects(f.projects))
	})
	return mux
}

func testConfig(baseURL, dbPath string) Config {
	return Config{
		APIBaseURL:  baseURL,
		AccessToken: "deadbeef",
		SessionDB:   dbPath,
		Language:    "en",
		Logging:     logging.Config{Level: "error"},
	}
}

func TestRunPrintsProfile(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	fake := &fakeAPI{user: api.UserTemplate(), projects: []api.Project{api.ProjectTemplate()}}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	if err := run(context.Background(), testConfig(srv.URL, ""), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()
	if strings.Count(got, "user 1 Blob") != 2 {
		t.Fatalf("output = %q, want cached and refreshed user lines", got)
	}
	if !strings.Contains(got, "backed 1 The Project 50% funded") {
		t.Fatalf("output = %q, want backed project line", got)
	}
	if !strings.Contains(got, "1 backed projects") {
		t.Fatalf("output = %q, want backed count line", got)
	}
	if strings.Contains(got, "no backed projects") {
		t.Fatalf("output = %q, want no empty state", got)
	}
}

func TestRunShowsEmptyState(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	fake := &fakeAPI{user: api.UserTemplate()}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	if err := run(context.Background(), testConfig(srv.URL, ""), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "no backed projects yet") {
		t.Fatalf("output = %q, want empty state", out.String())
	}
	if !strings.Contains(out.String(), "0 backed projects") {
		t.Fatalf("output = %q, want zero count", out.String())
	}
}

func TestRunReturnsRefreshFailure(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	fake := &fakeAPI{user: api.UserTemplate(), failDisco: true}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	err := run(context.Background(), testConfig(srv.URL, ""), &out)
	if !apperrors.Is(err, apperrors.KindRefreshFailed) {
		t.Fatalf("run() error = %v, want refresh_failed", err)
	}
	if !apperrors.Is(err, apperrors.KindUnavailable) {
		t.Fatalf("run() error = %v, want wrapped unavailable", err)
	}
	if !strings.Contains(out.String(), "refresh failed (unavailable)") {
		t.Fatalf("output = %q, want failure line with cause kind", out.String())
	}
}

func TestRunPersistsAndRestoresSession(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	fake := &fakeAPI{user: api.UserTemplate(), projects: []api.Project{api.ProjectTemplate()}}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	dbPath := filepath.Join(t.TempDir(), "nested", "session.db")
	cfg := testConfig(srv.URL, dbPath)
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("first run() error = %v", err)
	}
	// login fetch + refresh fetch
	if got := fake.userCalls.Load(); got != 2 {
		t.Fatalf("user calls after first run = %d, want 2", got)
	}

	cfg.AccessToken = ""
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if got := fake.userCalls.Load(); got != 3 {
		t.Fatalf("user calls after second run = %d, want 3", got)
	}

	store, err := sessionsqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	envelope, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v; want stored session", ok, err)
	}
	if envelope.AccessToken != "deadbeef" {
		t.Fatalf("AccessToken = %q, want %q", envelope.AccessToken, "deadbeef")
	}
}

func TestRunWithoutSessionPrintsNothing(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	cfg := testConfig("", "")
	cfg.AccessToken = ""
	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want empty", out.String())
	}
}

func TestRunRejectsBadLanguage(t *testing.T) {
	t.Setenv("BACKER_SPACE_OTEL_ENABLED", "false")

	cfg := testConfig("", "")
	cfg.Language = "not a tag!"
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected language parse error")
	}
}
