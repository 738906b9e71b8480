package profile

import (
	"context"
	"sync"

	"github.com/louisbranch/backer.space/internal/api"
	"github.com/louisbranch/backer.space/internal/environment"
	apperrors "github.com/louisbranch/backer.space/internal/platform/errors"
	"github.com/louisbranch/backer.space/internal/platform/timeouts"
	"github.com/louisbranch/backer.space/internal/signal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBackedPerPage is the page size requested for backed projects.
const DefaultBackedPerPage = 20

// ProjectNavigation asks the screen to open Project, attributed to RefTag.
type ProjectNavigation struct {
	Project api.Project
	RefTag  api.RefTag
}

// Phase is where one screen instance is in its appear/refresh cycle.
type Phase int

const (
	// PhaseIdle is before the first appearance.
	PhaseIdle Phase = iota
	// PhaseAwaitingRefresh is after an appearance, before its refresh lands.
	PhaseAwaitingRefresh
	// PhaseRefreshed is after the latest refresh succeeded.
	PhaseRefreshed
	// PhaseRefreshFailed is after the latest refresh failed.
	PhaseRefreshFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingRefresh:
		return "awaiting_refresh"
	case PhaseRefreshed:
		return "refreshed"
	case PhaseRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

// Inputs are the events the screen reports.
type Inputs interface {
	SettingsButtonTapped()
	ProjectTapped(project api.Project)
	ViewWillAppear(animated bool)
}

// Outputs are the signals the screen binds to.
type Outputs interface {
	User() *signal.Signal[api.User]
	BackedProjects() *signal.Signal[[]api.Project]
	GoToProject() *signal.Signal[ProjectNavigation]
	GoToSettings() *signal.Signal[struct{}]
	ShowEmptyState() *signal.Signal[bool]
	RefreshFailed() *signal.Signal[error]
}

// ViewModel is the profile screen's logic. Build it with New.
type ViewModel struct {
	env *environment.Environment
	ctx context.Context

	mu    sync.Mutex
	phase Phase

	user           *signal.Signal[api.User]
	emitUser       func(api.User)
	backedProjects *signal.Signal[[]api.Project]
	emitBacked     func([]api.Project)
	goToProject    *signal.Signal[ProjectNavigation]
	emitGoToProj   func(ProjectNavigation)
	goToSettings   *signal.Signal[struct{}]
	emitSettings   func(struct{})
	showEmptyState *signal.Signal[bool]
	emitEmpty      func(bool)
	refreshFailed  *signal.Signal[error]
	emitFailed     func(error)
}

// New returns a ViewModel reading from env. ctx bounds every refresh and
// carries the trace span analytics attach to; nil means Background.
func New(ctx context.Context, env *environment.Environment) *ViewModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if env == nil {
		env = environment.New()
	}
	vm := &ViewModel{env: env, ctx: ctx}
	vm.user, vm.emitUser = signal.Pipe[api.User]()
	vm.backedProjects, vm.emitBacked = signal.Pipe[[]api.Project]()
	vm.goToProject, vm.emitGoToProj = signal.Pipe[ProjectNavigation]()
	vm.goToSettings, vm.emitSettings = signal.Pipe[struct{}]()
	vm.showEmptyState, vm.emitEmpty = signal.Pipe[bool]()
	vm.refreshFailed, vm.emitFailed = signal.Pipe[error]()
	return vm
}

// Inputs returns vm as its Inputs.
func (vm *ViewModel) Inputs() Inputs { return vm }

// Outputs returns vm as its Outputs.
func (vm *ViewModel) Outputs() Outputs { return vm }

// Phase reports the current appear/refresh phase.
func (vm *ViewModel) Phase() Phase {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.phase
}

func (vm *ViewModel) setPhase(p Phase) {
	vm.mu.Lock()
	vm.phase = p
	vm.mu.Unlock()
}

// SettingsButtonTapped requests the settings screen.
func (vm *ViewModel) SettingsButtonTapped() {
	vm.emitSettings(struct{}{})
}

// ProjectTapped requests project, always attributed to the backed list.
func (vm *ViewModel) ProjectTapped(project api.Project) {
	nav := ProjectNavigation{Project: project, RefTag: api.RefTagProfileBacked}
	vm.env.Logger().Debug("open project",
		zap.Int64("project_id", project.ID),
		zap.String("source", nav.RefTag.Description()),
	)
	vm.emitGoToProj(nav)
}

// ViewWillAppear emits the cached user, schedules a refresh and, unless
// animated, tracks a profile view.
func (vm *ViewModel) ViewWillAppear(animated bool) {
	if user, ok := vm.env.CurrentUser(); ok {
		vm.setPhase(PhaseAwaitingRefresh)
		vm.emitUser(user)
		vm.env.Scheduler().Schedule(vm.env.APIDelay(), vm.refresh)
	}
	if !animated {
		vm.env.Koala().TrackProfileView(vm.ctx)
	}
}

// User emits the session user on appearance and again after each refresh.
func (vm *ViewModel) User() *signal.Signal[api.User] { return vm.user }

// BackedProjects emits the refreshed list of projects the user backed.
func (vm *ViewModel) BackedProjects() *signal.Signal[[]api.Project] { return vm.backedProjects }

// GoToProject emits once per project tap.
func (vm *ViewModel) GoToProject() *signal.Signal[ProjectNavigation] { return vm.goToProject }

// GoToSettings emits once per settings tap.
func (vm *ViewModel) GoToSettings() *signal.Signal[struct{}] { return vm.goToSettings }

// ShowEmptyState emits whether the refreshed backed list is empty.
func (vm *ViewModel) ShowEmptyState() *signal.Signal[bool] { return vm.showEmptyState }

// RefreshFailed emits a KindRefreshFailed error for each failed refresh.
func (vm *ViewModel) RefreshFailed() *signal.Signal[error] { return vm.refreshFailed }

// refresh loads the user and the backed projects together and emits them
// only when both succeed.
func (vm *ViewModel) refresh() {
	logger := vm.env.Logger()
	svc := vm.env.APIService()

	ctx, cancel := context.WithTimeout(vm.ctx, timeouts.APIRequest)
	defer cancel()

	var (
		user   api.User
		backed api.DiscoveryEnvelope
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = svc.FetchUserSelf(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		backed, err = svc.FetchDiscovery(gctx, backedProjectsParams())
		return err
	})
	if err := g.Wait(); err != nil {
		vm.setPhase(PhaseRefreshFailed)
		failure := apperrors.Wrap(apperrors.KindRefreshFailed, "refresh profile", err)
		logger.Warn("profile refresh failed",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
		)
		vm.emitFailed(failure)
		return
	}

	if err := vm.env.UpdateCurrentUser(ctx, user); err != nil {
		logger.Warn("persist refreshed user", zap.Error(err))
	}
	vm.setPhase(PhaseRefreshed)
	logger.Debug("profile refreshed",
		zap.Int64("user_id", user.ID),
		zap.Int("backed_projects", len(backed.Projects)),
	)

	projects := backed.Projects
	if projects == nil {
		projects = []api.Project{}
	}
	vm.emitUser(user)
	vm.emitBacked(projects)
	vm.emitEmpty(len(projects) == 0)
}

func backedProjectsParams() api.DiscoveryParams {
	backed := true
	return api.DiscoveryParams{
		Backed:  &backed,
		Sort:    api.DiscoverySortEndingSoon,
		PerPage: DefaultBackedPerPage,
	}
}

var (
	_ Inputs  = (*ViewModel)(nil)
	_ Outputs = (*ViewModel)(nil)
)
