package api

// UserAvatar lists avatar image URLs by size.
type UserAvatar struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large,omitempty"`
}

// UserStats are per-user counters.
type UserStats struct {
	BackedProjectsCount  int `json:"backed_projects_count"`
	CreatedProjectsCount int `json:"created_projects_count"`
	StarredProjectsCount int `json:"starred_projects_count"`
}

// Location is a named place.
type Location struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayable_name"`
	Country     string `json:"country"`
}

// User is a backer.space account.
type User struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Avatar   UserAvatar `json:"avatar"`
	Location *Location  `json:"location,omitempty"`
	Stats    UserStats  `json:"stats"`
	IsFriend bool       `json:"is_friend"`
}

// Equal reports whether u and other carry the same values.
func (u User) Equal(other User) bool {
	if u.ID != other.ID || u.Name != other.Name || u.Avatar != other.Avatar ||
		u.Stats != other.Stats || u.IsFriend != other.IsFriend {
		return false
	}
	switch {
	case u.Location == nil && other.Location == nil:
		return true
	case u.Location == nil || other.Location == nil:
		return false
	default:
		return *u.Location == *other.Location
	}
}

// ProjectState is the lifecycle state of a project.
type ProjectState string

const (
	ProjectStateSubmitted  ProjectState = "submitted"
	ProjectStateStarted    ProjectState = "started"
	ProjectStateLive       ProjectState = "live"
	ProjectStateSuccessful ProjectState = "successful"
	ProjectStateFailed     ProjectState = "failed"
	ProjectStateCanceled   ProjectState = "canceled"
	ProjectStateSuspended  ProjectState = "suspended"
	ProjectStatePurged     ProjectState = "purged"
)

// ProjectPersonalization is viewer-specific project state.
type ProjectPersonalization struct {
	IsBacking bool `json:"is_backing"`
	IsStarred bool `json:"is_starred"`
}

// Project is a fundable campaign.
type Project struct {
	ID              int64                  `json:"id"`
	Name            string                 `json:"name"`
	Slug            string                 `json:"slug"`
	Blurb           string                 `json:"blurb"`
	State           ProjectState           `json:"state"`
	Creator         User                   `json:"creator"`
	Country         string                 `json:"country"`
	Currency        string                 `json:"currency"`
	Goal            int64                  `json:"goal"`
	Pledged         int64                  `json:"pledged"`
	BackersCount    int                    `json:"backers_count"`
	LaunchedAt      int64                  `json:"launched_at"`
	Deadline        int64                  `json:"deadline"`
	Personalization ProjectPersonalization `json:"personalization"`
}

// Equal reports whether p and other are the same project. Projects are
// identified by ID; the remaining fields are a snapshot that can go stale.
func (p Project) Equal(other Project) bool {
	return p.ID == other.ID
}

// PercentFunded is pledged over goal as a whole percentage.
func (p Project) PercentFunded() int {
	if p.Goal <= 0 {
		return 0
	}
	return int(p.Pledged * 100 / p.Goal)
}

// AccessTokenEnvelope pairs an opaque bearer token with its user.
type AccessTokenEnvelope struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// DiscoveryEnvelope is one page of a project listing.
type DiscoveryEnvelope struct {
	Projects []Project      `json:"projects"`
	URLs     DiscoveryURLs  `json:"urls"`
	Stats    DiscoveryStats `json:"stats"`
}

// DiscoveryURLs carries pagination links.
type DiscoveryURLs struct {
	API DiscoveryAPIURLs `json:"api"`
}

// DiscoveryAPIURLs carries the API link to the next page.
type DiscoveryAPIURLs struct {
	MoreProjects string `json:"more_projects"`
}

// DiscoveryStats carries listing totals.
type DiscoveryStats struct {
	Count int `json:"count"`
}

// WithProjects returns a copy of e listing projects instead.
func (e DiscoveryEnvelope) WithProjects(projects []Project) DiscoveryEnvelope {
	out := e
	out.Projects = append([]Project(nil), projects...)
	out.Stats.Count = len(projects)
	return out
}
