package tracking

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/louisbranch/backer.space/internal/api"
)

// Event names tracked by screens.
const (
	// EventProfileViewMy is the legacy profile view event, kept for dashboards
	// that predate EventViewedProfile.
	EventProfileViewMy = "Profile View My"
	EventViewedProfile = "Viewed Profile"
)

// Koala turns screen-level actions into analytics events with common
// properties attached.
type Koala struct {
	client     Client
	distinctID string
	user       func() (api.User, bool)
}

// KoalaOption customises a Koala.
type KoalaOption func(*Koala)

// WithDistinctID fixes the anonymous client identifier.
func WithDistinctID(id string) KoalaOption {
	return func(k *Koala) { k.distinctID = id }
}

// WithCurrentUser supplies the signed-in user for event properties.
func WithCurrentUser(user func() (api.User, bool)) KoalaOption {
	return func(k *Koala) { k.user = user }
}

// NewKoala wraps client. A nil client discards events.
func NewKoala(client Client, opts ...KoalaOption) *Koala {
	if client == nil {
		client = Discard{}
	}
	k := &Koala{client: client, distinctID: uuid.NewString()}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// TrackProfileView records one visit to the signed-in user's profile.
func (k *Koala) TrackProfileView(ctx context.Context) {
	props := k.baseProperties()
	k.client.Track(ctx, EventProfileViewMy, props)
	k.client.Track(ctx, EventViewedProfile, props)
}

func (k *Koala) baseProperties() Properties {
	props := Properties{"distinct_id": k.distinctID}
	if k.user == nil {
		return props
	}
	if user, ok := k.user(); ok {
		props["user_uid"] = strconv.FormatInt(user.ID, 10)
		props["user_backed_projects_count"] = user.Stats.BackedProjectsCount
	}
	return props
}
