package api

import "strings"

// RefTag records where a navigation to a project started, for attribution.
type RefTag string

const (
	RefTagActivity      RefTag = "activity"
	RefTagDiscovery     RefTag = "discovery"
	RefTagProfileBacked RefTag = "profile_backed"
	RefTagRecommended   RefTag = "recommended"
	RefTagSearch        RefTag = "search"
	RefTagThanks        RefTag = "thanks"
)

// String returns the wire code.
func (r RefTag) String() string { return string(r) }

// Description returns the human label, e.g. "profile backed".
func (r RefTag) Description() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

