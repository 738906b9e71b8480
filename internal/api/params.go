package api

import (
	"net/url"
	"strconv"
)

// DiscoverySort orders a discovery listing.
type DiscoverySort string

const (
	DiscoverySortMagic      DiscoverySort = "magic"
	DiscoverySortEndingSoon DiscoverySort = "end_date"
	DiscoverySortNewest     DiscoverySort = "newest"
	DiscoverySortPopular    DiscoverySort = "popularity"
	DiscoverySortMostFunded DiscoverySort = "most_funded"
)

// DiscoveryParams filter a discovery listing. Nil and zero fields are omitted.
type DiscoveryParams struct {
	Backed  *bool
	Starred *bool
	Sort    DiscoverySort
	PerPage int
	Page    int
}

// Encode renders p as query parameters.
func (p DiscoveryParams) Encode() url.Values {
	q := url.Values{}
	if p.Backed != nil {
		q.Set("backed", boolParam(*p.Backed))
	}
	if p.Starred != nil {
		q.Set("starred", boolParam(*p.Starred))
	}
	if p.Sort != "" {
		q.Set("sort", string(p.Sort))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
