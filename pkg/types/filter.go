package types

import "strings"

// DefaultSentinel is the selector value of the all-sites option.
const DefaultSentinel = "ALL"

// AllSitesLabel is the display name used when no site restriction applies.
const AllSitesLabel = "All Sites"

// SiteFilter restricts records to a single launch site, or applies no
// restriction at all. The zero value means all sites.
type SiteFilter struct {
	site string
	set  bool
}

// AllSites returns a filter that matches every record.
func AllSites() SiteFilter { return SiteFilter{} }

// SiteEquals returns a filter that matches records launched from name.
func SiteEquals(name string) SiteFilter { return SiteFilter{site: name, set: true} }

// IsAll reports whether the filter applies no site restriction.
func (f SiteFilter) IsAll() bool { return !f.set }

// Site returns the selected site and true, or "" and false for all sites.
func (f SiteFilter) Site() (string, bool) { return f.site, f.set }

// Match reports whether a record launched from site passes the filter.
func (f SiteFilter) Match(site string) bool {
	return !f.set || site == f.site
}

// Label is the scope shown in chart titles.
func (f SiteFilter) Label() string {
	if !f.set {
		return AllSitesLabel
	}
	return f.site
}

// Value is the selector value for f given the all-sites sentinel.
func (f SiteFilter) Value(sentinel string) string {
	if !f.set {
		return sentinel
	}
	return f.site
}

// Sentinel picks the selector value for the all-sites option. It is "ALL"
// unless a real site already carries that name, in which case "*" is appended
// until the value is unique.
func Sentinel(sites []string) string {
	taken := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		taken[s] = struct{}{}
	}
	v := DefaultSentinel
	for {
		if _, ok := taken[v]; !ok {
			return v
		}
		v += "*"
	}
}

// ParseSiteFilter maps a selector value to a SiteFilter. An empty value or
// the sentinel selects all sites; anything else selects that site, known or
// not.
func ParseSiteFilter(v, sentinel string) SiteFilter {
	if strings.TrimSpace(v) == "" || v == sentinel {
		return AllSites()
	}
	return SiteEquals(v)
}

// PayloadRange is a closed interval of payload masses in kilograms.
// A range with Lo > Hi contains nothing.
type PayloadRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Contains reports whether kg lies within [Lo, Hi].
func (r PayloadRange) Contains(kg float64) bool {
	return r.Lo <= kg && kg <= r.Hi
}
