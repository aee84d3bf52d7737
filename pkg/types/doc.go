// Package types defines the shared in-memory representation of launch records
// and the filter values the dashboard applies to them.
//
// SiteFilter is a tagged value (all sites | one site). The "ALL" string used by
// the site selector exists only at the wire boundary; see Sentinel and
// ParseSiteFilter.
package types
