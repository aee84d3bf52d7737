// Package transform holds the two reactive computations behind the dashboard
// charts. Both are pure functions of (record set, control values) and return a
// figure: a declarative chart description that the render package, the REST
// API and the WebSocket hub hand to their consumers.
//
//	OutcomeDistribution(rs, site)           - pie: launches per outcome class
//	PayloadScatter(rs, site, payloadRange)  - scatter: payload mass vs outcome
//
// Neither function fails: an unknown site or an inverted range simply yields
// an empty figure.
package transform
