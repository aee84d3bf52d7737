// Package api implements the HTTP REST API and the dashboard page.
//
// New(builder) returns an http.Handler that serves:
//
//	GET /api/v1/health                   - dataset size, version, reload history
//	GET /api/v1/options                  - site dropdown and payload slider options
//	GET /api/v1/records                  - records matching the controls
//	GET /api/v1/figures/outcome          - outcome pie figure (JSON)
//	GET /api/v1/figures/scatter          - payload scatter figure (JSON)
//	GET /api/v1/charts/{name}.{svg,png}  - the same figures rendered as images
//
// Controls are passed as ?site=&payload_min=&payload_max=. A missing site or
// the all-sites value selects every site; missing bounds default to the data
// range. Unparsable bounds return 400.
//
// All JSON endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Read the current table from the store once per request
//
// UI(title) serves the embedded single-page dashboard. JSON types are defined
// in types.go. No external HTTP framework is used.
package api
