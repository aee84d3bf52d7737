// Package controls describes the dashboard's two selectors and the control
// state they produce.
//
// Options(table, cfg) derives what the UI offers: the site dropdown (the
// all-sites option first, then every site in dataset order) and the payload
// range slider (data min/max, step, labelled marks). State is the current
// selection; FromQuery and Message.State decode it from the HTTP and
// WebSocket boundaries, which is the only place the all-sites sentinel string
// is interpreted.
package controls
