// Package ws implements the reactive WebSocket channel of the dashboard.
//
// Each connected client carries its own control state. On connect the hub
// sends the selector options followed by the figures for the default
// controls (all sites, full payload range). Every control message from the
// client recomputes only the figures it affects: a site change redraws both
// charts, a payload change redraws only the scatter.
//
// New(builder, interval) creates a Hub.
// Hub.Run(ctx) starts the reload ticker: when the served dataset version
// changes, every client is reset to the new defaults and receives fresh
// options and figures. Run blocks until ctx is cancelled, then closes all
// active connections.
//
// Messages are JSON envelopes in both directions:
//
//	client → {"event": "controls", "data": {"site": "ALL", "payload": [lo, hi]}}
//	server → {"event": "options" | "figures" | "error", "data": {...}}
//
// Either control field may be omitted. A malformed message yields an "error"
// event and the connection stays open.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
