// Package config loads the dashboard configuration from config.yaml.
//
// Config fields:
//   - Server.HTTPPort          - port for the UI, REST API, WebSocket stream and metrics (default 8050)
//   - Server.LogLevel          - debug | info | warn | error (default info, hot-reloadable)
//   - Server.BroadcastInterval - WebSocket hub tick (default 5s)
//   - Server.Auth.Mode         - "apikey" or "none"
//   - Server.Auth.KeyEnv       - environment variable holding the expected API key
//   - Server.Auth.Header       - HTTP header name (default "x-api-key")
//   - Dataset.Path             - launch records CSV (default spacex_launch_dash.csv)
//   - Dataset.Watch            - reload the CSV when it changes (default false)
//   - Dataset.Columns          - CSV header names for the four record fields
//   - Controls.PayloadStep     - range selector step in kg (default 1000)
//   - Controls.MarkInterval    - range selector mark spacing in kg (default 2000)
//   - Charts.Width/Height      - rendered chart size in pixels
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file on change via fsnotify.
package config
