// Package auth provides authentication middleware for the dashboard server.
//
// APIKey(mode, header, key) returns HTTP middleware that validates the API key
// from the named request header, or from the api_key query parameter for
// browser WebSocket connections that cannot set headers.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). When the key is incorrect or absent,
// the middleware responds 401 immediately.
package auth
