// Package store holds the dataset table currently being served. Reloads swap
// in a new immutable table and bump a version counter that the WebSocket hub
// watches to know when to re-push figures.
package store
