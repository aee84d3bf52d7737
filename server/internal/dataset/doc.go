// Package dataset loads the launch records file into an immutable Table.
//
// Load(path, cols) reads a CSV with a header row, resolves the four record
// columns by header name (extra columns are ignored) and derives the summary
// values the controls need: distinct launch sites in first-seen order and the
// payload mass bounds. Any missing column, unparsable cell, negative payload
// or empty file is an error; the caller treats it as fatal at startup.
//
// Watch(ctx, path, cols, onLoad) reloads the file on change via fsnotify and
// hands each freshly loaded Table to onLoad. A Table is never modified after
// construction.
package dataset
