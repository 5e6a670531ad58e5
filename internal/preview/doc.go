// Package preview serves the built site for local development and rebuilds
// it when sources change.
//
// The server serves dest_dir with gzip compression, injects a live reload
// script into HTML pages, and exposes build metrics on /metrics. A
// filesystem watcher feeds a debounced rebuild worker; an optional poll
// interval schedules extra rebuilds with gocron.
package preview
