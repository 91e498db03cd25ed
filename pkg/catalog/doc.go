// Package catalog provides the read-only catalog of metrics and data
// products that the query pipeline operates over.
//
// The catalog is loaded once from YAML at startup and treated as immutable
// for the process lifetime. An optional file watcher swaps in a freshly
// loaded catalog atomically when the files change on disk; concurrent
// pipeline instances always observe a consistent snapshot.
package catalog
