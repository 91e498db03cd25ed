// Package recorder persists evidence records asynchronously so that
// completed requests are never blocked on storage writes. Each record is
// also written as a standalone JSON artifact for offline audit review.
package recorder
