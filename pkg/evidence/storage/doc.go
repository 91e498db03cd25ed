// Package storage provides evidence storage backends: a durable SQLite
// store for production use and an in-memory store for tests.
package storage
