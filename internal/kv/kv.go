// Package kv implements the persisted record store the capture pipeline
// writes through: a single-key get/set contract with two backends, a JSON
// file and a SQLite database.
package kv

// Store is the thin key-value contract consumed by the history store.
// Get returns ok=false when the key has never been written.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Close() error
}
