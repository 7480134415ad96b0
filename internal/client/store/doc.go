// Package store persists the client session across process restarts.
//
// The record lives in the local SQLite state database as two metadata
// entries, "token" and "user". Writes go through one transaction so the two
// entries are always both present or both absent. A record that is partial
// or fails to decode is reported as ErrStorageCorrupted; callers are
// expected to Purge it.
//
// When a Sealer is configured both entries are encrypted at rest; the salt
// for the passphrase-derived key is kept under "seal_salt" and survives
// Purge.
package store
