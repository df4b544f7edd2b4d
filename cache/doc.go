// Package cache provides a content-addressed disk cache for processed
// document chunks.
//
// Entries are keyed by a hash of the content that produced them, so a
// key can never refer to stale data: changed content produces a new
// key. Validity is time-based and checked lazily on read; expired
// entries read as a miss but are left in place. Corrupt or unreadable
// entries also read as a miss, never as an error, so callers can
// always fall back to recomputing the artifact.
//
// The store persists through BadgerDB and survives process restarts.
// OpenMemory provides an in-memory stand-in for tests.
package cache
