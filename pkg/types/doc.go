// Package types defines the Adapter and Backend contracts, the File handle,
// the State document, configuration, and the standard error kinds for the
// Larder persistence engine.
//
// Adapters store bytes under adapter-defined paths. Backends turn a State into
// bytes and back. Neither knows about the other; the persistence system in
// internal/persistence joins them.
package types
