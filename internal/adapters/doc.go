// Package adapters groups the storage media bundled with Larder. Each
// subpackage implements types.Adapter for one medium:
//
//	memory    process-local map, for tests and scratch state
//	disk      directory tree on an afero filesystem
//	sqlite    single-table SQLite database
//	bundle    read-only io/fs tree for packaged resources
//	objstore  NATS JetStream object store bucket
//
// adaptertest holds the conformance suite every adapter runs.
package adapters
