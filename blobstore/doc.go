// Package blobstore provides storage backends for batch snapshots.
//
// A BlobStore holds immutable, named blobs. Put replaces a blob atomically,
// so readers observe either the previous or the new content.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral use
//   - LocalStore: local filesystem, writes through a temporary file and rename
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: s3.Store with DynamoDB-coordinated CURRENT pointer
//   - minio.Store: MinIO and other S3-compatible storage
//
// # The CURRENT Pointer
//
// The blob named CurrentName holds the name of the most recently published
// snapshot. Stores that coordinate concurrent publishers, such as
// s3.DDBCommitStore, intercept writes to it.
package blobstore
