// Package tabular moves row-oriented datasets between domains and storage.
//
// A Frame is the in-memory unit of exchange. A Registry maps each dataset
// format to the Handler that reads and writes it; every orchestrator owns
// its own Registry instance, so embedding applications can add or replace
// formats without affecting each other. File formats (csv, json) are stream
// codecs layered over a BlobStore, which routes local paths to the
// filesystem and s3:// paths to object storage. Store-backed formats (sql,
// redis) live in their own subpackages and are registered explicitly.
package tabular
