// Package metastore persists named metadata blobs (connection references,
// annotation groups) keyed by kind and name.
package metastore

import (
	"crypto/sha256"
	"encoding/hex"
)

// Kind partitions the store's name space.
type Kind string

// Kinds used by the modeler.
const (
	KindConnection      Kind = "connection"
	KindAnnotationGroup Kind = "annotation-group"
)

// Store is the key/value contract of the metadata store. Names are unique
// per kind. Implementations must make Create atomic with respect to name
// visibility: once Create returns nil every later Get sees the blob.
type Store interface {
	// Get returns the blob stored under (kind, name) or an apperr.ErrNotFound error.
	Get(kind Kind, name string) ([]byte, error)
	// Put stores blob under (kind, name), replacing any previous value.
	Put(kind Kind, name string, blob []byte) error
	// Create stores blob only if (kind, name) is free, else apperr.ErrNameConflict.
	Create(kind Kind, name string, blob []byte) error
	// List returns every name of kind in ascending order.
	List(kind Kind) ([]string, error)
	// Delete removes (kind, name); deleting an absent entry is not an error.
	Delete(kind Kind, name string) error
	// Checksums returns name -> SHA-256 of the stored blob for kind.
	Checksums(kind Kind) (map[string]string, error)
}

// Checksum returns the hex-encoded SHA-256 digest of blob.
func Checksum(blob []byte) string {
	h := sha256.Sum256(blob)
	return hex.EncodeToString(h[:])
}
