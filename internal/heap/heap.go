// Package heap provides a content-fingerprint helper for the shared-object
// heap a committed/in-heap datatype (§4.9, §4.11) would be deduplicated
// against. The codec itself never touches a heap directly — §1 scopes
// storage management out — but a caller wiring Sharing.InHeap entries into
// an actual shared-message heap needs a stable key for a given encoded
// datatype, which is what Fingerprint provides.
package heap

import "github.com/cespare/xxhash/v2"

// Fingerprint returns a stable 64-bit content hash of an encoded datatype
// message, suitable as a shared-heap lookup key so structurally identical
// datatypes collapse to one heap entry.
func Fingerprint(encoded []byte) uint64 {
	return xxhash.Sum64(encoded)
}

// Digest accumulates a fingerprint across multiple encoded fragments, for
// callers that build up a heap key incrementally (e.g. hashing a compound's
// member messages before the container header is known).
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty incremental digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// Write feeds p into the digest. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	return d.d.Write(p)
}

// Sum64 returns the fingerprint of everything written so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
