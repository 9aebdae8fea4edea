// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import "github.com/saferwall/dtype/internal/heap"

// GetShare snapshots t's sharing record (§4.9).
func GetShare(t *Datatype) Sharing {
	return t.Sharing
}

// SetShare overwrites t's sharing record. If the new flags mark the
// datatype committed, t.State transitions to StateNamed (§4.11). Rejects a
// request that would store an already-committed datatype "in the heap"
// (§4.9, §4.11: a datatype may not be simultaneously InHeap and Committed).
//
// Placing a datatype InHeap derives its shared-message-heap lookup key by
// fingerprinting the datatype's own encoded bytes (§4.9), so two
// structurally identical datatypes land on the same heap entry.
func SetShare(t *Datatype, s Sharing) error {
	if t.Sharing.Flags == Committed && s.Flags == InHeap {
		return ErrSharingStateViolation
	}
	if s.Flags == InHeap {
		encoded, err := Encode(t, EncodeOptions{})
		if err != nil {
			return err
		}
		s.HeapKey = heap.Fingerprint(encoded)
	} else {
		s.HeapKey = 0
	}
	t.Sharing = s
	if s.Flags == Committed {
		t.State = StateNamed
	}
	return nil
}

// IsShared reports whether t's sharing flags indicate any committed or
// in-heap form.
func IsShared(t *Datatype) bool {
	return t.Sharing.Flags == InHeap || t.Sharing.Flags == Committed
}

// CopyFileUserData is the optional slot PreCopyFile attaches a relocated
// transient copy to (§4.9).
type CopyFileUserData struct {
	Datatype *Datatype
}

// PreCopyFile is called when a containing object (e.g. a dataset) is being
// copied to another file. When userData is non-nil, it attaches a fresh
// transient copy of t relocated to LocationDisk, so the caller can re-encode
// it against the destination file (§4.9).
func PreCopyFile(t *Datatype, userData *CopyFileUserData) error {
	if userData == nil {
		return nil
	}
	c := Copy(t, nil)
	c.Sharing = Sharing{}
	c.State = StateTransient
	relocate(c, LocationDisk)
	userData.Datatype = c
	return nil
}

// CopyFile allocates a fresh copy of t for the destination file handle and
// relocates it to disk (§4.9).
func CopyFile(t *Datatype, dst FileHandle) *Datatype {
	c := Copy(t, nil)
	relocate(c, LocationDisk)
	return c
}

func relocate(t *Datatype, loc Location) {
	if t == nil {
		return
	}
	t.Location = loc
	relocate(t.Parent, loc)
	if cb, ok := t.Body.(*CompoundBody); ok {
		for _, m := range cb.Members {
			relocate(m.Type, loc)
		}
	}
}
