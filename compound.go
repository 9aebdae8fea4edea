// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import "fmt"

// NewCompound builds a Compound datatype node with no members. Members are
// added with AddMember, which enforces invariant 3 of §3.3 (every member
// offset+size must fit within the container) at insertion time rather than
// only at decode/encode time.
func NewCompound(size uint32) *Datatype {
	return &Datatype{
		Class: ClassCompound,
		Size:  size,
		Body:  &CompoundBody{Packed: true},
	}
}

// AddMember appends a member to a Compound datatype, then recomputes the
// Packed flag (§4.5's decode-time rule, applied uniformly so a
// programmatically built tree and a decoded one agree on Packed).
func (d *Datatype) AddMember(name string, offset uint32, memberType *Datatype) error {
	cb, ok := d.Body.(*CompoundBody)
	if !ok {
		return fmt.Errorf("dtype: AddMember on non-compound datatype (class %s)", d.Class)
	}
	if offset+memberType.Size > d.Size {
		return ErrInvalidCompoundOffset
	}
	cb.Members = append(cb.Members, CompoundMember{Name: name, Offset: offset, Type: memberType})
	RecomputePacked(d)
	d.ForceConvert = computeForceConvert(d)
	return nil
}

// RecomputePacked recomputes a Compound datatype's derived Packed attribute
// from its current member list (§3.2, §9: "force-convert is a derived
// attribute... recompute it bottom-up after every structural change rather
// than storing it out of sync with the tree" — the same discipline applies
// to Packed).
func RecomputePacked(d *Datatype) {
	cb, ok := d.Body.(*CompoundBody)
	if !ok {
		return
	}
	packed := true
	var end uint32
	for _, m := range cb.Members {
		if m.Offset != end || !isPacked(m.Type) {
			packed = false
		}
		if m.Offset+m.Type.Size > end {
			end = m.Offset + m.Type.Size
		}
	}
	cb.Packed = packed
}
