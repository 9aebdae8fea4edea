// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

// Copy returns a fully independent deep copy of t: every owned Parent and
// every Compound member type is recursively duplicated, so the result
// shares no sub-structure with t (§3.3 invariant 4, §4.8).
//
// If dst is non-nil, the copy is written into *dst instead of being
// allocated fresh — any content dst previously held is discarded — and the
// fresh top-level node produced along the way is dropped, matching the
// "optionally writes into a caller-provided destination node" contract of
// §4.8.
func Copy(t *Datatype, dst *Datatype) *Datatype {
	if t == nil {
		return nil
	}
	c := &Datatype{
		Class:        t.Class,
		Size:         t.Size,
		ForceConvert: t.ForceConvert,
		Sharing:      t.Sharing,
		State:        t.State,
		Location:     t.Location,
		Body:         copyBody(t.Body),
		Parent:       Copy(t.Parent, nil),
	}
	if dst == nil {
		return c
	}
	*dst = *c
	return dst
}

func copyBody(body any) any {
	switch b := body.(type) {
	case *IntegerBody:
		v := *b
		return &v
	case *BitFieldBody:
		v := *b
		return &v
	case *FloatBody:
		v := *b
		return &v
	case *TimeBody:
		v := *b
		return &v
	case *StringBody:
		v := *b
		return &v
	case *OpaqueBody:
		v := *b
		return &v
	case *ReferenceBody:
		v := *b
		return &v
	case *VlenBody:
		v := *b
		return &v
	case *CompoundBody:
		members := make([]CompoundMember, len(b.Members))
		for i, m := range b.Members {
			members[i] = CompoundMember{Name: m.Name, Offset: m.Offset, Type: Copy(m.Type, nil)}
		}
		return &CompoundBody{Members: members, Packed: b.Packed}
	case *EnumBody:
		members := make([]EnumMember, len(b.Members))
		for i, m := range b.Members {
			rv := make([]byte, len(m.RawValue))
			copy(rv, m.RawValue)
			members[i] = EnumMember{Name: m.Name, RawValue: rv}
		}
		return &EnumBody{Members: members}
	case *ArrayBody:
		dims := make([]uint32, len(b.Dims))
		copy(dims, b.Dims)
		return &ArrayBody{Dims: dims}
	default:
		return nil
	}
}

// Reset releases t's owned resources (parent tree, member lists) but leaves
// t itself reusable with a zeroed shape (§4.8). Size and Class are left
// intact; a caller wanting a fully blank node should just allocate a new
// one.
func Reset(t *Datatype) {
	if t == nil {
		return
	}
	t.Parent = nil
	t.Body = nil
	t.ForceConvert = false
}

// Free recursively releases t and everything it owns (§3.4, §4.8). In Go
// there is no manual deallocation to perform — the garbage collector
// reclaims memory once nothing references it — so Free's job is to sever
// every reference the caller might still be holding (e.g. through an
// object-header message cache) so the tree becomes collectible and, if t is
// reused as a sentinel, observably empty.
func Free(t *Datatype) {
	if t == nil {
		return
	}
	Free(t.Parent)
	if cb, ok := t.Body.(*CompoundBody); ok {
		for i := range cb.Members {
			Free(cb.Members[i].Type)
			cb.Members[i].Type = nil
		}
		cb.Members = nil
	}
	t.Parent = nil
	t.Body = nil
}
