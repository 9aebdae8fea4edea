// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

// SelectVersion walks t and decides which wire version Encode must use
// (§4.4). useLatest corresponds to the file-wide "use latest format" hint;
// per §9's open question, it always upgrades to Latest even when the tree's
// own features would only require V1.
//
// The reference encoder (H5Odtype.c) computes this while streaming the
// message out in a single pass and only writes the version nibble once the
// whole subtree has been visited. Since this codec always has the whole
// tree in memory before Encode is called, it gets the same answer by
// walking the tree once up front and passing the result down through the
// recursive encoder — there's nothing to defer.
func SelectVersion(t *Datatype, useLatest bool) Version {
	if useLatest {
		return Latest
	}
	if hasVAXFloat(t) {
		return V3
	}
	if hasArrayAnywhere(t) {
		return V2
	}
	return V1
}

func hasVAXFloat(t *Datatype) bool {
	if t == nil {
		return false
	}
	if fb, ok := t.Body.(*FloatBody); ok && fb.Order == OrderVAX {
		return true
	}
	if cb, ok := t.Body.(*CompoundBody); ok {
		for _, m := range cb.Members {
			if hasVAXFloat(m.Type) {
				return true
			}
		}
	}
	return hasVAXFloat(t.Parent)
}

func hasArrayAnywhere(t *Datatype) bool {
	if t == nil {
		return false
	}
	if t.Class == ClassArray {
		return true
	}
	if cb, ok := t.Body.(*CompoundBody); ok {
		for _, m := range cb.Members {
			if hasArrayAnywhere(m.Type) {
				return true
			}
		}
	}
	return hasArrayAnywhere(t.Parent)
}
