// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

// OpaqueTagMax bounds the ASCII tag of an Opaque datatype (mirrors the
// original implementation's H5T_OPAQUE_TAG_MAX).
const OpaqueTagMax = 256

// MaxRank bounds the dimensionality of an Array datatype.
const MaxRank = 32

// IntegerBody is the Integer class body (§3.2).
type IntegerBody struct {
	Order             ByteOrder
	LSBPad, MSBPad    PadBit
	Sign              Sign
	BitOffset         uint16
	Precision         uint16
}

// BitFieldBody is the BitField class body — same as IntegerBody minus Sign.
type BitFieldBody struct {
	Order          ByteOrder
	LSBPad, MSBPad PadBit
	BitOffset      uint16
	Precision      uint16
}

// FloatBody is the Float class body (§3.2).
type FloatBody struct {
	Order                     ByteOrder
	LSBPad, MSBPad, InternalPad PadBit
	Norm                      Norm
	SignBitPos                uint8
	BitOffset                 uint16
	Precision                 uint16
	ExpPos, ExpSize           uint8
	MantissaPos, MantissaSize uint8
	ExponentBias              uint32
}

// TimeBody is the Time class body.
type TimeBody struct {
	Order     ByteOrder
	Precision uint16
}

// StringBody is the String class body. Atomic attributes are implicit: byte
// order None, precision 8*size, offset 0, pads Zero.
type StringBody struct {
	Padding StringPadding
	CharSet CharSet
}

// OpaqueBody is the Opaque class body: an ASCII tag.
type OpaqueBody struct {
	Tag string
}

// ReferenceBody is the Reference class body.
type ReferenceBody struct {
	Subtype RefSubtype
}

// CompoundMember is one named, offset-located field of a Compound datatype.
type CompoundMember struct {
	Name   string
	Offset uint32
	Type   *Datatype
}

// CompoundBody is the Compound class body: an ordered list of members plus
// the derived Packed flag (§3.2, §4.5).
type CompoundBody struct {
	Members []CompoundMember

	// Packed is true iff members tile the record contiguously from offset 0
	// with no gaps and every member type is itself packed. Recomputed by
	// RecomputePacked, not hand-maintained.
	Packed bool
}

// EnumMember is one named raw value of an Enum datatype.
type EnumMember struct {
	Name     string
	RawValue []byte // length == parent.Size
}

// EnumBody is the Enum class body. The wrapped integer parent lives on the
// owning Datatype's Parent field.
type EnumBody struct {
	Members []EnumMember
}

// VlenBody is the Vlen class body. Always force-converts (§3.3 invariant 5).
type VlenBody struct {
	Subtype VlenSubtype
	Padding StringPadding // meaningful only when Subtype == VlenString
	CharSet CharSet       // meaningful only when Subtype == VlenString
}

// ArrayBody is the Array class body: a fixed shape wrapping Datatype.Parent.
type ArrayBody struct {
	Dims []uint32
}

// NElem returns the product of the array's dimensions.
func (a *ArrayBody) NElem() uint64 {
	n := uint64(1)
	for _, d := range a.Dims {
		n *= uint64(d)
	}
	return n
}
