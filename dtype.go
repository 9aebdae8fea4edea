// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package dtype implements the datatype descriptor codec at the heart of a
// hierarchical scientific data file format: the in-memory representation of
// a datatype, its recursive binary encoding/decoding across three wire
// versions, a size predictor that mirrors the encoder, and the ancillary
// copy/free/share/debug-dump operations needed to embed a datatype inside an
// object-header message.
package dtype

// Class is the top-level kind of a datatype. The numeric values match the
// class nibble written to the wire prelude (§4.1).
type Class uint8

// The eleven datatype classes.
const (
	ClassInteger Class = iota
	ClassFloat
	ClassTime
	ClassString
	ClassBitField
	ClassOpaque
	ClassCompound
	ClassReference
	ClassEnum
	ClassVlen
	ClassArray
)

func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "integer"
	case ClassFloat:
		return "float"
	case ClassTime:
		return "time"
	case ClassString:
		return "string"
	case ClassBitField:
		return "bitfield"
	case ClassOpaque:
		return "opaque"
	case ClassCompound:
		return "compound"
	case ClassReference:
		return "reference"
	case ClassEnum:
		return "enum"
	case ClassVlen:
		return "vlen"
	case ClassArray:
		return "array"
	default:
		return "unknown"
	}
}

// Version is the wire-format revision. Chosen by feature inference (§4.4)
// unless the caller passes UseLatestFormat.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
	V3 Version = 3

	// Latest is the newest version this codec knows how to write.
	Latest = V3
)

func (v Version) valid() bool { return v == V1 || v == V2 || v == V3 }

// ByteOrder is the atomic byte-order attribute shared by Integer, BitField,
// Float and Time class bodies.
type ByteOrder uint8

const (
	OrderNone ByteOrder = iota
	OrderLE
	OrderBE
	OrderVAX
)

// PadBit is the value used to fill unused low/high/internal bits of an
// atomic value.
type PadBit uint8

const (
	PadZero PadBit = iota
	PadOne
)

// Sign distinguishes unsigned from two's-complement integers.
type Sign uint8

const (
	SignNone Sign = iota
	SignTwosComp
)

// Norm is the floating-point mantissa normalization scheme.
type Norm uint8

const (
	NormNone Norm = iota
	NormMsbSet
	NormImplied
)

// StringPadding is the padding/termination scheme for fixed-size strings,
// and for vlen-string elements. Raw wire values beyond the three named ones
// round-trip unchanged; the codec does not reject them.
type StringPadding uint8

const (
	PadNullTerm StringPadding = iota
	PadNullPad
	PadSpacePad
)

// CharSet identifies the character encoding of a String/Vlen(string)/
// Reference-adjacent atomic type.
type CharSet uint8

const (
	CharSetASCII CharSet = iota
	CharSetUTF8
)

// RefSubtype identifies what kind of reference a Reference datatype stores.
type RefSubtype uint8

const (
	RefObject    RefSubtype = iota // object reference, forces conversion on disk
	RefRegionV1                    // legacy dataset-region reference
	RefObject2                     // HDF5 1.12+ object reference
	RefRegion2                     // HDF5 1.12+ region reference
	RefAttr                        // attribute reference
)

// VlenSubtype distinguishes a variable-length sequence from a
// variable-length (string) type.
type VlenSubtype uint8

const (
	VlenSequence VlenSubtype = iota
	VlenString
)

// State is a datatype's commit lifecycle state (§4.11).
type State uint8

const (
	StateTransient State = iota
	StateNamed
	StateOpen
)

// Location governs how vlen/reference payloads are interpreted.
type Location uint8

const (
	LocationMemory Location = iota
	LocationDisk
	LocationVOL
)

// ShareFlag is the orthogonal sharing-state flag (§3.1, §4.9, §4.11).
type ShareFlag uint8

const (
	NotShared ShareFlag = iota
	InHeap
	Committed
)

// Sharing is the `{flags, location}` record tracked alongside every
// Datatype node, orthogonal to the tree structure (invariant 2 in §3.3).
type Sharing struct {
	Flags    ShareFlag
	Location Location

	// HeapKey is the shared-message-heap lookup key (§4.9) SetShare derives
	// from the datatype's encoded content whenever Flags is InHeap, so
	// structurally identical datatypes dedupe to the same heap entry. Zero
	// when Flags is not InHeap.
	HeapKey uint64
}

// Datatype is a tagged tree node describing how to interpret a block of raw
// bytes. See spec §3.1-3.4 for the full data model and invariants.
type Datatype struct {
	Class Class
	Size  uint32

	// Body holds exactly one of *IntegerBody, *BitFieldBody, *FloatBody,
	// *TimeBody, *StringBody, *OpaqueBody, *ReferenceBody, *CompoundBody,
	// *EnumBody, *VlenBody, *ArrayBody depending on Class.
	Body any

	// Parent is the exclusively-owned base datatype for Enum, Vlen and
	// Array; nil for every other class.
	Parent *Datatype

	// ForceConvert is the logical OR of this flag across every descendant
	// plus any local rule (vlen, object reference) — see invariant 5.
	ForceConvert bool

	Sharing Sharing
	State   State

	// Location governs how this node's vlen/reference payload is
	// interpreted; meaningful mainly at the root.
	Location Location
}
