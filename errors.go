// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import "errors"

// Decode errors.
var (
	// ErrBadVersion is returned when the prelude's version nibble is outside {1,2,3}.
	ErrBadVersion = errors.New("dtype: version outside {1,2,3}")

	// ErrUnknownClass is returned when the prelude's class nibble does not
	// name one of the eleven known classes.
	ErrUnknownClass = errors.New("dtype: unknown datatype class")

	// ErrTruncatedBuffer is returned when the cursor runs out of bytes
	// mid-message.
	ErrTruncatedBuffer = errors.New("dtype: truncated buffer")

	// ErrOutOfMemory is returned when a decode would need to allocate more
	// than the configured member-count guard allows, or when an array's
	// dimensionality exceeds MaxRank.
	ErrOutOfMemory = errors.New("dtype: allocation limit exceeded")

	// ErrInvalidFloatField is returned when a decoded float has a zero
	// exponent or mantissa size.
	ErrInvalidFloatField = errors.New("dtype: invalid float exponent/mantissa field")

	// ErrInvalidBitLayout is returned when an integer/bitfield's bit_offset
	// and precision don't fit within 8*size bits.
	ErrInvalidBitLayout = errors.New("dtype: bit_offset+precision exceeds 8*size")

	// ErrInvalidEnumParent is returned when an enum's parent datatype is not
	// an integer.
	ErrInvalidEnumParent = errors.New("dtype: enum parent is not an integer datatype")

	// ErrInvalidOffset is returned when a V3 compound member's offset
	// overlaps the previous member (starts before that member's end). A
	// member overflowing the container size yields ErrInvalidCompoundOffset.
	ErrInvalidOffset = errors.New("dtype: invalid compound member offset")

	// ErrInvalidCompoundOffset is returned when a decoded compound member's
	// offset+size exceeds the container size.
	ErrInvalidCompoundOffset = errors.New("dtype: compound member exceeds container size")

	// ErrOpaqueTagTooLong is returned encoding an opaque tag whose 8-byte
	// aligned length exceeds OpaqueTagMax or does not fit the 8-bit flags
	// field (so tags longer than 248 bytes).
	ErrOpaqueTagTooLong = errors.New("dtype: opaque tag exceeds maximum length")

	// ErrTooManyMembers names a compound or enum member count above the
	// configured guard. The decoder reports that case as ErrOutOfMemory and
	// does not return this error.
	ErrTooManyMembers = errors.New("dtype: member count exceeds configured limit")

	// ErrInvalidCharset is returned when a String/Vlen(string) node declares
	// a charset other than ASCII or UTF-8, an opaque tag is not ASCII, or a
	// compound/enum member name is not well-formed UTF-8.
	ErrInvalidCharset = errors.New("dtype: payload is not valid for the declared charset")
)

// Encoder errors, for in-memory trees that cannot be represented in any
// defined wire version.
var (
	ErrUnsupportedByteOrder    = errors.New("dtype: unsupported byte order")
	ErrUnsupportedNormalization = errors.New("dtype: unsupported float normalization")
	ErrUnsupportedPadding      = errors.New("dtype: unsupported padding value")
	ErrUnsupportedSign         = errors.New("dtype: unsupported sign value")
)

// ErrSharingStateViolation is returned by SetShare when asked to place a
// committed datatype into the shared-object heap.
var ErrSharingStateViolation = errors.New("dtype: cannot share a committed datatype in the heap")
