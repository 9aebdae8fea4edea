// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"bytes"
	"os"

	"github.com/saferwall/dtype/internal/log"
)

// Default member-count guards, in the same spirit as the teacher's
// maxAllowedEntries (resource.go) and MaxRelocEntriesCount (file.go): a
// corrupt or hostile buffer must not be able to drive the decoder into an
// unbounded allocation.
const (
	DefaultMaxCompoundMembers = 4096
	DefaultMaxEnumMembers     = 65536
)

// FileHandle is the §6.2 decoder collaborator: decoding only ever needs to
// know whether the containing file was opened with the "use latest format"
// setting, and whether the bytes being decoded live on disk (as opposed to
// an in-memory scratch buffer with no backing file at all). A real
// implementation is internal/fileio.Handle, backed by an mmap'd region.
type FileHandle interface {
	UseLatestFormat() bool
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// File is the optional file-handle collaborator (§6.2). When non-nil,
	// every decoded node's Location is set to LocationDisk (this is what
	// drives vlen/reference force-convert semantics); when nil, decoding a
	// standalone buffer yields LocationMemory.
	File FileHandle

	// MaxCompoundMembers and MaxEnumMembers bound member-list allocation;
	// zero means DefaultMaxCompoundMembers / DefaultMaxEnumMembers.
	MaxCompoundMembers int
	MaxEnumMembers     int

	// Logger receives non-fatal warnings (e.g. a non-identity permutation
	// vector, §9), in the same shape as the teacher's Options.Logger
	// (file.go): a nil Logger gets wrapped the same way the teacher wraps
	// one, defaulting to a stdout logger filtered down to errors-only, so a
	// caller has to opt in to see warnings just like with pe.File.
	Logger log.Logger
}

func (o DecodeOptions) helper() *log.Helper {
	if o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout),
			log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

func (o DecodeOptions) maxCompoundMembers() int {
	if o.MaxCompoundMembers > 0 {
		return o.MaxCompoundMembers
	}
	return DefaultMaxCompoundMembers
}

func (o DecodeOptions) maxEnumMembers() int {
	if o.MaxEnumMembers > 0 {
		return o.MaxEnumMembers
	}
	return DefaultMaxEnumMembers
}

func (o DecodeOptions) warnf(format string, args ...any) {
	o.helper().Warnf(format, args...)
}

// Decode consumes exactly one datatype message from buf and returns it along
// with the number of bytes consumed (§4.5). On any failure, no partial tree
// is returned — every subtree the decoder built while failing is simply
// unreachable once Decode returns, which is this codec's equivalent of the
// reference implementation's goto-based cleanup-on-every-failure-path
// discipline (§5, §9): Go's GC reclaims it, so there is nothing further to
// release.
func Decode(buf []byte, opts DecodeOptions) (*Datatype, int, error) {
	r := newReader(buf)
	loc := LocationMemory
	if opts.File != nil {
		loc = LocationDisk
	}
	t, err := decodeNode(r, opts, loc)
	if err != nil {
		return nil, 0, err
	}
	return t, r.pos, nil
}

func decodeNode(r *reader, opts DecodeOptions, loc Location) (*Datatype, error) {
	b0, err := r.u8()
	if err != nil {
		return nil, err
	}
	version := Version(b0 >> 4)
	class := Class(b0 & 0xF)
	if !version.valid() {
		return nil, ErrBadVersion
	}
	if class > ClassArray {
		return nil, ErrUnknownClass
	}

	flagBytes, err := r.bytes(3)
	if err != nil {
		return nil, err
	}
	flags := uint32(flagBytes[0]) | uint32(flagBytes[1])<<8 | uint32(flagBytes[2])<<16

	size, err := r.u32()
	if err != nil {
		return nil, err
	}

	t := &Datatype{Class: class, Size: size, Location: loc}

	if err := decodeBody(r, t, version, flags, opts); err != nil {
		return nil, err
	}

	t.ForceConvert = computeForceConvert(t)
	return t, nil
}

func decodeBody(r *reader, t *Datatype, version Version, flags uint32, opts DecodeOptions) error {
	switch t.Class {
	case ClassInteger:
		b := decodeIntegerFlags(flags)
		off, err := r.u16()
		if err != nil {
			return err
		}
		prec, err := r.u16()
		if err != nil {
			return err
		}
		b.BitOffset, b.Precision = off, prec
		if uint32(off)+uint32(prec) > 8*t.Size {
			return ErrInvalidBitLayout
		}
		t.Body = b
		return nil

	case ClassBitField:
		b := decodeBitFieldFlags(flags)
		off, err := r.u16()
		if err != nil {
			return err
		}
		prec, err := r.u16()
		if err != nil {
			return err
		}
		b.BitOffset, b.Precision = off, prec
		if uint32(off)+uint32(prec) > 8*t.Size {
			return ErrInvalidBitLayout
		}
		t.Body = b
		return nil

	case ClassTime:
		b := decodeTimeFlags(flags)
		prec, err := r.u16()
		if err != nil {
			return err
		}
		b.Precision = prec
		t.Body = b
		return nil

	case ClassFloat:
		b, err := decodeFloatFlags(flags)
		if err != nil {
			return err
		}
		if b.BitOffset, err = r.u16(); err != nil {
			return err
		}
		if b.Precision, err = r.u16(); err != nil {
			return err
		}
		if b.ExpPos, err = r.u8(); err != nil {
			return err
		}
		if b.ExpSize, err = r.u8(); err != nil {
			return err
		}
		if b.MantissaPos, err = r.u8(); err != nil {
			return err
		}
		if b.MantissaSize, err = r.u8(); err != nil {
			return err
		}
		if b.ExponentBias, err = r.u32(); err != nil {
			return err
		}
		if b.ExpSize == 0 || b.MantissaSize == 0 {
			return ErrInvalidFloatField
		}
		t.Body = b
		return nil

	case ClassString:
		b := decodeStringFlags(flags)
		if !validCharSet(b.CharSet) {
			return ErrInvalidCharset
		}
		t.Body = b
		return nil

	case ClassReference:
		t.Body = decodeReferenceFlags(flags)
		return nil

	case ClassOpaque:
		n := decodeOpaqueFlags(flags)
		raw, err := r.bytes(n)
		if err != nil {
			return err
		}
		tag := bytes.TrimRight(raw, "\x00")
		if err := ValidateCharset(tag, CharSetASCII); err != nil {
			return err
		}
		t.Body = &OpaqueBody{Tag: string(tag)}
		return nil

	case ClassCompound:
		return decodeCompoundBody(r, t, version, flags, opts)

	case ClassEnum:
		return decodeEnumBody(r, t, version, flags, opts)

	case ClassVlen:
		b := decodeVlenFlags(flags)
		if b.Subtype == VlenString && !validCharSet(b.CharSet) {
			return ErrInvalidCharset
		}
		parent, err := decodeNode(r, opts, t.Location)
		if err != nil {
			return err
		}
		t.Body = b
		t.Parent = parent
		return nil

	case ClassArray:
		return decodeArrayBody(r, t, version, opts)

	default:
		return ErrUnknownClass
	}
}

// paddedName reads a member/enum-member name honoring the version's
// alignment rule (§4.3): V1/V2 pads to a multiple of 8 bytes, V3 does not.
// Member names are declared UTF-8 (§3.2), so the name is validated the same
// way a String/Vlen(string) payload would be.
func paddedName(r *reader, version Version) (string, error) {
	start := r.pos
	s, err := r.cstring()
	if err != nil {
		return "", err
	}
	if err := ValidateCharset([]byte(s), CharSetUTF8); err != nil {
		return "", err
	}
	if version >= V3 {
		return s, nil
	}
	padded := alignUp8(len(s) + 1)
	consumed := r.pos - start
	if consumed < padded {
		if err := r.skip(padded - consumed); err != nil {
			return "", err
		}
	}
	return s, nil
}

func decodeCompoundBody(r *reader, t *Datatype, version Version, flags uint32, opts DecodeOptions) error {
	n := decodeMemberCountFlags(flags)
	if n > opts.maxCompoundMembers() {
		return ErrOutOfMemory
	}

	nbytes := offsetNBytes(t.Size)
	members := make([]CompoundMember, 0, n)
	packed := true
	var end uint32

	for i := 0; i < n; i++ {
		name, err := paddedName(r, version)
		if err != nil {
			return err
		}

		var offset uint32
		if version <= V2 {
			o, err := r.u32()
			if err != nil {
				return err
			}
			offset = o
		} else {
			o, err := r.uintN(nbytes)
			if err != nil {
				return err
			}
			offset = uint32(o)
		}

		if version >= V3 && offset < end {
			return ErrInvalidOffset
		}

		var memberType *Datatype
		if version == V1 {
			dimCount, err := r.u8()
			if err != nil {
				return err
			}
			if err := r.skip(3); err != nil {
				return err
			}
			perm, err := r.u32()
			if err != nil {
				return err
			}
			if err := r.skip(4); err != nil {
				return err
			}
			dims := make([]uint32, 4)
			for j := 0; j < 4; j++ {
				d, err := r.u32()
				if err != nil {
					return err
				}
				dims[j] = d
			}
			if perm != 0 && !isIdentityPermutation(perm, int(dimCount)) {
				opts.warnf("dtype: compound member %q has a non-identity V1 array permutation; assuming identity", name)
			}

			base, err := decodeNode(r, opts, t.Location)
			if err != nil {
				return err
			}
			if dimCount > 0 {
				memberType = synthesizeArray(base, dims[:dimCount])
			} else {
				memberType = base
			}
		} else {
			mt, err := decodeNode(r, opts, t.Location)
			if err != nil {
				return err
			}
			memberType = mt
		}

		if offset+memberType.Size > t.Size {
			return ErrInvalidCompoundOffset
		}

		if offset != end || !isPacked(memberType) {
			packed = false
		}
		if offset+memberType.Size > end {
			end = offset + memberType.Size
		}

		members = append(members, CompoundMember{Name: name, Offset: offset, Type: memberType})
	}

	t.Body = &CompoundBody{Members: members, Packed: packed}
	return nil
}

// isIdentityPermutation reports whether the single encoded permutation word
// equals the identity (§9: only identity is ever written by this codec; a
// non-identity input is tolerated, not rejected).
func isIdentityPermutation(word uint32, dimCount int) bool {
	return word == 0
}

func synthesizeArray(base *Datatype, dims []uint32) *Datatype {
	d := make([]uint32, len(dims))
	copy(d, dims)
	nelem := uint64(1)
	for _, v := range d {
		nelem *= uint64(v)
	}
	return &Datatype{
		Class:    ClassArray,
		Size:     base.Size * uint32(nelem),
		Body:     &ArrayBody{Dims: d},
		Parent:   base,
		Location: base.Location,
	}
}

func isPacked(t *Datatype) bool {
	if cb, ok := t.Body.(*CompoundBody); ok {
		return cb.Packed
	}
	return true
}

func decodeEnumBody(r *reader, t *Datatype, version Version, flags uint32, opts DecodeOptions) error {
	parent, err := decodeNode(r, opts, t.Location)
	if err != nil {
		return err
	}
	if parent.Class != ClassInteger {
		return ErrInvalidEnumParent
	}

	n := decodeMemberCountFlags(flags)
	if n > opts.maxEnumMembers() {
		return ErrOutOfMemory
	}

	names := make([]string, n)
	for i := 0; i < n; i++ {
		name, err := paddedName(r, version)
		if err != nil {
			return err
		}
		names[i] = name
	}

	members := make([]EnumMember, n)
	for i := 0; i < n; i++ {
		raw, err := r.bytes(int(parent.Size))
		if err != nil {
			return err
		}
		rv := make([]byte, len(raw))
		copy(rv, raw)
		members[i] = EnumMember{Name: names[i], RawValue: rv}
	}

	t.Body = &EnumBody{Members: members}
	t.Parent = parent
	return nil
}

func decodeArrayBody(r *reader, t *Datatype, version Version, opts DecodeOptions) error {
	ndims, err := r.u8()
	if err != nil {
		return err
	}
	if int(ndims) > MaxRank {
		return ErrOutOfMemory
	}
	if version <= V2 {
		if err := r.skip(3); err != nil {
			return err
		}
	}
	dims := make([]uint32, ndims)
	for i := range dims {
		d, err := r.u32()
		if err != nil {
			return err
		}
		dims[i] = d
	}
	if version <= V2 {
		// Identity permutation vector, ignored on read (§4.3, §9).
		if err := r.skip(int(ndims) * 4); err != nil {
			return err
		}
	}
	parent, err := decodeNode(r, opts, t.Location)
	if err != nil {
		return err
	}
	t.Body = &ArrayBody{Dims: dims}
	t.Parent = parent
	return nil
}

// computeForceConvert recomputes the derived force_convert flag bottom-up
// (§3.3 invariant 5, §4.5): the logical OR of every descendant's flag, plus
// the local rules (a vlen always forces conversion; an object reference
// read from disk forces conversion).
func computeForceConvert(t *Datatype) bool {
	switch t.Class {
	case ClassVlen:
		return true
	case ClassReference:
		rb := t.Body.(*ReferenceBody)
		if (rb.Subtype == RefObject || rb.Subtype == RefObject2) && t.Location == LocationDisk {
			return true
		}
	case ClassCompound:
		cb := t.Body.(*CompoundBody)
		for _, m := range cb.Members {
			if m.Type.ForceConvert {
				return true
			}
		}
	}
	if t.Parent != nil && t.Parent.ForceConvert {
		return true
	}
	return false
}
