// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

// This file is the atomic-field packer (§2's "Atomic-field packer"
// component): it serializes/deserializes the 24-bit class_flags word shared
// by every datatype's 8-byte prelude (§4.1), and the common atomic
// attributes (byte order, pad bits, sign, precision/offset) each
// flag-bearing class reuses. Per-class body layout lives in classes.go;
// recursive composition lives in encode.go/decode.go.

// orderBit packs a plain LE/BE byte order into bit 0. Time, Integer and
// BitField never see VAX order; Float additionally consults bit 6.
func orderBit(order ByteOrder) (uint32, error) {
	switch order {
	case OrderLE:
		return 0, nil
	case OrderBE:
		return 1, nil
	default:
		return 0, ErrUnsupportedByteOrder
	}
}

func unpackOrderBit(bit0 bool) ByteOrder {
	if bit0 {
		return OrderBE
	}
	return OrderLE
}

func padBitValue(p PadBit) (uint32, error) {
	switch p {
	case PadZero:
		return 0, nil
	case PadOne:
		return 1, nil
	default:
		return 0, ErrUnsupportedPadding
	}
}

func unpackPadBit(set bool) PadBit {
	if set {
		return PadOne
	}
	return PadZero
}

func signBitValue(s Sign) (uint32, error) {
	switch s {
	case SignNone:
		return 0, nil
	case SignTwosComp:
		return 1, nil
	default:
		return 0, ErrUnsupportedSign
	}
}

func unpackSignBit(set bool) Sign {
	if set {
		return SignTwosComp
	}
	return SignNone
}

func bit(flags uint32, pos uint) bool { return flags&(1<<pos) != 0 }

// --- Integer (§4.2) ---

func encodeIntegerFlags(b *IntegerBody) (uint32, error) {
	var f uint32
	order, err := orderBit(b.Order)
	if err != nil {
		return 0, err
	}
	f |= order << 0
	lsb, err := padBitValue(b.LSBPad)
	if err != nil {
		return 0, err
	}
	f |= lsb << 1
	msb, err := padBitValue(b.MSBPad)
	if err != nil {
		return 0, err
	}
	f |= msb << 2
	sign, err := signBitValue(b.Sign)
	if err != nil {
		return 0, err
	}
	f |= sign << 3
	return f, nil
}

func decodeIntegerFlags(flags uint32) *IntegerBody {
	return &IntegerBody{
		Order:  unpackOrderBit(bit(flags, 0)),
		LSBPad: unpackPadBit(bit(flags, 1)),
		MSBPad: unpackPadBit(bit(flags, 2)),
		Sign:   unpackSignBit(bit(flags, 3)),
	}
}

// --- BitField (§4.2, same bits as Integer minus sign) ---

func encodeBitFieldFlags(b *BitFieldBody) (uint32, error) {
	var f uint32
	order, err := orderBit(b.Order)
	if err != nil {
		return 0, err
	}
	f |= order << 0
	lsb, err := padBitValue(b.LSBPad)
	if err != nil {
		return 0, err
	}
	f |= lsb << 1
	msb, err := padBitValue(b.MSBPad)
	if err != nil {
		return 0, err
	}
	f |= msb << 2
	return f, nil
}

func decodeBitFieldFlags(flags uint32) *BitFieldBody {
	return &BitFieldBody{
		Order:  unpackOrderBit(bit(flags, 0)),
		LSBPad: unpackPadBit(bit(flags, 1)),
		MSBPad: unpackPadBit(bit(flags, 2)),
	}
}

// --- Time (§4.2: bit0 order only) ---

func encodeTimeFlags(b *TimeBody) (uint32, error) {
	order, err := orderBit(b.Order)
	if err != nil {
		return 0, err
	}
	return order << 0, nil
}

func decodeTimeFlags(flags uint32) *TimeBody {
	return &TimeBody{Order: unpackOrderBit(bit(flags, 0))}
}

// --- Float (§4.2) ---

func normValue(n Norm) (uint32, error) {
	switch n {
	case NormNone:
		return 0, nil
	case NormMsbSet:
		return 1, nil
	case NormImplied:
		return 2, nil
	default:
		return 0, ErrUnsupportedNormalization
	}
}

func unpackNorm(v uint32) (Norm, error) {
	switch v {
	case 0:
		return NormNone, nil
	case 1:
		return NormMsbSet, nil
	case 2:
		return NormImplied, nil
	default:
		return 0, ErrUnsupportedNormalization
	}
}

// encodeFloatFlags packs bits0-3 (order/pads), bits4-5 (norm), bit6 (VAX,
// version>=V3 only), bits8-15 (sign-bit position). VAX order is bit0=1 (BE)
// AND bit6=1 simultaneously (§4.6): the decoder must reject bit6 without
// bit0.
func encodeFloatFlags(b *FloatBody, version Version) (uint32, error) {
	var f uint32
	switch b.Order {
	case OrderBE:
		f |= 1 << 0
	case OrderLE:
		// bit0 = 0
	case OrderVAX:
		if version < V3 {
			return 0, ErrUnsupportedByteOrder
		}
		f |= 1 << 0
		f |= 1 << 6
	default:
		return 0, ErrUnsupportedByteOrder
	}
	lsb, err := padBitValue(b.LSBPad)
	if err != nil {
		return 0, err
	}
	f |= lsb << 1
	msb, err := padBitValue(b.MSBPad)
	if err != nil {
		return 0, err
	}
	f |= msb << 2
	ipad, err := padBitValue(b.InternalPad)
	if err != nil {
		return 0, err
	}
	f |= ipad << 3
	norm, err := normValue(b.Norm)
	if err != nil {
		return 0, err
	}
	f |= norm << 4
	f |= uint32(b.SignBitPos) << 8
	return f, nil
}

func decodeFloatFlags(flags uint32) (*FloatBody, error) {
	vax := bit(flags, 6)
	be := bit(flags, 0)
	if vax && !be {
		return nil, ErrUnsupportedByteOrder
	}
	order := unpackOrderBit(be)
	if vax {
		order = OrderVAX
	}
	norm, err := unpackNorm((flags >> 4) & 0x3)
	if err != nil {
		return nil, err
	}
	return &FloatBody{
		Order:       order,
		LSBPad:      unpackPadBit(bit(flags, 1)),
		MSBPad:      unpackPadBit(bit(flags, 2)),
		InternalPad: unpackPadBit(bit(flags, 3)),
		Norm:        norm,
		SignBitPos:  uint8((flags >> 8) & 0xFF),
	}, nil
}

// --- String (§4.2: bits0-3 padding, bits4-7 charset) ---

func encodeStringFlags(b *StringBody) uint32 {
	return uint32(b.Padding&0xF) | uint32(b.CharSet&0xF)<<4
}

func decodeStringFlags(flags uint32) *StringBody {
	return &StringBody{
		Padding: StringPadding(flags & 0xF),
		CharSet: CharSet((flags >> 4) & 0xF),
	}
}

// --- Reference (§4.2: bits0-3 subtype) ---

func encodeReferenceFlags(b *ReferenceBody) uint32 {
	return uint32(b.Subtype & 0xF)
}

func decodeReferenceFlags(flags uint32) *ReferenceBody {
	return &ReferenceBody{Subtype: RefSubtype(flags & 0xF)}
}

// --- Vlen (§4.2: bits0-3 subtype; if String, bits4-7 pad, bits8-11 charset) ---

func encodeVlenFlags(b *VlenBody) uint32 {
	f := uint32(b.Subtype & 0xF)
	if b.Subtype == VlenString {
		f |= uint32(b.Padding&0xF) << 4
		f |= uint32(b.CharSet&0xF) << 8
	}
	return f
}

func decodeVlenFlags(flags uint32) *VlenBody {
	b := &VlenBody{Subtype: VlenSubtype(flags & 0xF)}
	if b.Subtype == VlenString {
		b.Padding = StringPadding((flags >> 4) & 0xF)
		b.CharSet = CharSet((flags >> 8) & 0xF)
	}
	return b
}

// --- Compound / Enum (§4.2: bits0-15 member count) ---

func encodeMemberCountFlags(n int) uint32 { return uint32(n) & 0xFFFF }

func decodeMemberCountFlags(flags uint32) int { return int(flags & 0xFFFF) }

// --- Opaque (§4.2: bits0-7 tag length, multiple of 8, capped by OpaqueTagMax
// and by the 8-bit field, so at most 248) ---

func opaqueAlignedTagLen(tag string) (int, error) {
	n := alignUp8(len(tag))
	if n > OpaqueTagMax || n > 0xFF {
		return 0, ErrOpaqueTagTooLong
	}
	return n, nil
}

func encodeOpaqueFlags(alignedLen int) uint32 { return uint32(alignedLen) & 0xFF }

func decodeOpaqueFlags(flags uint32) int { return int(flags & 0xFF) }
