// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"bytes"
	"testing"
)

// TestEncodeScalarInt32BE covers the scalar 32-bit big-endian signed integer
// seed scenario: prelude {class=0,version=1} byte 0x10, flags low byte 0x09
// (BE+signed), size 4, body {offset=0, precision=32}.
func TestEncodeScalarInt32BE(t *testing.T) {
	dt := &Datatype{
		Class: ClassInteger,
		Size:  4,
		Body: &IntegerBody{
			Order:     OrderBE,
			LSBPad:    PadZero,
			MSBPad:    PadZero,
			Sign:      SignTwosComp,
			BitOffset: 0,
			Precision: 32,
		},
	}

	want := []byte{0x10, 0x09, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20, 0x00}

	got, err := Encode(dt, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode = % x, want % x", got, want)
	}

	size, err := PredictedSize(dt, EncodeOptions{})
	if err != nil {
		t.Fatalf("PredictedSize: %v", err)
	}
	if size != len(want) {
		t.Fatalf("PredictedSize = %d, want %d", size, len(want))
	}
}

// TestEncodeArrayOf3x4FloatsSelectsV2 covers the fixed-size array-of-floats
// scenario: encoding must select V2 (no VAX float anywhere), and decoding
// must reproduce identical dims and leaf float.
func TestEncodeArrayOf3x4FloatsSelectsV2(t *testing.T) {
	leaf := &Datatype{
		Class: ClassFloat,
		Size:  4,
		Body: &FloatBody{
			Order:        OrderLE,
			Norm:         NormImplied,
			SignBitPos:   31,
			BitOffset:    0,
			Precision:    32,
			ExpPos:       23,
			ExpSize:      8,
			MantissaPos:  0,
			MantissaSize: 23,
			ExponentBias: 127,
		},
	}
	arr := &Datatype{
		Class:  ClassArray,
		Size:   12 * 4,
		Body:   &ArrayBody{Dims: []uint32{3, 4}},
		Parent: leaf,
	}

	encoded, err := Encode(arr, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	version := Version(encoded[0] >> 4)
	if version != V2 {
		t.Fatalf("version = %d, want V2", version)
	}

	predicted, err := PredictedSize(arr, EncodeOptions{})
	if err != nil {
		t.Fatalf("PredictedSize: %v", err)
	}
	if predicted != len(encoded) {
		t.Fatalf("PredictedSize = %d, len(encoded) = %d", predicted, len(encoded))
	}

	decoded, n, err := Decode(encoded, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("consumed %d bytes, want %d", n, len(encoded))
	}
	ab, ok := decoded.Body.(*ArrayBody)
	if !ok {
		t.Fatalf("decoded body is %T, want *ArrayBody", decoded.Body)
	}
	if !equalDims(ab.Dims, []uint32{3, 4}) {
		t.Fatalf("dims = %v, want [3 4]", ab.Dims)
	}
	if decoded.Parent.Class != ClassFloat {
		t.Fatalf("parent class = %s, want float", decoded.Parent.Class)
	}
}

func equalDims(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestEncodeCompoundV3OneByteOffset covers the compound-of-two-i32-members
// scenario under the "use latest format" hint: V3, 1-byte member offsets,
// unpadded NUL-terminated names, packed=true.
func TestEncodeCompoundV3OneByteOffset(t *testing.T) {
	i32 := func() *Datatype {
		return &Datatype{
			Class: ClassInteger,
			Size:  4,
			Body: &IntegerBody{
				Order:     OrderLE,
				Sign:      SignTwosComp,
				BitOffset: 0,
				Precision: 32,
			},
		}
	}

	compound := NewCompound(8)
	if err := compound.AddMember("a", 0, i32()); err != nil {
		t.Fatalf("AddMember a: %v", err)
	}
	if err := compound.AddMember("b", 4, i32()); err != nil {
		t.Fatalf("AddMember b: %v", err)
	}

	cb := compound.Body.(*CompoundBody)
	if !cb.Packed {
		t.Fatalf("expected packed=true")
	}

	encoded, err := Encode(compound, EncodeOptions{UseLatestFormat: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if Version(encoded[0]>>4) != V3 {
		t.Fatalf("version = %d, want V3", encoded[0]>>4)
	}

	// Member region starts right after the 8-byte prelude: "a\0" (2 bytes),
	// 1-byte offset, then the 12-byte nested integer message.
	body := encoded[8:]
	if !bytes.HasPrefix(body, []byte("a\x00\x00")) {
		t.Fatalf("body = % x, want to start with 'a',0x00,offset=0x00", body)
	}

	decoded, n, err := Decode(encoded, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("consumed %d, want %d", n, len(encoded))
	}
	dcb := decoded.Body.(*CompoundBody)
	if len(dcb.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(dcb.Members))
	}
	if dcb.Members[0].Name != "a" || dcb.Members[0].Offset != 0 {
		t.Fatalf("member 0 = %+v", dcb.Members[0])
	}
	if dcb.Members[1].Name != "b" || dcb.Members[1].Offset != 4 {
		t.Fatalf("member 1 = %+v", dcb.Members[1])
	}
	if !dcb.Packed {
		t.Fatalf("decoded packed = false, want true")
	}
}

// TestEncodeVlenOfOpaqueForcesConversion covers the vlen-of-opaque scenario:
// aligned tag storage, root force_convert, and Disk location once decoded
// against a file handle.
func TestEncodeVlenOfOpaqueForcesConversion(t *testing.T) {
	opaque := &Datatype{
		Class: ClassOpaque,
		Size:  16,
		Body:  &OpaqueBody{Tag: "myTag"},
	}
	vlen := &Datatype{
		Class:  ClassVlen,
		Size:   16,
		Body:   &VlenBody{Subtype: VlenSequence},
		Parent: opaque,
	}
	vlen.ForceConvert = computeForceConvert(vlen)
	if !vlen.ForceConvert {
		t.Fatalf("expected vlen root to force_convert")
	}

	encoded, err := Encode(vlen, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Opaque message starts after the vlen's own 8-byte prelude.
	opaqueMsg := encoded[8:]
	tagBytes := opaqueMsg[8:16]
	want := []byte("myTag\x00\x00\x00")
	if !bytes.Equal(tagBytes, want) {
		t.Fatalf("tag bytes = % x, want % x", tagBytes, want)
	}

	decoded, _, err := Decode(encoded, DecodeOptions{File: fakeFileHandle{}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.ForceConvert {
		t.Fatalf("decoded force_convert = false, want true")
	}
	if decoded.Location != LocationDisk {
		t.Fatalf("decoded location = %d, want Disk", decoded.Location)
	}
}

type fakeFileHandle struct{}

func (fakeFileHandle) UseLatestFormat() bool { return false }

// TestEncodeEnumV1PaddedNames covers the enum-over-u8 seed scenario under
// V1: names padded to 8-byte multiples, raw values concatenated in order.
func TestEncodeEnumV1PaddedNames(t *testing.T) {
	parent := &Datatype{
		Class: ClassInteger,
		Size:  1,
		Body: &IntegerBody{
			Order:     OrderLE,
			Sign:      SignNone,
			BitOffset: 0,
			Precision: 8,
		},
	}
	enum := &Datatype{
		Class:  ClassEnum,
		Size:   1,
		Parent: parent,
		Body: &EnumBody{
			Members: []EnumMember{
				{Name: "RED", RawValue: []byte{0x00}},
				{Name: "GRN", RawValue: []byte{0x01}},
				{Name: "BLU", RawValue: []byte{0x02}},
			},
		},
	}

	encoded, err := Encode(enum, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if Version(encoded[0]>>4) != V1 {
		t.Fatalf("version = %d, want V1", encoded[0]>>4)
	}

	// After the enum's 8-byte prelude and the nested 12-byte integer parent
	// message, three 8-byte padded names follow, then 3 raw value bytes.
	body := encoded[8+12:]
	wantNames := []byte("RED\x00\x00\x00\x00\x00" + "GRN\x00\x00\x00\x00\x00" + "BLU\x00\x00\x00\x00\x00")
	if !bytes.Equal(body[:len(wantNames)], wantNames) {
		t.Fatalf("names = % x, want % x", body[:len(wantNames)], wantNames)
	}
	wantValues := []byte{0x00, 0x01, 0x02}
	values := body[len(wantNames):]
	if !bytes.Equal(values, wantValues) {
		t.Fatalf("values = % x, want % x", values, wantValues)
	}

	decoded, _, err := Decode(encoded, DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	deb := decoded.Body.(*EnumBody)
	if len(deb.Members) != 3 {
		t.Fatalf("members = %d, want 3", len(deb.Members))
	}
	for i, name := range []string{"RED", "GRN", "BLU"} {
		if deb.Members[i].Name != name {
			t.Fatalf("member %d name = %q, want %q", i, deb.Members[i].Name, name)
		}
	}
}

// TestDecodeTruncatedCompound covers the truncated-decode seed scenario: a
// valid compound encoding with its last two bytes dropped must fail with
// ErrTruncatedBuffer.
func TestDecodeTruncatedCompound(t *testing.T) {
	i32 := func() *Datatype {
		return &Datatype{
			Class: ClassInteger,
			Size:  4,
			Body:  &IntegerBody{Order: OrderLE, Sign: SignTwosComp, Precision: 32},
		}
	}
	compound := NewCompound(8)
	compound.AddMember("a", 0, i32())
	compound.AddMember("b", 4, i32())

	encoded, err := Encode(compound, EncodeOptions{UseLatestFormat: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	truncated := encoded[:len(encoded)-2]
	_, _, err = Decode(truncated, DecodeOptions{})
	if err != ErrTruncatedBuffer {
		t.Fatalf("Decode(truncated) err = %v, want ErrTruncatedBuffer", err)
	}
}

// TestDecodeRejectsUnknownCharSet covers §4.2's charset attribute: a String
// or Vlen(string) node whose charset nibble is neither ASCII nor UTF-8 must
// fail decode rather than round-trip silently.
func TestDecodeRejectsUnknownCharSet(t *testing.T) {
	str := &Datatype{
		Class: ClassString,
		Size:  1,
		Body:  &StringBody{Padding: PadNullTerm, CharSet: CharSetASCII},
	}
	encoded, err := Encode(str, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Charset occupies bits4-7 of the flags byte, which sits right after the
	// version/class byte (§4.1).
	encoded[1] |= 0xF0

	_, _, err = Decode(encoded, DecodeOptions{})
	if err != ErrInvalidCharset {
		t.Fatalf("Decode(unknown charset) err = %v, want ErrInvalidCharset", err)
	}
}

// TestDecodeRejectsNonUTF8MemberName covers the member-name charset rule
// implied by §3.2 ("name: UTF8 string"): a compound member name with an
// invalid UTF-8 byte sequence must fail decode.
func TestDecodeRejectsNonUTF8MemberName(t *testing.T) {
	i32 := &Datatype{
		Class: ClassInteger,
		Size:  4,
		Body:  &IntegerBody{Order: OrderLE, Sign: SignTwosComp, Precision: 32},
	}
	compound := NewCompound(4)
	compound.AddMember("a", 0, i32)

	encoded, err := Encode(compound, EncodeOptions{UseLatestFormat: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	nameIdx := bytes.IndexByte(encoded, 'a')
	if nameIdx < 0 {
		t.Fatalf("encoded buffer does not contain the member name")
	}
	encoded[nameIdx] = 0xFF

	_, _, err = Decode(encoded, DecodeOptions{})
	if err != ErrInvalidCharset {
		t.Fatalf("Decode(invalid UTF-8 member name) err = %v, want ErrInvalidCharset", err)
	}
}

// TestVersionMinimality checks the three-way version-selection rule (§4.4,
// §8): VAX float anywhere forces V3; otherwise any Array forces V2;
// otherwise V1.
func TestVersionMinimality(t *testing.T) {
	plainInt := &Datatype{
		Class: ClassInteger,
		Size:  4,
		Body:  &IntegerBody{Order: OrderLE, Sign: SignTwosComp, Precision: 32},
	}
	if v := SelectVersion(plainInt, false); v != V1 {
		t.Fatalf("plain integer version = %d, want V1", v)
	}

	arrayOfInt := &Datatype{
		Class:  ClassArray,
		Size:   16,
		Body:   &ArrayBody{Dims: []uint32{4}},
		Parent: plainInt,
	}
	if v := SelectVersion(arrayOfInt, false); v != V2 {
		t.Fatalf("array version = %d, want V2", v)
	}

	vaxFloat := &Datatype{
		Class: ClassFloat,
		Size:  4,
		Body: &FloatBody{
			Order: OrderVAX, Norm: NormImplied, Precision: 32,
			ExpPos: 23, ExpSize: 8, MantissaSize: 23, ExponentBias: 127,
		},
	}
	if v := SelectVersion(vaxFloat, false); v != V3 {
		t.Fatalf("vax float version = %d, want V3", v)
	}

	if v := SelectVersion(plainInt, true); v != Latest {
		t.Fatalf("use-latest version = %d, want Latest", v)
	}
}
