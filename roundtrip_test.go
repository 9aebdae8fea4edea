// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// roundTripCases builds a representative set of well-formed trees exercising
// every class, used by both the round-trip and size-agreement properties
// (§8).
func roundTripCases() map[string]*Datatype {
	i32 := &Datatype{
		Class: ClassInteger,
		Size:  4,
		Body:  &IntegerBody{Order: OrderLE, Sign: SignTwosComp, Precision: 32},
	}
	u8 := &Datatype{
		Class: ClassInteger,
		Size:  1,
		Body:  &IntegerBody{Order: OrderLE, Sign: SignNone, Precision: 8},
	}
	f32 := &Datatype{
		Class: ClassFloat,
		Size:  4,
		Body: &FloatBody{
			Order: OrderLE, Norm: NormImplied, SignBitPos: 31, Precision: 32,
			ExpPos: 23, ExpSize: 8, MantissaSize: 23, ExponentBias: 127,
		},
	}
	str := &Datatype{
		Class: ClassString,
		Size:  10,
		Body:  &StringBody{Padding: PadNullPad, CharSet: CharSetASCII},
	}
	opaque := &Datatype{Class: ClassOpaque, Size: 8, Body: &OpaqueBody{Tag: "tag"}}
	ref := &Datatype{Class: ClassReference, Size: 8, Body: &ReferenceBody{Subtype: RefObject}}

	compound := NewCompound(8)
	compound.AddMember("a", 0, cloneLeaf(i32))
	compound.AddMember("b", 4, cloneLeaf(i32))

	enum := &Datatype{
		Class:  ClassEnum,
		Size:   1,
		Parent: cloneLeaf(u8),
		Body: &EnumBody{Members: []EnumMember{
			{Name: "A", RawValue: []byte{0}},
			{Name: "B", RawValue: []byte{1}},
		}},
	}

	vlen := &Datatype{Class: ClassVlen, Size: 1, Body: &VlenBody{Subtype: VlenSequence}, Parent: cloneLeaf(u8)}
	vlen.ForceConvert = computeForceConvert(vlen)

	array := &Datatype{Class: ClassArray, Size: 16, Body: &ArrayBody{Dims: []uint32{4}}, Parent: cloneLeaf(i32)}

	bitfield := &Datatype{
		Class: ClassBitField, Size: 2,
		Body: &BitFieldBody{Order: OrderLE, Precision: 16},
	}

	timeT := &Datatype{Class: ClassTime, Size: 4, Body: &TimeBody{Order: OrderLE, Precision: 32}}

	return map[string]*Datatype{
		"integer":  i32,
		"float":    f32,
		"string":   str,
		"opaque":   opaque,
		"reference": ref,
		"compound": compound,
		"enum":     enum,
		"vlen":     vlen,
		"array":    array,
		"bitfield": bitfield,
		"time":     timeT,
	}
}

func cloneLeaf(t *Datatype) *Datatype {
	return Copy(t, nil)
}

func TestRoundTrip(t *testing.T) {
	for name, tree := range roundTripCases() {
		name, tree := name, tree
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(tree, EncodeOptions{})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, n, err := Decode(encoded, DecodeOptions{})
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if n != len(encoded) {
				t.Fatalf("consumed %d, want %d", n, len(encoded))
			}

			diff := cmp.Diff(tree, decoded, cmpopts.IgnoreFields(Datatype{}, "Location", "Sharing", "State"))
			if diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSizePredictorAgreement(t *testing.T) {
	for name, tree := range roundTripCases() {
		name, tree := name, tree
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(tree, EncodeOptions{})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			predicted, err := PredictedSize(tree, EncodeOptions{})
			if err != nil {
				t.Fatalf("PredictedSize: %v", err)
			}
			if predicted != len(encoded) {
				t.Fatalf("PredictedSize = %d, len(encoded) = %d", predicted, len(encoded))
			}
		})
	}
}

func TestForceConvertPropagation(t *testing.T) {
	u8 := &Datatype{Class: ClassInteger, Size: 1, Body: &IntegerBody{Order: OrderLE, Precision: 8}}
	plain := NewCompound(4)
	plain.AddMember("x", 0, Copy(u8, nil))
	if plain.ForceConvert {
		t.Fatalf("tree of only primitives has force_convert = true, want false")
	}

	withVlen := NewCompound(9)
	withVlen.AddMember("x", 0, Copy(u8, nil))
	vlenMember := &Datatype{Class: ClassVlen, Size: 1, Body: &VlenBody{Subtype: VlenSequence}, Parent: Copy(u8, nil)}
	vlenMember.ForceConvert = computeForceConvert(vlenMember)
	withVlen.AddMember("y", 1, vlenMember)
	if !withVlen.ForceConvert {
		t.Fatalf("tree containing a vlen descendant has force_convert = false, want true")
	}
}
