// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

// PredictedSize computes the exact number of bytes Encode(t, opts) will
// emit, without emitting any (§4.7). It must agree with Encode for every
// well-formed tree (§8 size-predictor agreement property) — this function
// mirrors encodeNode/encodeBody structurally so that agreement is
// maintained by construction rather than by coincidence.
func PredictedSize(t *Datatype, opts EncodeOptions) (int, error) {
	version := SelectVersion(t, opts.UseLatestFormat)
	return nodeSize(t, version)
}

func nodeSize(t *Datatype, version Version) (int, error) {
	body, err := bodySize(t, version)
	if err != nil {
		return 0, err
	}
	return 8 + body, nil
}

func bodySize(t *Datatype, version Version) (int, error) {
	switch t.Class {
	case ClassInteger, ClassBitField:
		return 4, nil // bit_offset:u16 + precision:u16

	case ClassTime:
		return 2, nil

	case ClassFloat:
		return 12, nil // bit_offset,precision (4) + 4*u8 (4) + exp_bias (4)

	case ClassString, ClassReference:
		return 0, nil

	case ClassOpaque:
		n, err := opaqueAlignedTagLen(t.Body.(*OpaqueBody).Tag)
		if err != nil {
			return 0, err
		}
		return n, nil

	case ClassCompound:
		return compoundBodySize(t.Body.(*CompoundBody), t.Size, version)

	case ClassEnum:
		return enumBodySize(t, version)

	case ClassVlen:
		return nodeSize(t.Parent, version)

	case ClassArray:
		return arrayBodySize(t, version)

	default:
		return 0, ErrUnknownClass
	}
}

func compoundBodySize(b *CompoundBody, containerSize uint32, version Version) (int, error) {
	nbytes := offsetNBytes(containerSize)
	total := 0
	for _, m := range b.Members {
		if version <= V2 {
			total += alignUp8(len(m.Name) + 1)
		} else {
			total += len(m.Name) + 1
		}

		if version <= V2 {
			total += 4
		} else {
			total += nbytes
		}

		memberType := m.Type
		if version == V1 {
			total += legacyArrayHeaderSize
			memberType = legacyMemberBase(m.Type)
		}

		s, err := nodeSize(memberType, version)
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

func enumBodySize(t *Datatype, version Version) (int, error) {
	parentSize, err := nodeSize(t.Parent, version)
	if err != nil {
		return 0, err
	}
	b := t.Body.(*EnumBody)
	total := parentSize
	for _, m := range b.Members {
		if version <= V2 {
			total += alignUp8(len(m.Name) + 1)
		} else {
			total += len(m.Name) + 1
		}
	}
	total += len(b.Members) * int(t.Parent.Size)
	return total, nil
}

func arrayBodySize(t *Datatype, version Version) (int, error) {
	b := t.Body.(*ArrayBody)
	total := 1 // ndims
	if version <= V2 {
		total += 3 // reserved
	}
	total += len(b.Dims) * 4
	if version <= V2 {
		total += len(b.Dims) * 4 // permutation vector
	}
	parentSize, err := nodeSize(t.Parent, version)
	if err != nil {
		return 0, err
	}
	total += parentSize
	return total, nil
}
