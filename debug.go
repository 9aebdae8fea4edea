// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// fieldWidth is the fixed field width debug dumps are rendered at, in the
// same spirit as the teacher's cmd/dump.go tabwriter.NewWriter(..., 1, 1, 3,
// ' ', tabwriter.AlignRight) layout.
const fieldWidth = 3

// Dump renders a human-readable rendering of t to w, indented by indent
// spaces, per §4.10: class name, size, and class-specific attributes (member
// names and recursive dumps for compound/enum/array; tag for opaque; byte
// order/precision/offset/pads, and for floats norm/epos/ebias/esize/mpos/
// msize/sign-pos; for vlens, sub-type and location).
func Dump(w io.Writer, t *Datatype, indent int) {
	tw := tabwriter.NewWriter(w, 1, 1, fieldWidth, ' ', 0)
	dump(tw, t, indent)
	tw.Flush()
}

func pad(indent int) string { return strings.Repeat(" ", indent) }

func dump(w *tabwriter.Writer, t *Datatype, indent int) {
	p := pad(indent)
	fmt.Fprintf(w, "%sclass:\t%s\n", p, t.Class)
	fmt.Fprintf(w, "%ssize:\t%d\n", p, t.Size)

	switch t.Class {
	case ClassInteger:
		b := t.Body.(*IntegerBody)
		dumpAtomic(w, p, b.Order, b.LSBPad, b.MSBPad, b.BitOffset, b.Precision)
		fmt.Fprintf(w, "%ssign:\t%v\n", p, b.Sign == SignTwosComp)

	case ClassBitField:
		b := t.Body.(*BitFieldBody)
		dumpAtomic(w, p, b.Order, b.LSBPad, b.MSBPad, b.BitOffset, b.Precision)

	case ClassTime:
		b := t.Body.(*TimeBody)
		fmt.Fprintf(w, "%sorder:\t%v\n", p, b.Order == OrderBE)
		fmt.Fprintf(w, "%sprecision:\t%d\n", p, b.Precision)

	case ClassFloat:
		b := t.Body.(*FloatBody)
		dumpAtomic(w, p, b.Order, b.LSBPad, b.MSBPad, b.BitOffset, b.Precision)
		fmt.Fprintf(w, "%snorm:\t%d\n", p, b.Norm)
		fmt.Fprintf(w, "%ssign-pos:\t%d\n", p, b.SignBitPos)
		fmt.Fprintf(w, "%sexp-pos:\t%d\n", p, b.ExpPos)
		fmt.Fprintf(w, "%sexp-size:\t%d\n", p, b.ExpSize)
		fmt.Fprintf(w, "%smantissa-pos:\t%d\n", p, b.MantissaPos)
		fmt.Fprintf(w, "%smantissa-size:\t%d\n", p, b.MantissaSize)
		fmt.Fprintf(w, "%sexp-bias:\t%d\n", p, b.ExponentBias)

	case ClassString:
		b := t.Body.(*StringBody)
		fmt.Fprintf(w, "%spadding:\t%d\n", p, b.Padding)
		fmt.Fprintf(w, "%scharset:\t%d\n", p, b.CharSet)

	case ClassOpaque:
		b := t.Body.(*OpaqueBody)
		fmt.Fprintf(w, "%stag:\t%q\n", p, b.Tag)

	case ClassReference:
		b := t.Body.(*ReferenceBody)
		fmt.Fprintf(w, "%ssubtype:\t%d\n", p, b.Subtype)

	case ClassCompound:
		b := t.Body.(*CompoundBody)
		fmt.Fprintf(w, "%spacked:\t%v\n", p, b.Packed)
		fmt.Fprintf(w, "%smembers:\t%d\n", p, len(b.Members))
		for _, m := range b.Members {
			fmt.Fprintf(w, "%s  %s @ %d:\n", p, m.Name, m.Offset)
			dump(w, m.Type, indent+4)
		}

	case ClassEnum:
		b := t.Body.(*EnumBody)
		fmt.Fprintf(w, "%sparent:\n", p)
		dump(w, t.Parent, indent+2)
		fmt.Fprintf(w, "%smembers:\t%d\n", p, len(b.Members))
		for _, m := range b.Members {
			fmt.Fprintf(w, "%s  %s:\t%x\n", p, m.Name, m.RawValue)
		}

	case ClassVlen:
		b := t.Body.(*VlenBody)
		fmt.Fprintf(w, "%ssubtype:\t%d\n", p, b.Subtype)
		fmt.Fprintf(w, "%slocation:\t%d\n", p, t.Location)
		fmt.Fprintf(w, "%sbase:\n", p)
		dump(w, t.Parent, indent+2)

	case ClassArray:
		b := t.Body.(*ArrayBody)
		fmt.Fprintf(w, "%sdims:\t%v\n", p, b.Dims)
		fmt.Fprintf(w, "%sbase:\n", p)
		dump(w, t.Parent, indent+2)
	}
}

func dumpAtomic(w *tabwriter.Writer, p string, order ByteOrder, lsb, msb PadBit, bitOffset, precision uint16) {
	fmt.Fprintf(w, "%sorder:\t%d\n", p, order)
	fmt.Fprintf(w, "%slsb-pad:\t%d\n", p, lsb)
	fmt.Fprintf(w, "%smsb-pad:\t%d\n", p, msb)
	fmt.Fprintf(w, "%sbit-offset:\t%d\n", p, bitOffset)
	fmt.Fprintf(w, "%sprecision:\t%d\n", p, precision)
}
