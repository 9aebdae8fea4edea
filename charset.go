// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ValidateCharset checks that data is well-formed for the given CharSet
// (§4.2's string/vlen-string charset attribute). ASCII is checked byte-wise;
// UTF-8 is checked by round-tripping through golang.org/x/text's UTF-8
// decoder, which replaces every ill-formed sequence (overlong encodings
// included) with U+FFFD, so any difference between its output and the
// input marks the data as malformed.
func ValidateCharset(data []byte, cs CharSet) error {
	switch cs {
	case CharSetASCII:
		for _, b := range data {
			if b > 0x7F {
				return ErrInvalidCharset
			}
		}
		return nil
	case CharSetUTF8:
		trimmed := bytes.TrimRight(data, "\x00")
		decoder := unicode.UTF8.NewDecoder()
		out, _, err := transform.Bytes(decoder, trimmed)
		if err != nil || !bytes.Equal(out, trimmed) {
			return ErrInvalidCharset
		}
		return nil
	default:
		return nil
	}
}

// validCharSet reports whether cs is one of the charsets this codec knows
// how to interpret. decodeNode rejects a String/Vlen(string) node whose
// declared CharSet falls outside this set, the same way decodeFloatFlags
// already rejects an unrecognized Norm.
func validCharSet(cs CharSet) bool {
	return cs == CharSetASCII || cs == CharSetUTF8
}
