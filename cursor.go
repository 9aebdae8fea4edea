// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import (
	"bytes"
	"encoding/binary"
)

// reader is a bounds-checked byte cursor over a decode buffer, in the same
// spirit as File.structUnpack/ReadUint32 in the teacher repo's helper.go:
// every read is checked against the remaining length before it is
// performed, and a short buffer always yields ErrTruncatedBuffer rather than
// panicking.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncatedBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}

// uintN reads an n-byte little-endian unsigned integer, zero-extended into a
// uint64. Used for the V3 variable-width compound member offset (§4.3, §9).
func (r *reader) uintN(n int) (uint64, error) {
	b, err := r.bytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// cstring reads a NUL-terminated string and consumes the terminator.
func (r *reader) cstring() (string, error) {
	rest := r.buf[r.pos:]
	idx := bytes.IndexByte(rest, 0)
	if idx < 0 {
		return "", ErrTruncatedBuffer
	}
	s := string(rest[:idx])
	r.pos += idx + 1
	return s, nil
}

// writer is an append-only encode buffer. Unlike reader it never fails:
// everything that could make encoding a node impossible (the UnsupportedX
// errors, an over-long opaque tag) is raised by the class-specific flag
// encoders in flags.go, which encodeNode calls before any bytes of that
// node are written.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// uintN writes the low n bytes of v, little-endian.
func (w *writer) uintN(v uint64, n int) {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(v)
		v >>= 8
	}
	w.buf = append(w.buf, b...)
}

func (w *writer) cstring(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *writer) zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// padTo8 appends the null-padded string, total length rounded up to a
// multiple of 8 bytes (V1/V2 compound and enum member-name rule, §4.3).
func (w *writer) padTo8(s string) {
	start := len(w.buf)
	w.cstring(s)
	padded := alignUp8(len(s) + 1)
	for len(w.buf)-start < padded {
		w.buf = append(w.buf, 0)
	}
}

func alignUp8(n int) int { return (n + 7) &^ 7 }
