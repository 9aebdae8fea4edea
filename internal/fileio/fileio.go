// Package fileio provides a memory-mapped backing store implementing the
// dtype.FileHandle collaborator (§6.2), grounded on the teacher's own use of
// github.com/edsrzf/mmap-go in file.go to back a File's raw bytes.
package fileio

import (
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Handle is a memory-mapped file opened read-only. It satisfies
// dtype.FileHandle (UseLatestFormat) and additionally exposes the raw bytes
// so a caller can hand byte_pointer slices straight to dtype.Decode per the
// §6.2 byte-cursor contract.
type Handle struct {
	f           *os.File
	data        mmap.MMap
	useLatest   bool
}

// Open memory-maps name read-only. useLatestFormat mirrors the "use latest
// format" property-list setting the real file handle would carry.
func Open(name string, useLatestFormat bool) (*Handle, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Handle{f: f, data: data, useLatest: useLatestFormat}, nil
}

// UseLatestFormat reports whether datatypes decoded/encoded through this
// handle should default to the latest on-disk representation (§9).
func (h *Handle) UseLatestFormat() bool { return h.useLatest }

// Bytes returns the full memory-mapped contents.
func (h *Handle) Bytes() []byte { return h.data }

// At returns the bytes starting at offset, or an error if offset is out of
// range.
func (h *Handle) At(offset int64) ([]byte, error) {
	if offset < 0 || offset > int64(len(h.data)) {
		return nil, errors.New("fileio: offset out of range")
	}
	return h.data[offset:], nil
}

// Close unmaps the file and releases its descriptor.
func (h *Handle) Close() error {
	if err := h.data.Unmap(); err != nil {
		h.f.Close()
		return err
	}
	return h.f.Close()
}
