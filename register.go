// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dtype

import "io"

// MessageID is the numeric object-header message type this codec is
// registered under (§6.1). The value matches the real datatype message ID
// used by the format this codec was distilled from.
const MessageID = 0x0003

// MessageName is the debug name the object-header subsystem reports this
// message class as.
const MessageName = "datatype"

// MessageClass is the §6.1 object-header message slot descriptor: a numeric
// message ID, debug name, in-memory node size, and a function-pointer table
// for {decode, encode, copy, size, reset, free, get_share, set_share,
// is_shared, pre_copy_file, copy_file, debug}. NodeSize is wired to
// PredictedSize: it reports the encoded byte length of a datatype, not the
// size of the in-memory Datatype node. delete, link, and
// post_copy_file are intentionally absent — a datatype message carries no
// own-file storage to unlink and nothing it needs to adjust on link-count
// change.
var MessageClass = struct {
	ID       int
	Name     string
	NodeSize func(t *Datatype, opts EncodeOptions) (int, error)

	Decode func(buf []byte, opts DecodeOptions) (*Datatype, int, error)
	Encode func(t *Datatype, opts EncodeOptions) ([]byte, error)
	Copy   func(t *Datatype, dst *Datatype) *Datatype
	Size   func(t *Datatype, opts EncodeOptions) (int, error)
	Reset  func(t *Datatype)
	Free   func(t *Datatype)

	GetShare func(t *Datatype) Sharing
	SetShare func(t *Datatype, s Sharing) error
	IsShared func(t *Datatype) bool

	PreCopyFile func(t *Datatype, userData *CopyFileUserData) error
	CopyFile    func(t *Datatype, dst FileHandle) *Datatype

	Debug func(w io.Writer, t *Datatype, indent int)
}{
	ID:       MessageID,
	Name:     MessageName,
	NodeSize: PredictedSize,

	Decode: Decode,
	Encode: Encode,
	Copy:   Copy,
	Size:   PredictedSize,
	Reset:  Reset,
	Free:   Free,

	GetShare: GetShare,
	SetShare: SetShare,
	IsShared: IsShared,

	PreCopyFile: PreCopyFile,
	CopyFile:    CopyFile,

	Debug: Dump,
}
