// Package block implements Sky's path/block store: the on-disk encoding of
// per-object event streams packed into fixed-size blocks, combined into a
// logical "path" a cursor can traverse.
package block

import (
	"github.com/skydb/sky/endian"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
)

// Magic identifies a Sky block file. Version allows the on-disk layout to
// evolve without breaking recovery of older blocks outright (an
// unrecognized version is treated as corruption, same as a bad checksum).
const (
	Magic   uint32 = 0x534B5901 // "SKY" + format version byte
	Version uint8  = 1

	spanningBit = 1 << 0
)

// HeaderSize is the fixed byte length of a Header: a fixed-header-plus-
// payload layout.
//
//	Magic(4) Version(1) Flags(1) Compression(1) reserved(1)
//	ObjectIDLo(8) ObjectIDHi(8) MinTimestamp(8) MaxTimestamp(8)
//	ContinuesSeq(4) Checksum(8)
const HeaderSize = 4 + 1 + 1 + 1 + 1 + 8 + 8 + 8 + 8 + 4 + 8

var engine = endian.GetBigEndianEngine()

// Header is the fixed-size header at the start of every block file: magic,
// version, object-id range, min/max timestamp, spanning flag, and a
// checksum covering the remainder of the block.
type Header struct {
	Version     uint8
	Spanning    bool
	Compression format.CompressionType
	ObjectIDLo  uint64
	ObjectIDHi  uint64
	MinTS       int64
	MaxTS       int64
	// ContinuesSeq is 0 for a head block. For a spanned continuation block
	// it names the sequence number of the head block whose object's path it
	// continues, removing any ambiguity about which blocks form a group
	// when blocks are replayed from disk in sequence order.
	ContinuesSeq uint32
	Checksum     uint64
}

// Bytes serializes h into a HeaderSize-length slice. Checksum is written as
// given; callers compute it over the payload before calling Bytes.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine.PutUint32(b[0:4], Magic)
	b[4] = h.Version

	var flags uint8
	if h.Spanning {
		flags |= spanningBit
	}

	b[5] = flags
	b[6] = byte(h.Compression)
	b[7] = 0 // reserved

	engine.PutUint64(b[8:16], h.ObjectIDLo)
	engine.PutUint64(b[16:24], h.ObjectIDHi)
	engine.PutUint64(b[24:32], uint64(h.MinTS))
	engine.PutUint64(b[32:40], uint64(h.MaxTS))
	engine.PutUint32(b[40:44], h.ContinuesSeq)
	engine.PutUint64(b[44:52], h.Checksum)

	return b
}

// ParseHeader parses a Header from a HeaderSize-length slice.
func ParseHeader(data []byte) (Header, error) {
	if len(data) != HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	magic := engine.Uint32(data[0:4])
	if magic != Magic {
		return Header{}, errs.ErrInvalidHeaderFlags
	}

	h := Header{
		Version:      data[4],
		Spanning:     data[5]&spanningBit != 0,
		Compression:  format.CompressionType(data[6]),
		ObjectIDLo:   engine.Uint64(data[8:16]),
		ObjectIDHi:   engine.Uint64(data[16:24]),
		MinTS:        int64(engine.Uint64(data[24:32])),
		MaxTS:        int64(engine.Uint64(data[32:40])),
		ContinuesSeq: engine.Uint32(data[40:44]),
		Checksum:     engine.Uint64(data[44:52]),
	}

	if h.Version != Version {
		return Header{}, errs.ErrInvalidHeaderFlags
	}

	return h, nil
}
