// Package cursor implements forward iteration over an object's event path,
// transparently stitching a head block's buffer together with any spanned
// continuation blocks.
//
// There is no raw (ptr, endptr) pair or pointer arithmetic here: every
// advance decodes one event from a length-carrying byte slice and only ever
// moves forward by the number of bytes that decode reported consuming.
//
// A Cursor optionally binds a DataDescriptor naming which property ids a
// caller wants materialized, and where, into a caller-owned scratch buffer;
// see SetDataDescriptor. Call sites that only need the full decoded event
// can ignore this and read Current directly.
package cursor

import (
	"iter"
	"math"

	"github.com/skydb/sky/block"
	"github.com/skydb/sky/endian"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
	"github.com/skydb/sky/value"
)

// scratchEngine is the byte order used to materialize values into a data
// descriptor's scratch buffer; matches the big-endian convention the rest of
// the wire codec uses.
var scratchEngine = endian.GetBigEndianEngine()

// PathBufferSource supplies the ordered path buffers for one object. A
// *block.Store satisfies this.
type PathBufferSource interface {
	PathBuffersFor(objectID uint64) ([][]byte, func())
}

// DataDescriptorEntry binds one property id to a fixed-width slot in a
// caller-supplied scratch buffer. Width is 8 for int/uint/double properties
// (materialized as a big-endian uint64, reinterpreting float bits for
// doubles) and 1 for boolean properties.
type DataDescriptorEntry struct {
	PropertyID uint16
	Offset     int
	Width      int
}

// DataDescriptor is an ordered set of property bindings a Cursor
// materializes into a scratch buffer on every Next call, so call sites that
// repeatedly read the same few properties off many events don't need to
// walk Current().Data and switch on value.Kind themselves.
type DataDescriptor []DataDescriptorEntry

// Cursor walks one object's events in timestamp order, oldest first.
type Cursor struct {
	objectID uint64
	buffers  [][]byte
	release  func()

	descriptor DataDescriptor
	scratch    []byte

	bufIdx  int
	off     int
	current block.Event
	err     error
	started bool
	done    bool
}

// New opens a Cursor over objectID's path buffers from src. Close must be
// called when the cursor is no longer needed, to release src's read lock.
func New(objectID uint64, src PathBufferSource) *Cursor {
	buffers, release := src.PathBuffersFor(objectID)

	return &Cursor{objectID: objectID, buffers: buffers, release: release}
}

// Close releases the underlying store lock. Safe to call more than once.
func (c *Cursor) Close() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// SetDataDescriptor binds descriptor to scratch: from this point on, every
// call to Next clears each bound slot of scratch to zero and then, for
// whichever bound properties the decoded event actually carries, writes the
// property's value into its slot. Properties the descriptor names but the
// event doesn't carry are left cleared, so a caller can read scratch
// directly after Next without checking which properties were present.
//
// Pass a nil descriptor to stop materializing data into scratch.
func (c *Cursor) SetDataDescriptor(descriptor DataDescriptor, scratch []byte) {
	c.descriptor = descriptor
	c.scratch = scratch
}

// Next decodes the next event and makes it available via Current. It
// returns false at end of stream or after the first decode error (check Err
// to distinguish the two).
func (c *Cursor) Next() bool {
	if c.done || c.err != nil {
		return false
	}

	c.started = true

	for c.bufIdx < len(c.buffers) {
		buf := c.buffers[c.bufIdx]

		if c.off >= len(buf) {
			c.bufIdx++
			c.off = 0

			continue
		}

		e, n, err := block.DecodeEvent(buf[c.off:], c.objectID)
		if err != nil {
			c.err = errs.Wrap(errs.KindDecode, err, "cursor decode at buffer %d offset %d", c.bufIdx, c.off)
			c.done = true

			return false
		}

		c.off += n
		c.current = e
		c.clearData()
		c.materializeData(e)

		return true
	}

	c.done = true

	return false
}

// clearData zeroes every slot SetDataDescriptor's descriptor covers, run at
// the start of each event boundary so a property absent from the current
// event doesn't leak the previous event's value.
func (c *Cursor) clearData() {
	for _, d := range c.descriptor {
		end := d.Offset + d.Width
		if d.Offset < 0 || end > len(c.scratch) {
			continue
		}

		clear(c.scratch[d.Offset:end])
	}
}

// materializeData writes e's data map into the scratch buffer for every
// property the current descriptor binds.
func (c *Cursor) materializeData(e block.Event) {
	for _, d := range c.descriptor {
		v, ok := e.Data[d.PropertyID]
		if !ok {
			continue
		}

		end := d.Offset + d.Width
		if d.Offset < 0 || end > len(c.scratch) {
			continue
		}

		writeScratch(c.scratch[d.Offset:end], v)
	}
}

// writeScratch encodes v into dst according to dst's width, matching the
// widths DataDescriptorEntry documents. Kinds that don't fit a fixed-width
// slot (strings, maps) are silently skipped: a descriptor binding one of
// those is a caller error the zero-value scratch slot will surface as.
func writeScratch(dst []byte, v value.Value) {
	switch v.Kind {
	case format.KindUint, format.KindInt:
		if len(dst) >= 8 {
			scratchEngine.PutUint64(dst, uint64(v.Int))
		}
	case format.KindDouble:
		if len(dst) >= 8 {
			scratchEngine.PutUint64(dst, math.Float64bits(v.Double))
		}
	case format.KindBoolTrue:
		if len(dst) >= 1 {
			dst[0] = 1
		}
	case format.KindBoolFalse:
		if len(dst) >= 1 {
			dst[0] = 0
		}
	}
}

// Current returns the event Next most recently decoded. Only valid after a
// call to Next that returned true.
func (c *Cursor) Current() block.Event { return c.current }

// Err returns the error that stopped iteration, if any.
func (c *Cursor) Err() error { return c.err }

// EOF reports whether the cursor has been fully consumed without error.
func (c *Cursor) EOF() bool { return c.done && c.err == nil }

// All returns a range-over-func iterator over every event, for callers that
// prefer `for e := range cur.All() { ... }` to the Next/Current protocol.
// The underlying cursor is closed automatically once the sequence is fully
// drained or the loop body breaks early.
func (c *Cursor) All() iter.Seq[block.Event] {
	return func(yield func(block.Event) bool) {
		defer c.Close()

		for c.Next() {
			if !yield(c.Current()) {
				return
			}
		}
	}
}
