package block

import (
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/value"
)

// Event is the atomic record: an object's timestamped, optionally
// action-tagged, sparse property data.
type Event struct {
	ObjectID  uint64
	Timestamp int64
	ActionID  uint32 // 0 means "no action"
	Data      map[uint16]value.Value
}

// eventSizeOf returns the encoded byte length of e, without allocating.
func eventSizeOf(e Event) int {
	n := 8 + 4 + 2 // timestamp + action_id + data count
	for _, v := range e.Data {
		n += 2 // property id
		n += value.SizeOf(v)
	}

	return n
}

// encodeEvent appends the wire encoding of one event record to dst. Event
// records are self-delimiting: timestamp, action id, a data count, then
// count*(property id, typed value) pairs.
func encodeEvent(dst []byte, e Event) []byte {
	dst = engine.AppendUint64(dst, uint64(e.Timestamp))
	dst = engine.AppendUint32(dst, e.ActionID)
	dst = engine.AppendUint16(dst, uint16(len(e.Data)))

	for pid, v := range e.Data {
		dst = engine.AppendUint16(dst, pid)
		dst = value.Write(dst, v)
	}

	return dst
}

// DecodeEvent decodes one event record from the front of src for the given
// objectID, returning the event and the number of bytes consumed. Exported
// for the cursor package, which walks raw path buffers handed back by the
// store without re-implementing the wire format.
func DecodeEvent(src []byte, objectID uint64) (Event, int, error) {
	return decodeEvent(src, objectID)
}

// decodeEvent decodes one event record from the front of src for the given
// objectID, returning the event and the number of bytes consumed. objectID
// is supplied by the caller (the path header), not re-encoded per event.
func decodeEvent(src []byte, objectID uint64) (Event, int, error) {
	if len(src) < 14 {
		return Event{}, 0, errs.DecodeError(0, errs.ErrShortRead)
	}

	ts := int64(engine.Uint64(src[0:8]))
	actionID := engine.Uint32(src[8:12])
	count := int(engine.Uint16(src[12:14]))

	off := 14

	var data map[uint16]value.Value
	if count > 0 {
		data = make(map[uint16]value.Value, count)
	}

	for i := 0; i < count; i++ {
		if len(src) < off+2 {
			return Event{}, 0, errs.DecodeError(off, errs.ErrShortRead)
		}

		pid := engine.Uint16(src[off : off+2])
		off += 2

		v, n, err := value.Read(src[off:])
		if err != nil {
			return Event{}, 0, err
		}

		off += n
		data[pid] = v
	}

	return Event{ObjectID: objectID, Timestamp: ts, ActionID: actionID, Data: data}, off, nil
}

// peekEventSize returns the encoded byte length of the event at the front of
// src without building an Event or its data map, used by scanPath to
// recount a path's events.
func peekEventSize(src []byte) (int, error) {
	if len(src) < 14 {
		return 0, errs.DecodeError(0, errs.ErrShortRead)
	}

	count := int(engine.Uint16(src[12:14]))
	off := 14

	for i := 0; i < count; i++ {
		if len(src) < off+2 {
			return 0, errs.DecodeError(off, errs.ErrShortRead)
		}

		off += 2

		_, n, err := value.Read(src[off:])
		if err != nil {
			return 0, err
		}

		off += n
	}

	return off, nil
}
