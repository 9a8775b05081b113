package block

import "github.com/skydb/sky/errs"

// pathHeaderSize is the byte length of a path's self-delimiting header:
// object_id (8) + length of the event-record region that follows (4).
const pathHeaderSize = 8 + 4

// Path is all events of one object_id in timestamp order, held as a
// contiguous self-delimiting byte buffer plus a small in-memory-only
// summary (Count, MaxTS) rebuilt by scanning whenever a Path is decoded —
// never persisted, since the byte buffer alone is the source of truth.
type Path struct {
	ObjectID uint64
	Bytes    []byte
	Count    int
	MaxTS    int64
}

// encodePath appends the framed encoding of p (header + event bytes) to dst.
func encodePath(dst []byte, p Path) []byte {
	dst = engine.AppendUint64(dst, p.ObjectID)
	dst = engine.AppendUint32(dst, uint32(len(p.Bytes)))
	dst = append(dst, p.Bytes...)

	return dst
}

// decodePath decodes one framed Path from the front of src, returning the
// path and the number of bytes consumed.
func decodePath(src []byte) (Path, int, error) {
	if len(src) < pathHeaderSize {
		return Path{}, 0, errs.DecodeError(0, errs.ErrShortRead)
	}

	objectID := engine.Uint64(src[0:8])
	length := int(engine.Uint32(src[8:12]))

	if length < 0 || len(src) < pathHeaderSize+length {
		return Path{}, 0, errs.DecodeError(pathHeaderSize, errs.ErrShortRead)
	}

	body := src[pathHeaderSize : pathHeaderSize+length]

	count, maxTS, err := scanPath(body)
	if err != nil {
		return Path{}, 0, err
	}

	return Path{ObjectID: objectID, Bytes: body, Count: count, MaxTS: maxTS}, pathHeaderSize + length, nil
}

// scanPath walks a path's event-record bytes to recompute its event count
// and maximum timestamp without materializing any event's data.
func scanPath(body []byte) (count int, maxTS int64, err error) {
	off := 0
	for off < len(body) {
		n, err := peekEventSize(body[off:])
		if err != nil {
			return 0, 0, err
		}

		ts := int64(engine.Uint64(body[off : off+8]))
		if count == 0 || ts > maxTS {
			maxTS = ts
		}

		count++
		off += n
	}

	return count, maxTS, nil
}

// appendEvent appends e's encoding to the tail of p's byte buffer and
// updates the in-memory summary. Callers are responsible for maintaining
// timestamp order — see insertSorted, which shifts when out of order.
func (p *Path) appendEvent(e Event) {
	p.Bytes = encodeEvent(p.Bytes, e)
	p.Count++

	if e.Timestamp > p.MaxTS || p.Count == 1 {
		p.MaxTS = e.Timestamp
	}
}

// insertSorted inserts e at the timestamp-sorted position within p. If
// e.Timestamp >= p.MaxTS the common append-only path is taken (O(1)
// amortized); otherwise the path is decoded, e is spliced in, and the path
// is fully re-encoded (the rare, caller-discouraged case of out-of-order
// insertion).
func (p *Path) insertSorted(e Event) error {
	if p.Count == 0 || e.Timestamp >= p.MaxTS {
		p.appendEvent(e)

		return nil
	}

	events, err := p.decodeEvents()
	if err != nil {
		return err
	}

	idx := len(events)

	for i, ev := range events {
		if e.Timestamp < ev.Timestamp {
			idx = i

			break
		}
	}

	events = append(events, Event{})
	copy(events[idx+1:], events[idx:])
	events[idx] = e

	p.rebuildFrom(events)

	return nil
}

// decodeEvents decodes every event in p in order.
func (p *Path) decodeEvents() ([]Event, error) {
	events := make([]Event, 0, p.Count)
	off := 0

	for off < len(p.Bytes) {
		e, n, err := decodeEvent(p.Bytes[off:], p.ObjectID)
		if err != nil {
			return nil, err
		}

		events = append(events, e)
		off += n
	}

	return events, nil
}

// rebuildFrom re-encodes p's byte buffer from events, in order, and updates
// the in-memory summary.
func (p *Path) rebuildFrom(events []Event) {
	buf := make([]byte, 0, len(p.Bytes)+16)

	var maxTS int64

	for i, e := range events {
		buf = encodeEvent(buf, e)

		if i == 0 || e.Timestamp > maxTS {
			maxTS = e.Timestamp
		}
	}

	p.Bytes = buf
	p.Count = len(events)
	p.MaxTS = maxTS
}

// size returns the framed encoded byte length of p (header + body).
func (p Path) size() int {
	return pathHeaderSize + len(p.Bytes)
}
