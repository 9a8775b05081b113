// Package message implements the envelope codec and per-connection
// dispatch: a self-describing map-of-typed-values request, routed by name
// to a processor, with a structured reply written back.
package message

import (
	"bufio"
	"io"

	"github.com/skydb/sky/endian"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
	"github.com/skydb/sky/value"
)

var engine = endian.GetBigEndianEngine()

// Envelope is the top-level request shape:
// {"name", "database", "table", "data"}.
type Envelope struct {
	Name     string
	Database string
	Table    string
	Data     []value.MapEntry
}

// ReadEnvelope reads exactly one self-delimiting envelope off r. Returns
// io.EOF if the connection closed cleanly between requests (no bytes of a
// new envelope yet read). A Protocol error means the envelope was read in
// full but is not a map or has no name; the stream is still in step. Any
// other error is a Decode error and the caller must close the connection,
// since a decode error leaves the stream offset untrustworthy.
func ReadEnvelope(r *bufio.Reader) (Envelope, error) {
	raw, err := scanValue(r)
	if err != nil {
		return Envelope{}, err
	}

	v, n, err := value.Read(raw)
	if err != nil {
		return Envelope{}, err
	}

	if n != len(raw) || v.Kind != format.KindMap {
		return Envelope{}, errs.New(errs.KindProtocol, "envelope must be a map")
	}

	env := Envelope{}

	for _, e := range v.Map {
		switch e.Key {
		case "name":
			env.Name = e.Value.Str
		case "database":
			env.Database = e.Value.Str
		case "table":
			env.Table = e.Value.Str
		case "data":
			if e.Value.Kind == format.KindMap {
				env.Data = e.Value.Map
			}
		}
	}

	if env.Name == "" {
		return Envelope{}, errs.New(errs.KindProtocol, "envelope missing required field: name")
	}

	return env, nil
}

// WriteEnvelope writes env's wire encoding to w, used by the multi
// processor and by clients/tests that need to produce request bytes.
func WriteEnvelope(w io.Writer, env Envelope) error {
	v := value.Map([]value.MapEntry{
		{Key: "name", Value: value.String(env.Name)},
		{Key: "database", Value: value.String(env.Database)},
		{Key: "table", Value: value.String(env.Table)},
		{Key: "data", Value: value.Map(env.Data)},
	})

	_, err := w.Write(value.Write(nil, v))

	return err
}

// scanValue reads exactly the bytes of one self-delimiting value off r,
// mirroring value.Read's own framing decisions but operating on a stream
// instead of an in-memory slice (the envelope's total length isn't known
// ahead of a read). The returned slice is handed to value.Read itself, so
// the wire-format logic lives in exactly one place.
func scanValue(r *bufio.Reader) ([]byte, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	buf := []byte{kindByte}

	switch format.ValueKind(kindByte) {
	case format.KindNil, format.KindBoolTrue, format.KindBoolFalse:
		return buf, nil
	case format.KindUint, format.KindInt, format.KindDouble:
		return readN(r, buf, 8)
	case format.KindString:
		buf, err = readN(r, buf, 4)
		if err != nil {
			return nil, err
		}

		return readN(r, buf, int(engine.Uint32(buf[len(buf)-4:])))
	case format.KindMap:
		return scanMap(r, buf)
	default:
		return nil, errs.DecodeError(0, errs.ErrUnknownKind)
	}
}

func scanMap(r *bufio.Reader, buf []byte) ([]byte, error) {
	buf, err := readN(r, buf, 4)
	if err != nil {
		return nil, err
	}

	count := int(engine.Uint32(buf[len(buf)-4:]))

	for i := 0; i < count; i++ {
		buf, err = readN(r, buf, 4)
		if err != nil {
			return nil, err
		}

		keyLen := int(engine.Uint32(buf[len(buf)-4:]))

		buf, err = readN(r, buf, keyLen)
		if err != nil {
			return nil, err
		}

		valBuf, err := scanValue(r)
		if err == io.EOF {
			return nil, errs.DecodeError(len(buf), errs.ErrShortRead)
		}

		if err != nil {
			return nil, err
		}

		buf = append(buf, valBuf...)
	}

	return buf, nil
}

// readN appends exactly n more bytes read from r to buf.
func readN(r *bufio.Reader, buf []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.DecodeError(len(buf), errs.ErrMalformedLength)
	}

	tail := make([]byte, n)
	if _, err := io.ReadFull(r, tail); err != nil {
		return nil, errs.DecodeError(len(buf), errs.ErrShortRead)
	}

	return append(buf, tail...), nil
}
