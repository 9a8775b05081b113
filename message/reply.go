package message

import (
	"io"

	"github.com/skydb/sky/value"
)

// Reply is the structured response shape: {"status": "ok"|"error"} plus
// processor-specific fields, or a "message" string on error.
type Reply struct {
	Status  string
	Message string
	Fields  []value.MapEntry
}

// OK builds a successful reply carrying the given processor-specific
// fields.
func OK(fields ...value.MapEntry) Reply {
	return Reply{Status: "ok", Fields: fields}
}

// Err builds an error reply from err. Clients must not parse Message; it
// exists for operators and logs.
func Err(err error) Reply {
	return Reply{Status: "error", Message: err.Error()}
}

func (r Reply) value() value.Value {
	entries := make([]value.MapEntry, 0, 2+len(r.Fields))
	entries = append(entries, value.MapEntry{Key: "status", Value: value.String(r.Status)})

	if r.Status == "error" {
		entries = append(entries, value.MapEntry{Key: "message", Value: value.String(r.Message)})
	}

	entries = append(entries, r.Fields...)

	return value.Map(entries)
}

// WriteReply writes r's wire encoding to w.
func WriteReply(w io.Writer, r Reply) error {
	_, err := w.Write(value.Write(nil, r.value()))

	return err
}
