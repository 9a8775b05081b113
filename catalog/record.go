package catalog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/skydb/sky/errs"
)

// Catalog files are append-only sequences of fixed-prefix records:
//
//	id uint32 (big-endian) | typeByte (1 byte) | nameLen uint16 (big-endian) | name bytes
//
// typeByte is unused (0) for action records and carries the property's
// declared format.ValueKind for property records.
var order = binary.BigEndian

func writeRecord(w io.Writer, id uint32, typeByte byte, name string) error {
	if len(name) > 0xFFFF {
		return fmt.Errorf("catalog: name too long: %d bytes", len(name))
	}

	buf := make([]byte, 4+1+2+len(name))
	order.PutUint32(buf[0:4], id)
	buf[4] = typeByte
	order.PutUint16(buf[5:7], uint16(len(name)))
	copy(buf[7:], name)

	_, err := w.Write(buf)

	return err
}

func readRecord(r *bufio.Reader) (id uint32, typeByte byte, name string, err error) {
	head := make([]byte, 7)
	if _, err = io.ReadFull(r, head); err != nil {
		return 0, 0, "", err
	}

	id = order.Uint32(head[0:4])
	typeByte = head[4]
	nameLen := order.Uint16(head[5:7])

	nameBuf := make([]byte, nameLen)
	if _, err = io.ReadFull(r, nameBuf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = errs.ErrShortRead
		}

		return 0, 0, "", err
	}

	return id, typeByte, string(nameBuf), nil
}
