package catalog

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
)

// Property is a named, typed per-event attribute with a stable numeric id.
// Once created it is never re-typed.
type Property struct {
	ID       uint16
	Name     string
	DataType format.ValueKind
}

// PropertyCatalog is the append-only registry of a table's properties.
type PropertyCatalog struct {
	reg  registry[Property]
	file *os.File
}

// NewPropertyCatalog returns an empty, in-memory-only property catalog. Use
// OpenPropertyCatalog for a catalog backed by a table's properties.log file.
func NewPropertyCatalog() *PropertyCatalog {
	return &PropertyCatalog{reg: newRegistry[Property]()}
}

// OpenPropertyCatalog opens (creating if necessary) the property catalog
// file at path and replays it to rebuild the in-memory registry.
func OpenPropertyCatalog(path string) (*PropertyCatalog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "open property catalog %s", path)
	}

	c := &PropertyCatalog{reg: newRegistry[Property](), file: f}
	if err := c.replay(); err != nil {
		_ = f.Close()

		return nil, err
	}

	return c, nil
}

func (c *PropertyCatalog) replay() error {
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindIO, err, "seek property catalog")
	}

	r := bufio.NewReader(c.file)

	for {
		id, typeByte, name, err := readRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return errs.Wrap(errs.KindCorruption, err, "replay property catalog")
		}

		c.reg.append(name, Property{
			ID:       uint16(id),
			Name:     name,
			DataType: format.ValueKind(typeByte),
		})
	}

	return nil
}

// Add registers a new property with the given declared data type name
// ("string", "int", "double", or "boolean"). Errors if name is empty,
// already taken, or dataType is not one of the four supported names.
func (c *PropertyCatalog) Add(name, dataType string) (Property, error) {
	if name == "" {
		return Property{}, errs.New(errs.KindConflict, "property name must not be empty")
	}

	if c.reg.has(name) {
		return Property{}, errs.New(errs.KindConflict, "property already registered: %s", name)
	}

	kind, ok := format.ParseDataType(dataType)
	if !ok {
		return Property{}, errs.New(errs.KindSchema, "invalid property data type: %s", dataType)
	}

	p := Property{ID: uint16(c.reg.nextID()), Name: name, DataType: kind}

	if c.file != nil {
		if _, err := c.file.Seek(0, io.SeekEnd); err != nil {
			return Property{}, errs.Wrap(errs.KindIO, err, "seek property catalog")
		}

		if err := writeRecord(c.file, uint32(p.ID), byte(kind), name); err != nil {
			return Property{}, errs.Wrap(errs.KindIO, err, "append property catalog")
		}

		if err := c.file.Sync(); err != nil {
			return Property{}, errs.Wrap(errs.KindIO, err, "sync property catalog")
		}
	}

	c.reg.append(name, p)

	return p, nil
}

// Get returns the property with the given id.
func (c *PropertyCatalog) Get(id uint16) (Property, error) {
	p, ok := c.reg.getByID(uint32(id))
	if !ok {
		return Property{}, errs.New(errs.KindNotFound, "property not found: id=%d", id)
	}

	return p, nil
}

// FindByName returns the property with the given name.
func (c *PropertyCatalog) FindByName(name string) (Property, error) {
	p, ok := c.reg.getByName(name)
	if !ok {
		return Property{}, errs.New(errs.KindNotFound, "property not found: %s", name)
	}

	return p, nil
}

// All returns the properties in id order.
func (c *PropertyCatalog) All() []Property {
	return c.reg.all()
}

// Close closes the backing file, if any.
func (c *PropertyCatalog) Close() error {
	if c.file == nil {
		return nil
	}

	return c.file.Close()
}
