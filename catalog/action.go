package catalog

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/skydb/sky/errs"
)

// Action is a named event type with a stable numeric id.
type Action struct {
	ID   uint32
	Name string
}

// ActionCatalog is the append-only registry of a table's actions.
type ActionCatalog struct {
	reg  registry[Action]
	file *os.File // nil for an in-memory-only catalog (tests, or a transient table)
}

// NewActionCatalog returns an empty, in-memory-only action catalog. Use
// OpenActionCatalog for a catalog backed by a table's actions.log file.
func NewActionCatalog() *ActionCatalog {
	return &ActionCatalog{reg: newRegistry[Action]()}
}

// OpenActionCatalog opens (creating if necessary) the action catalog file at
// path and replays it to rebuild the in-memory registry.
func OpenActionCatalog(path string) (*ActionCatalog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "open action catalog %s", path)
	}

	c := &ActionCatalog{reg: newRegistry[Action](), file: f}
	if err := c.replay(); err != nil {
		_ = f.Close()

		return nil, err
	}

	return c, nil
}

func (c *ActionCatalog) replay() error {
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindIO, err, "seek action catalog")
	}

	r := bufio.NewReader(c.file)

	for {
		id, _, name, err := readRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return errs.Wrap(errs.KindCorruption, err, "replay action catalog")
		}

		c.reg.append(name, Action{ID: id, Name: name})
	}

	return nil
}

// Add registers a new action. Errors if name is empty or already taken.
func (c *ActionCatalog) Add(name string) (Action, error) {
	if name == "" {
		return Action{}, errs.New(errs.KindConflict, "action name must not be empty")
	}

	if c.reg.has(name) {
		return Action{}, errs.New(errs.KindConflict, "action already registered: %s", name)
	}

	a := Action{ID: c.reg.nextID(), Name: name}

	if c.file != nil {
		if _, err := c.file.Seek(0, io.SeekEnd); err != nil {
			return Action{}, errs.Wrap(errs.KindIO, err, "seek action catalog")
		}

		if err := writeRecord(c.file, a.ID, 0, name); err != nil {
			return Action{}, errs.Wrap(errs.KindIO, err, "append action catalog")
		}

		if err := c.file.Sync(); err != nil {
			return Action{}, errs.Wrap(errs.KindIO, err, "sync action catalog")
		}
	}

	c.reg.append(name, a)

	return a, nil
}

// Get returns the action with the given id.
func (c *ActionCatalog) Get(id uint32) (Action, error) {
	a, ok := c.reg.getByID(id)
	if !ok {
		return Action{}, errs.New(errs.KindNotFound, "action not found: id=%d", id)
	}

	return a, nil
}

// FindByName returns the action with the given name.
func (c *ActionCatalog) FindByName(name string) (Action, error) {
	a, ok := c.reg.getByName(name)
	if !ok {
		return Action{}, errs.New(errs.KindNotFound, "action not found: %s", name)
	}

	return a, nil
}

// All returns the actions in id order.
func (c *ActionCatalog) All() []Action {
	return c.reg.all()
}

// Close closes the backing file, if any.
func (c *ActionCatalog) Close() error {
	if c.file == nil {
		return nil
	}

	return c.file.Close()
}
