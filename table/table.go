// Package table owns one table's catalogs and path/block store: the
// logical container for a property catalog, an action catalog, and a block
// store, created at first open and flushed on close.
package table

import (
	"os"
	"path/filepath"

	"github.com/skydb/sky/block"
	"github.com/skydb/sky/catalog"
	"github.com/skydb/sky/cursor"
	"github.com/skydb/sky/errs"
	"go.uber.org/zap"
)

// Table is a named, directory-backed event store: an action catalog, a
// property catalog, and a block store sharing one directory.
type Table struct {
	Name string

	dir        string
	actions    *catalog.ActionCatalog
	properties *catalog.PropertyCatalog
	store      *block.Store
	log        *zap.Logger
}

// Open opens (creating if necessary) the table named name under dataDir,
// with the given block Config. Catalog files and block files live in
// dataDir/name.
func Open(dataDir, name string, cfg block.Config, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "create table directory %s", dir)
	}

	actions, err := catalog.OpenActionCatalog(filepath.Join(dir, "actions.log"))
	if err != nil {
		return nil, err
	}

	properties, err := catalog.OpenPropertyCatalog(filepath.Join(dir, "properties.log"))
	if err != nil {
		_ = actions.Close()

		return nil, err
	}

	store, err := block.Open(dir, cfg, log)
	if err != nil {
		_ = actions.Close()
		_ = properties.Close()

		return nil, err
	}

	log.Info("table opened", zap.String("table", name), zap.String("dir", dir))

	return &Table{Name: name, dir: dir, actions: actions, properties: properties, store: store, log: log}, nil
}

// Close flushes and releases the table's catalog file handles. The block
// store itself has no open handles between writes (each block is opened,
// written, and closed per append), so only the catalogs need closing.
func (t *Table) Close() error {
	if err := t.actions.Close(); err != nil {
		return err
	}

	return t.properties.Close()
}

// Actions returns the table's action catalog.
func (t *Table) Actions() *catalog.ActionCatalog { return t.actions }

// Properties returns the table's property catalog.
func (t *Table) Properties() *catalog.PropertyCatalog { return t.properties }

// AddEvent inserts e into the block store.
func (t *Table) AddEvent(e block.Event) error {
	return t.store.Insert(e)
}

// Cursor opens a forward cursor over objectID's path, stitching head and
// continuation blocks transparently.
func (t *Table) Cursor(objectID uint64) *cursor.Cursor {
	return cursor.New(objectID, t.store)
}

// EventCount returns the total number of events recorded for objectID.
func (t *Table) EventCount(objectID uint64) int {
	return t.store.EventCount(objectID)
}
