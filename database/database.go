// Package database implements Sky's directory-backed container of Tables,
// opened lazily by name.
package database

import (
	"os"
	"sync"

	"github.com/skydb/sky/block"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/table"
	"go.uber.org/zap"
)

// Database is a directory of lazily-opened Tables, identified by name.
type Database struct {
	Name string

	dir    string
	config block.Config
	log    *zap.Logger

	mu     sync.Mutex
	tables map[string]*table.Table
}

// Open opens (creating if necessary) the database directory dir.
func Open(name, dir string, cfg block.Config, log *zap.Logger) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "create database directory %s", dir)
	}

	return &Database{Name: name, dir: dir, config: cfg, log: log, tables: make(map[string]*table.Table)}, nil
}

// Table returns the named table, opening it on first reference and
// reusing the already-open instance thereafter.
func (d *Database) Table(name string) (*table.Table, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.tables[name]; ok {
		return t, nil
	}

	t, err := table.Open(d.dir, name, d.config, d.log)
	if err != nil {
		return nil, err
	}

	d.tables[name] = t

	return t, nil
}

// Close closes every table opened so far.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var first error

	for _, t := range d.tables {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
