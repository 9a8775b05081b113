package database

import (
	"path/filepath"
	"sync"

	"github.com/skydb/sky/block"
	"go.uber.org/zap"
)

// Manager is the server-wide registry of Databases, each one a
// subdirectory of a single data directory, opened lazily by name. This is
// distinct from the per-connection dispatcher cache: a connection keeps its
// own last-used (database, table) pointer, never a process-wide one.
// Manager only deduplicates *opening* a database; it is not itself that
// last-used cache.
type Manager struct {
	rootDir string
	config  block.Config
	log     *zap.Logger

	mu   sync.Mutex
	dbs  map[string]*Database
}

// NewManager returns a Manager rooted at rootDir.
func NewManager(rootDir string, cfg block.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{rootDir: rootDir, config: cfg, log: log, dbs: make(map[string]*Database)}
}

// Database returns the named database, opening it on first reference.
func (m *Manager) Database(name string) (*Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.dbs[name]; ok {
		return db, nil
	}

	db, err := Open(name, filepath.Join(m.rootDir, name), m.config, m.log)
	if err != nil {
		return nil, err
	}

	m.dbs[name] = db

	return db, nil
}

// Close closes every database opened so far.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error

	for _, db := range m.dbs {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
