// Package sky provides a high-performance, self-contained embedded database
// for behavioral analytics: per-object event timelines, tagged with an
// action and a sparse set of typed properties, queried over a compact
// binary wire protocol.
//
// Sky is optimized for write-heavy event ingestion with many distinct
// object ids (users, devices, sessions) and relatively few events per
// object, providing fast range scans through fixed-size block storage and
// a cursor that transparently stitches spanned (overflowed) blocks into one
// logical timeline.
//
// # Core Features
//
//   - Append-only action/property catalogs with stable dense ids
//   - Fixed-size block storage with automatic spanning for oversized paths
//   - Forward cursor over an object's full event timeline, spans included
//   - Self-describing MessagePack-shaped binary wire protocol
//   - Optional payload compression (None, Zstd, S2, LZ4)
//   - Crash recovery that truncates a trailing corrupt block on reopen
//
// # Basic Usage
//
// Opening a database and recording events directly (bypassing the network
// protocol, for embedding Sky inside another process):
//
//	import "github.com/skydb/sky"
//
//	mgr := sky.Open("/var/sky/data")
//	defer mgr.Close()
//
//	db, _ := mgr.Database("app")
//	tbl, _ := db.Table("users")
//
// Serving the binary protocol over TCP:
//
//	srv := sky.NewServer(mgr, logger)
//	srv.ListenAndServe(fmt.Sprintf(":%d", sky.DefaultPort))
//
// # Package Structure
//
// This package is a thin top-level convenience wrapper around database,
// table, block, and server. For fine-grained control over block size,
// compression, or the wire protocol, use those packages directly.
package sky

import (
	"github.com/skydb/sky/block"
	"github.com/skydb/sky/database"
	"github.com/skydb/sky/message"
	"github.com/skydb/sky/processor"
	"github.com/skydb/sky/server"
	"go.uber.org/zap"
)

// DefaultPort is Sky's default TCP listen port.
const DefaultPort = server.DefaultPort

// DefaultBlockSize is the block size new databases use when no Config is
// given explicitly.
const DefaultBlockSize = block.DefaultBlockSize

// Config controls block storage layout: block size and payload compression.
type Config = block.Config

// DefaultConfig returns the default block Config (64 KiB blocks, no
// compression).
func DefaultConfig() Config {
	return block.DefaultConfig()
}

// Manager is a server-wide registry of lazily-opened databases rooted at one
// directory on disk.
type Manager = database.Manager

// Open returns a Manager rooted at the directory dir, using DefaultConfig
// and a no-op logger. Nothing on disk is read or created until a database
// is first opened through the Manager; its directory is created then. Use
// OpenWith for control over block layout or logging.
func Open(dir string) *Manager {
	return database.NewManager(dir, DefaultConfig(), zap.NewNop())
}

// OpenWith opens dir as a Sky data root with an explicit block Config and
// logger. A nil logger behaves like zap.NewNop.
func OpenWith(dir string, cfg Config, log *zap.Logger) *Manager {
	return database.NewManager(dir, cfg, log)
}

// Server accepts connections speaking Sky's binary wire protocol and routes
// each request to the matching processor.
type Server = server.Server

// NewServer returns a Server dispatching requests against manager. A nil
// logger behaves like zap.NewNop.
func NewServer(manager *Manager, log *zap.Logger) *Server {
	return server.New(manager, log)
}

// Processors returns the full set of named request processors Sky ships
// with (add_event, add_action, get_action(s), add_property,
// get_property(ies), next_action, get_event_count). "multi" is handled by
// the dispatcher directly and is not part of this map.
func Processors() map[string]message.Processor {
	return processor.Registry()
}
