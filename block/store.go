package block

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/skydb/sky/compress"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
	"github.com/skydb/sky/internal/checksum"
	"github.com/skydb/sky/internal/options"
	"github.com/skydb/sky/internal/pool"
	"go.uber.org/zap"
)

// blockBufferPool recycles the scratch buffers writeBlock encodes a block's
// paths into, avoiding one allocation per write on the hot insert path.
var blockBufferPool = pool.NewByteBufferPool(int(DefaultBlockSize), int(DefaultBlockSize)*4)

// DefaultBlockSize is used when a Config is constructed with a zero
// BlockSize.
const DefaultBlockSize uint32 = 64 * 1024

// Config controls a Store's block layout.
type Config struct {
	// BlockSize bounds the uncompressed byte size of a block's header plus
	// payload. Capacity is checked against this logical size,
	// not the post-compression on-disk footprint.
	BlockSize uint32
	// Compression names the codec applied to a block's payload before it is
	// written to disk.
	Compression format.CompressionType
}

// DefaultConfig returns the Config a new table is created with absent
// explicit overrides.
func DefaultConfig() Config {
	return Config{BlockSize: DefaultBlockSize, Compression: format.CompressionNone}
}

// Option configures a Config via NewConfig.
type Option = options.Option[*Config]

// WithBlockSize overrides the Config's BlockSize.
func WithBlockSize(size uint32) Option {
	return options.NoError(func(c *Config) { c.BlockSize = size })
}

// WithCompression overrides the Config's Compression codec.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *Config) { c.Compression = ct })
}

// NewConfig builds a Config starting from DefaultConfig and applying opts in
// order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	_ = options.Apply(&cfg, opts...)

	return cfg
}

func (c Config) blockSize() int {
	if c.BlockSize == 0 {
		return int(DefaultBlockSize)
	}

	return int(c.BlockSize)
}

// group is one head block plus its ordered spanned continuation blocks: the
// unit a single object's overflowing path belongs to.
type group struct {
	mu               sync.RWMutex
	head             *Block
	continuations    []*Block
	overflowObjectID uint64 // 0 (with no continuations) means "none yet"
}

// Store manages a table's on-disk blocks: object-id-ranged groups of head
// and continuation Blocks, insertion with overflow splitting, and
// checksum-verified crash recovery.
type Store struct {
	dir     string
	config  Config
	codec   compress.Codec
	log     *zap.Logger
	structMu sync.RWMutex // guards the groups slice's structure (not block contents)
	groups  []*group      // sorted by head.hdr.ObjectIDLo
	nextSeq uint32
}

// Open loads (or creates) the block store rooted at dir/blocks, replaying
// every block file in sequence order and truncating at the first one that
// fails to parse or checksum: recovery discards a truncated tail, it never
// refuses to start.
func Open(dir string, config Config, log *zap.Logger) (*Store, error) {
	if config.BlockSize == 0 {
		config.BlockSize = DefaultBlockSize
	}

	if log == nil {
		log = zap.NewNop()
	}

	blocksDir := filepath.Join(dir, "blocks")
	if err := os.MkdirAll(blocksDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "create blocks directory %s", blocksDir)
	}

	codec, err := compress.GetCodec(config.Compression)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "resolve compression codec")
	}

	s := &Store{dir: dir, config: config, codec: codec, log: log, nextSeq: 1}
	if err := s.recover(blocksDir); err != nil {
		return nil, err
	}

	sort.Slice(s.groups, func(i, j int) bool { return s.groups[i].head.hdr.ObjectIDLo < s.groups[j].head.hdr.ObjectIDLo })

	return s, nil
}

func (s *Store) blocksDir() string { return filepath.Join(s.dir, "blocks") }

func (s *Store) blockFilePath(seq uint32) string {
	return filepath.Join(s.blocksDir(), fmt.Sprintf("%08d.blk", seq))
}

// recover sequentially loads every block file in ascending sequence order.
// The first file that is short, fails header parsing, or fails checksum
// verification is deleted along with every later file: a crash that left a
// partially-written last block truncates back to the last good one rather
// than refusing to start.
func (s *Store) recover(blocksDir string) error {
	entries, err := os.ReadDir(blocksDir)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "list blocks directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".blk" {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	loaded := make(map[uint32]*Block)

	for i, name := range names {
		blk, err := s.loadBlockFile(filepath.Join(blocksDir, name))
		if err != nil {
			s.log.Warn("truncating block log at first invalid block", zap.String("file", name), zap.Error(err))

			return s.truncateFrom(blocksDir, names[i:])
		}

		loaded[blk.seq] = blk

		if blk.seq >= s.nextSeq {
			s.nextSeq = blk.seq + 1
		}
	}

	return s.rebuildGroups(loaded)
}

// truncateFrom removes every file named in bad (the first invalid block and
// everything after it on disk) so the store starts clean from the last
// known-good prefix.
func (s *Store) truncateFrom(blocksDir string, bad []string) error {
	for _, name := range bad {
		if err := os.Remove(filepath.Join(blocksDir, name)); err != nil && !os.IsNotExist(err) {
			return errs.Wrap(errs.KindIO, err, "remove truncated block %s", name)
		}
	}

	return nil
}

// rebuildGroups reassembles groups from the flat set of loaded blocks using
// each block's ContinuesSeq, then recomputes each group's overflowObjectID.
func (s *Store) rebuildGroups(loaded map[uint32]*Block) error {
	heads := make([]*Block, 0, len(loaded))

	for _, blk := range loaded {
		if blk.hdr.ContinuesSeq == 0 {
			heads = append(heads, blk)
		}
	}

	byHead := make(map[uint32]*group, len(heads))

	for _, h := range heads {
		g := &group{head: h}
		byHead[h.seq] = g
		s.groups = append(s.groups, g)
	}

	// Continuations must be attached in seq order so the chain is ordered
	// oldest-first regardless of directory listing order.
	conts := make([]*Block, 0, len(loaded)-len(heads))

	for _, blk := range loaded {
		if blk.hdr.ContinuesSeq != 0 {
			conts = append(conts, blk)
		}
	}

	sort.Slice(conts, func(i, j int) bool { return conts[i].seq < conts[j].seq })

	for _, c := range conts {
		g, ok := byHead[c.hdr.ContinuesSeq]
		if !ok {
			return errs.New(errs.KindCorruption, "continuation block %d references missing head %d", c.seq, c.hdr.ContinuesSeq)
		}

		g.continuations = append(g.continuations, c)
		g.overflowObjectID = c.hdr.ObjectIDLo
	}

	return nil
}

// loadBlockFile reads, verifies, and decodes one block file from disk.
func (s *Store) loadBlockFile(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "read block file")
	}

	if len(data) < HeaderSize {
		return nil, errs.New(errs.KindCorruption, "block file shorter than header")
	}

	hdr, err := ParseHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if checksum.Sum(payload) != hdr.Checksum {
		return nil, errs.New(errs.KindCorruption, "checksum mismatch")
	}

	codec, err := compress.GetCodec(hdr.Compression)
	if err != nil {
		return nil, errs.Wrap(errs.KindCorruption, err, "unknown block compression")
	}

	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, errs.Wrap(errs.KindCorruption, err, "decompress block payload")
	}

	base := filepath.Base(path)

	var seq uint32
	if _, err := fmt.Sscanf(base, "%08d.blk", &seq); err != nil {
		return nil, errs.Wrap(errs.KindCorruption, err, "parse block sequence from filename")
	}

	paths, err := decodePaths(raw)
	if err != nil {
		return nil, err
	}

	return &Block{seq: seq, hdr: hdr, paths: paths}, nil
}

func decodePaths(raw []byte) ([]Path, error) {
	var paths []Path

	off := 0
	for off < len(raw) {
		p, n, err := decodePath(raw[off:])
		if err != nil {
			return nil, err
		}

		paths = append(paths, p)
		off += n
	}

	return paths, nil
}

// writeBlock persists blk to its numbered file, fully synced before
// returning: a block is either completely on disk or not present at all.
func (s *Store) writeBlock(blk *Block) error {
	bb := blockBufferPool.Get()
	defer blockBufferPool.Put(bb)

	bb.Grow(blk.encodedSize())
	for _, p := range blk.paths {
		bb.B = encodePath(bb.B, p)
	}

	compressed, err := s.codec.Compress(bb.Bytes())
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "compress block %d", blk.seq)
	}

	blk.hdr.Compression = s.config.Compression
	blk.hdr.Checksum = checksum.Sum(compressed)
	blk.hdr.Version = Version

	f, err := os.OpenFile(s.blockFilePath(blk.seq), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "open block %d for write", blk.seq)
	}
	defer f.Close()

	if _, err := f.Write(blk.hdr.Bytes()); err != nil {
		return errs.Wrap(errs.KindIO, err, "write block %d header", blk.seq)
	}

	if _, err := f.Write(compressed); err != nil {
		return errs.Wrap(errs.KindIO, err, "write block %d payload", blk.seq)
	}

	if err := f.Sync(); err != nil {
		return errs.Wrap(errs.KindIO, err, "fsync block %d", blk.seq)
	}

	return nil
}

// findGroupLocked returns the group whose object-id range contains o, and
// the index at which a new group for o would be inserted if none is found.
// Callers must hold structMu.
func (s *Store) findGroupLocked(o uint64) (*group, int) {
	i := sort.Search(len(s.groups), func(i int) bool { return s.groups[i].head.hdr.ObjectIDLo > o })
	if i > 0 {
		g := s.groups[i-1]
		if o <= g.head.hdr.ObjectIDHi {
			return g, i - 1
		}
	}

	return nil, i
}

// Insert adds e to its object's path, creating a new block group if e's
// object_id falls outside every existing group's range, and splitting
// blocks as needed to keep every block within the configured size.
func (s *Store) Insert(e Event) error {
	s.structMu.Lock()
	defer s.structMu.Unlock()

	g, idx := s.findGroupLocked(e.ObjectID)
	if g == nil {
		blk := &Block{seq: s.nextSeq, hdr: Header{ObjectIDLo: e.ObjectID, ObjectIDHi: e.ObjectID}}
		s.nextSeq++
		g = &group{head: blk}

		s.groups = append(s.groups, nil)
		copy(s.groups[idx+1:], s.groups[idx:])
		s.groups[idx] = g
	}

	if err := s.insertIntoGroup(g, e); err != nil {
		return err
	}

	return nil
}

func (s *Store) insertIntoGroup(g *group, e Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	target := g.head
	if len(g.continuations) > 0 && g.overflowObjectID == e.ObjectID {
		target = g.continuations[len(g.continuations)-1]
	}

	pi, found := target.findPathIndex(e.ObjectID)
	if !found {
		if target != g.head {
			return errs.New(errs.KindIO, "continuation block missing its own object's path")
		}

		pi = target.insertEmptyPath(e.ObjectID)
	}

	if err := target.paths[pi].insertSorted(e); err != nil {
		return err
	}

	target.recomputeRange()

	if err := s.enforceCapacity(g, target, e.ObjectID); err != nil {
		return err
	}

	if err := s.writeBlock(g.head); err != nil {
		return err
	}

	for _, c := range g.continuations {
		if err := s.writeBlock(c); err != nil {
			return err
		}
	}

	return nil
}

// enforceCapacity splits blk (and, recursively, whatever new blocks the
// split produces) until every resulting block fits within the configured
// block size.
func (s *Store) enforceCapacity(g *group, blk *Block, objectID uint64) error {
	for blk.encodedSize() > s.config.blockSize() {
		if len(blk.paths) > 1 {
			g2 := s.splitMultiObject(g, blk)

			if err := s.enforceCapacity(g, blk, objectID); err != nil {
				return err
			}

			return s.enforceCapacity(g2, g2.head, 0)
		}

		if blk.paths[0].Count <= 1 {
			return errs.New(errs.KindIO, "event for object %d exceeds the configured block size", blk.paths[0].ObjectID)
		}

		cont, err := s.splitSingleObject(g, blk)
		if err != nil {
			return err
		}

		if err := s.enforceCapacity(g, blk, objectID); err != nil {
			return err
		}

		return s.enforceCapacity(g, cont, objectID)
	}

	return nil
}

// splitMultiObject splits a multi-path block at the object-id boundary that
// minimizes the byte-size difference between the two halves, never cutting
// inside one object's path — balancing the split rather than always cutting
// at a fixed midpoint. The original blk keeps the first half in place; the
// returned group owns a new head block holding the second half.
func (s *Store) splitMultiObject(g *group, blk *Block) *group {
	total := 0
	sizes := make([]int, len(blk.paths))

	for i, p := range blk.paths {
		sizes[i] = p.size()
		total += sizes[i]
	}

	best, bestDiff := 1, total
	running := 0

	for i := 0; i < len(blk.paths)-1; i++ {
		running += sizes[i]
		diff := abs(running - (total - running))

		if diff < bestDiff {
			bestDiff = diff
			best = i + 1
		}
	}

	second := append([]Path(nil), blk.paths[best:]...)
	blk.paths = blk.paths[:best]
	blk.recomputeRange()

	blk2 := &Block{seq: s.nextSeq, hdr: Header{}, paths: second}
	s.nextSeq++
	blk2.recomputeRange()

	g2 := &group{head: blk2}

	// Whichever group now owns the overflow object keeps its continuations.
	if g.overflowObjectID != 0 && g.overflowObjectID >= blk2.hdr.ObjectIDLo && g.overflowObjectID <= blk2.hdr.ObjectIDHi {
		g2.continuations = g.continuations
		g2.overflowObjectID = g.overflowObjectID
		g.continuations = nil
		g.overflowObjectID = 0

		for _, c := range g2.continuations {
			c.hdr.ContinuesSeq = blk2.seq
		}
	}

	idx := sort.Search(len(s.groups), func(i int) bool { return s.groups[i].head.hdr.ObjectIDLo > blk2.hdr.ObjectIDLo })
	s.groups = append(s.groups, nil)
	copy(s.groups[idx+1:], s.groups[idx:])
	s.groups[idx] = g2

	return g2
}

// splitSingleObject halves an overflowing single-object block's events
// between itself and a new spanned continuation block.
func (s *Store) splitSingleObject(g *group, blk *Block) (*Block, error) {
	events, err := blk.paths[0].decodeEvents()
	if err != nil {
		return nil, err
	}

	mid := len(events) / 2
	objectID := blk.paths[0].ObjectID

	blk.paths[0].rebuildFrom(events[:mid])
	blk.recomputeRange()

	cont := &Block{
		seq: s.nextSeq,
		hdr: Header{
			Spanning:     true,
			ObjectIDLo:   objectID,
			ObjectIDHi:   objectID,
			ContinuesSeq: g.head.seq,
		},
		paths: []Path{{ObjectID: objectID}},
	}
	s.nextSeq++
	cont.paths[0].rebuildFrom(events[mid:])
	cont.recomputeRange()

	g.continuations = append(g.continuations, cont)
	g.overflowObjectID = objectID

	return cont, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// PathBuffersFor returns the ordered (head-then-continuations) path byte
// buffers for objectID, for the cursor to walk, along with a release
// function the caller must invoke once done reading. A cursor holds only a
// read lock on the blocks it touches, never the whole store.
func (s *Store) PathBuffersFor(objectID uint64) ([][]byte, func()) {
	s.structMu.RLock()

	g, _ := s.findGroupLocked(objectID)
	if g == nil {
		s.structMu.RUnlock()

		return nil, func() {}
	}

	g.mu.RLock()
	s.structMu.RUnlock()

	release := func() {
		g.mu.RUnlock()
	}

	var bufs [][]byte

	if pi, ok := g.head.findPathIndex(objectID); ok {
		bufs = append(bufs, g.head.paths[pi].Bytes)
	}

	if g.overflowObjectID == objectID {
		for _, c := range g.continuations {
			if pi, ok := c.findPathIndex(objectID); ok {
				bufs = append(bufs, c.paths[pi].Bytes)
			}
		}
	}

	return bufs, release
}

// EventCount returns the total number of events recorded for objectID
// across its head and continuation blocks, using the in-memory summary
// rather than a full cursor traversal.
func (s *Store) EventCount(objectID uint64) int {
	s.structMu.RLock()
	defer s.structMu.RUnlock()

	g, _ := s.findGroupLocked(objectID)
	if g == nil {
		return 0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	total := 0

	if pi, ok := g.head.findPathIndex(objectID); ok {
		total += g.head.paths[pi].Count
	}

	if g.overflowObjectID == objectID {
		for _, c := range g.continuations {
			if pi, ok := c.findPathIndex(objectID); ok {
				total += c.paths[pi].Count
			}
		}
	}

	return total
}
