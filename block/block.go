package block

import "sort"

// Block is one fixed-size on-disk page holding a contiguous, object-id
// ordered sequence of Paths. A Block is either a head block (owns an
// object-id range) or a spanned continuation block (ContinuesSeq != 0,
// holding the sole overflow path of one object originally owned by its
// head).
type Block struct {
	seq   uint32
	hdr   Header
	paths []Path // sorted by ObjectID
}

// findPathIndex returns the index of the Path for objectID, if present.
func (b *Block) findPathIndex(objectID uint64) (int, bool) {
	i := sort.Search(len(b.paths), func(i int) bool { return b.paths[i].ObjectID >= objectID })
	if i < len(b.paths) && b.paths[i].ObjectID == objectID {
		return i, true
	}

	return i, false
}

// insertEmptyPath inserts a new, empty Path for objectID at its sorted
// position and returns its index. Preserves invariant (ii): paths ordered
// by object_id.
func (b *Block) insertEmptyPath(objectID uint64) int {
	i, found := b.findPathIndex(objectID)
	if found {
		return i
	}

	b.paths = append(b.paths, Path{})
	copy(b.paths[i+1:], b.paths[i:])
	b.paths[i] = Path{ObjectID: objectID}

	return i
}

// encodedSize returns the block's logical (pre-compression) byte size:
// header plus every path's framed size. Block capacity is measured against
// this uncompressed size — compression is an at-rest disk optimization, not
// an input to the split decision.
func (b *Block) encodedSize() int {
	n := HeaderSize
	for _, p := range b.paths {
		n += p.size()
	}

	return n
}

// recomputeRange refreshes hdr's ObjectIDLo/Hi and MinTS/MaxTS from the
// current paths, maintaining block-ordering invariants after a split or
// path mutation.
func (b *Block) recomputeRange() {
	if len(b.paths) == 0 {
		return
	}

	b.hdr.ObjectIDLo = b.paths[0].ObjectID
	b.hdr.ObjectIDHi = b.paths[len(b.paths)-1].ObjectID

	first := true
	for _, p := range b.paths {
		if p.Count == 0 {
			continue
		}

		// Paths are timestamp-ordered, so the first event holds the path's
		// minimum timestamp.
		minTS := int64(engine.Uint64(p.Bytes[0:8]))

		if first {
			b.hdr.MinTS = minTS
			b.hdr.MaxTS = p.MaxTS
			first = false

			continue
		}

		if minTS < b.hdr.MinTS {
			b.hdr.MinTS = minTS
		}

		if p.MaxTS > b.hdr.MaxTS {
			b.hdr.MaxTS = p.MaxTS
		}
	}
}
