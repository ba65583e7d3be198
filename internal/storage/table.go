package storage

import (
	"sync"
	"sync/atomic"
)

// Number of shards for table locking (power of 2 for fast modulo)
const tableShardCount = 256
const tableShardMask = tableShardCount - 1

// tableEntry holds one node count.
type tableEntry struct {
	Key   uint64 // Full 64-bit Zobrist hash for verification
	Nodes uint64
	Depth uint8 // 0 marks an empty slot
}

// Table is a fixed-size in-memory node-count cache. Each hash maps to one
// slot; deeper counts replace shallower ones.
type Table struct {
	entries []tableEntry
	shards  [tableShardCount]sync.RWMutex
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTable creates a table using about sizeMB megabytes.
func NewTable(sizeMB int) *Table {
	entrySize := uint64(24)
	numEntries := roundDownToPowerOf2((uint64(sizeMB) * 1024 * 1024) / entrySize)
	if numEntries == 0 {
		numEntries = 1
	}

	return &Table{
		entries: make([]tableEntry, numEntries),
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Lookup returns the node count stored for hash at exactly this depth.
func (t *Table) Lookup(hash uint64, depth int) (uint64, bool) {
	t.probes.Add(1)

	idx := hash & t.mask
	shard := &t.shards[idx&tableShardMask]

	shard.RLock()
	entry := t.entries[idx]
	shard.RUnlock()

	if entry.Depth != 0 && entry.Key == hash && int(entry.Depth) == depth {
		t.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store records a node count unless the slot holds a deeper one.
func (t *Table) Store(hash uint64, depth int, nodes uint64) {
	if depth <= 0 || depth > 255 {
		return
	}

	idx := hash & t.mask
	shard := &t.shards[idx&tableShardMask]

	shard.Lock()
	entry := &t.entries[idx]
	if entry.Depth == 0 || depth >= int(entry.Depth) {
		entry.Key = hash
		entry.Nodes = nodes
		entry.Depth = uint8(depth)
	}
	shard.Unlock()
}

// Clear empties the table and resets its statistics.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = tableEntry{}
	}
	t.hits.Store(0)
	t.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (t *Table) Size() uint64 {
	return uint64(len(t.entries))
}
