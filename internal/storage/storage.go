package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/dgraph-io/badger/v4"
)

// Key prefixes
const (
	prefixNodes = 'n' // node count: prefix, hash (8 bytes), depth (1 byte)
	prefixRun   = 'r' // perft run record: prefix, depth, ':', FEN
)

// flushThreshold is the number of pending counts that triggers a write batch.
const flushThreshold = 4096

// Option configures a PerftCache.
type Option func(*PerftCache)

// WithLogger sets the logger used for cache and database diagnostics.
func WithLogger(l log.Interface) Option {
	return func(c *PerftCache) {
		c.log = l
	}
}

// PerftRun records a completed perft run.
type PerftRun struct {
	FEN      string        `json:"fen"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// PerftCache wraps BadgerDB as a node-count cache keyed by position hash and
// depth. Writes are buffered and flushed in batches.
type PerftCache struct {
	db  *badger.DB
	log log.Interface

	mu      sync.Mutex
	pending map[[9]byte]uint64
	hits    uint64
	misses  uint64
}

// Open opens the cache stored in dir, or an in-memory cache if dir is empty.
func Open(dir string, opts ...Option) (*PerftCache, error) {
	c := &PerftCache{
		log:     &log.Logger{Handler: discard.Default, Level: log.InfoLevel},
		pending: make(map[[9]byte]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}

	bopts := badger.DefaultOptions(dir)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts.Logger = badgerLogger{c.log}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", dir, err)
	}
	c.db = db
	return c, nil
}

// Close flushes pending counts and closes the database.
func (c *PerftCache) Close() error {
	if c.db == nil {
		return nil
	}
	flushErr := c.Flush()
	return errors.Join(flushErr, c.db.Close())
}

func nodesKey(hash uint64, depth int) [9]byte {
	var k [9]byte
	binary.BigEndian.PutUint64(k[:8], hash)
	k[8] = byte(depth)
	return k
}

func dbKey(k [9]byte) []byte {
	return append([]byte{prefixNodes}, k[:]...)
}

// Lookup returns the cached node count for a position hash and depth.
// Database errors are logged and reported as a miss.
func (c *PerftCache) Lookup(hash uint64, depth int) (uint64, bool) {
	k := nodesKey(hash, depth)

	c.mu.Lock()
	defer c.mu.Unlock()

	if nodes, ok := c.pending[k]; ok {
		c.hits++
		return nodes, true
	}

	var nodes uint64
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(k))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("storage: bad node count of %d bytes", len(val))
			}
			nodes = binary.BigEndian.Uint64(val)
			found = true
			return nil
		})
	})
	if err != nil {
		c.log.WithError(err).Warn("perft cache lookup failed")
		found = false
	}

	if found {
		c.hits++
	} else {
		c.misses++
	}
	return nodes, found
}

// Store records a node count. It is written on the next flush.
func (c *PerftCache) Store(hash uint64, depth int, nodes uint64) {
	c.mu.Lock()
	c.pending[nodesKey(hash, depth)] = nodes
	full := len(c.pending) >= flushThreshold
	c.mu.Unlock()

	if full {
		if err := c.Flush(); err != nil {
			c.log.WithError(err).Warn("perft cache flush failed")
		}
	}
}

// Flush writes every pending count to the database.
func (c *PerftCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for k, nodes := range c.pending {
		var val [8]byte
		binary.BigEndian.PutUint64(val[:], nodes)
		if err := wb.Set(dbKey(k), val[:]); err != nil {
			return fmt.Errorf("storage: flush: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("storage: flush: %w", err)
	}

	c.log.WithField("entries", len(c.pending)).Debug("perft cache flushed")
	c.pending = make(map[[9]byte]uint64)
	return nil
}

// Stats returns the number of cache hits and misses so far.
func (c *PerftCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func runKey(fen string, depth int) []byte {
	return []byte(string(rune(prefixRun)) + strconv.Itoa(depth) + ":" + fen)
}

// SaveRun saves the record of a completed run.
func (c *PerftCache) SaveRun(run *PerftRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run.FEN, run.Depth), data)
	})
}

// LoadRun loads the last recorded run for a FEN and depth. It returns nil if
// there is none.
func (c *PerftCache) LoadRun(fen string, depth int) (*PerftRun, error) {
	var run *PerftRun

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(fen, depth))
		if err == badger.ErrKeyNotFound {
			return nil // No previous run
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			run = &PerftRun{}
			return json.Unmarshal(val, run)
		})
	})

	return run, err
}

// badgerLogger routes badger's own logging through apex/log. Badger is
// chatty at info level, so its info output is demoted to debug.
type badgerLogger struct {
	log log.Interface
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}
