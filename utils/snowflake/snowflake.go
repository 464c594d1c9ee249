// Package snowflake generates the int64 message ids. IDs from one generator
// are strictly increasing, which gives messages sent in the same instant a
// stable order.
package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is the custom epoch (January 1, 2024 00:00:00 UTC), in milliseconds.
	Epoch int64 = 1704067200000

	WorkerIDBits uint8 = 10
	SequenceBits uint8 = 12

	MaxWorkerID = -1 ^ (-1 << WorkerIDBits)

	workerIDShift  = SequenceBits
	timestampShift = SequenceBits + WorkerIDBits
	sequenceMask   = -1 ^ (-1 << SequenceBits)
)

var ErrInvalidWorkerID = errors.New("worker ID exceeds maximum value")

// Generator generates unique IDs using the Snowflake layout
// 41 bits timestamp | 10 bits worker | 12 bits sequence.
type Generator struct {
	mu       sync.Mutex
	workerID int64
	now      func() time.Time

	sequence      int64
	lastTimestamp int64
}

type Option func(*Generator)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator for workerID in [0, MaxWorkerID].
func NewGenerator(workerID int64, opts ...Option) (*Generator, error) {
	if workerID < 0 || workerID > MaxWorkerID {
		return nil, ErrInvalidWorkerID
	}
	g := &Generator{workerID: workerID, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NextID returns the next id. If the clock moves backwards the generator keeps
// counting from the last timestamp it issued, so ids never decrease.
func (g *Generator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := g.currentTimestamp()
	if timestamp < g.lastTimestamp {
		timestamp = g.lastTimestamp
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & sequenceMask
		// 序列号用尽，借用下一毫秒
		if g.sequence == 0 {
			timestamp++
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = timestamp

	return ((timestamp - Epoch) << timestampShift) | (g.workerID << workerIDShift) | g.sequence
}

func (g *Generator) currentTimestamp() int64 {
	return g.now().UnixMilli()
}

// Timestamp extracts the generation time from an id.
func Timestamp(id int64) time.Time {
	return time.UnixMilli((id >> timestampShift) + Epoch).UTC()
}

// WorkerID extracts the worker id from an id.
func WorkerID(id int64) int64 {
	return (id >> workerIDShift) & MaxWorkerID
}

// Sequence extracts the per-millisecond sequence from an id.
func Sequence(id int64) int64 {
	return id & sequenceMask
}
