package engine

import (
	"time"

	"github.com/hailam/chessbot/internal/board"
)

// InfiniteTime is the clock value both sides get on "go infinite": 2^31 ms.
const InfiniteTime = time.Duration(1<<31) * time.Millisecond

// Limits contains the UCI time control parameters of a go command.
type Limits struct {
	Time     [2]time.Duration // wtime, btime (remaining time for each color)
	Inc      [2]time.Duration // winc, binc (increment per move)
	MoveTime time.Duration    // fixed time per move, informational
	Infinite bool             // search until stopped
}

// clocks returns the remaining time of each side for this turn. Infinite
// overrides whatever times were sent along with it.
func (l Limits) clocks() [2]time.Duration {
	if l.Infinite {
		return [2]time.Duration{InfiniteTime, InfiniteTime}
	}
	return l.Time
}

// turnClock holds the clocks of the turn in progress.
type turnClock struct {
	remaining [2]time.Duration
	start     time.Time
}

// reset starts a new turn with the given limits.
func (c *turnClock) reset(l Limits, now time.Time) {
	c.remaining = l.clocks()
	c.start = now
}

// left returns the remaining time of color c.
func (c *turnClock) left(col board.Color) time.Duration {
	if col > board.Black {
		return 0
	}
	return c.remaining[col]
}

// elapsed returns the time since the turn started, or zero before any turn.
func (c *turnClock) elapsed(now time.Time) time.Duration {
	if c.start.IsZero() {
		return 0
	}
	return now.Sub(c.start)
}
