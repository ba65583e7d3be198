// Package engine holds the state shared between the UCI protocol reader and
// the move-choosing side, and the turn handshake between them.
//
// The protocol side sets up positions and issues one permit per "go". The
// compute side waits for a permit, inspects a clone of the position, pushes
// candidate moves and ends its turn with Done, which blocks until the next
// permit.
package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/hailam/chessbot/internal/board"
)

var (
	// ErrClosed is returned by blocking calls once the engine is closed.
	ErrClosed = errors.New("engine: closed")

	// ErrNoTurn is returned by Done when no turn is in progress.
	ErrNoTurn = errors.New("engine: no turn in progress")
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Interface) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine is the explicit context shared by the protocol and the bot.
type Engine struct {
	log log.Interface
	now func() time.Time

	outMu sync.Mutex
	out   io.Writer

	mu           sync.Mutex
	pos          *board.Position
	clock        turnClock
	pushed       board.Move
	opponentMove board.Move
	active       bool

	// turn carries the permit for one turn. idle holds a token while no
	// turn is in progress.
	turn chan struct{}
	idle chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// New creates an engine at the starting position writing protocol output to out.
func New(out io.Writer, opts ...Option) *Engine {
	e := &Engine{
		log:          &log.Logger{Handler: discard.Default, Level: log.InfoLevel},
		now:          time.Now,
		out:          out,
		pos:          board.NewPosition(),
		pushed:       board.NoMove,
		opponentMove: board.NoMove,
		turn:         make(chan struct{}, 1),
		idle:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.idle <- struct{}{}
	return e
}

// Send writes one protocol line. Lines from different goroutines never interleave.
func (e *Engine) Send(format string, args ...any) {
	e.outMu.Lock()
	defer e.outMu.Unlock()

	if _, err := fmt.Fprintf(e.out, format+"\n", args...); err != nil {
		e.log.WithError(err).Error("write failed")
	}
}

// NewGame resets the shared position to the starting position.
func (e *Engine) NewGame() {
	e.SetPosition(board.NewPosition(), board.NoMove)
}

// SetPosition replaces the shared position. lastMove is the most recent move
// that led to it, which the bot sees as the opponent's move.
func (e *Engine) SetPosition(pos *board.Position, lastMove board.Move) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pos = pos
	e.opponentMove = lastMove
	e.log.WithFields(log.Fields{
		"fen":  pos.ToFEN(),
		"last": lastMove.String(),
	}).Debug("position set")
}

// Go records the clocks and issues one permit to the compute side. If a turn
// is still in progress it blocks until that turn ends.
func (e *Engine) Go(limits Limits) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}

	select {
	case <-e.idle:
	case <-e.done:
		return ErrClosed
	}

	e.mu.Lock()
	e.clock.reset(limits, e.now())
	e.pushed = board.NoMove
	e.active = true
	e.log.WithFields(log.Fields{
		"wtime":    e.clock.remaining[board.White].Milliseconds(),
		"btime":    e.clock.remaining[board.Black].Milliseconds(),
		"infinite": limits.Infinite,
	}).Debug("go")
	e.mu.Unlock()

	e.turn <- struct{}{}
	return nil
}

// WaitTurn blocks until a permit has been issued by Go.
func (e *Engine) WaitTurn() error {
	select {
	case <-e.turn:
		return nil
	case <-e.done:
		return ErrClosed
	}
}

// Board returns a private clone of the shared position.
func (e *Engine) Board() *board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos.Clone()
}

// Push records m as the move to play and reports it. It may be called any
// number of times per turn; the last call wins.
func (e *Engine) Push(m board.Move) {
	e.mu.Lock()
	e.pushed = m
	san := e.pos.SAN(m)
	e.mu.Unlock()

	e.log.WithFields(log.Fields{"move": m.String(), "san": san}).Debug("push")
	e.Send("info currmove %s", m)
}

// Done ends the turn: it reports the last pushed move, or 0000 if none was
// pushed, and then blocks until the next permit.
func (e *Engine) Done() error {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return ErrNoTurn
	}
	m := e.pushed
	e.active = false
	elapsed := e.clock.elapsed(e.now())
	e.mu.Unlock()

	e.log.WithField("move", m.String()).WithDuration(elapsed).Info("bestmove")
	e.Send("bestmove %s", m)
	e.idle <- struct{}{}

	return e.WaitTurn()
}

// TimeMillis returns the remaining time of the side to move.
func (e *Engine) TimeMillis() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.left(e.pos.SideToMove).Milliseconds()
}

// OpponentTimeMillis returns the remaining time of the side not to move.
func (e *Engine) OpponentTimeMillis() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.left(e.pos.SideToMove.Other()).Milliseconds()
}

// ElapsedMillis returns the time since the last go command.
func (e *Engine) ElapsedMillis() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.elapsed(e.now()).Milliseconds()
}

// OpponentMove returns the last move applied by the most recent position
// command, or NoMove.
func (e *Engine) OpponentMove() board.Move {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opponentMove
}

// Close unblocks every waiter. Blocking calls return ErrClosed afterwards.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
}
