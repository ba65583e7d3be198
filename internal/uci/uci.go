// Package uci implements the line protocol that drives the engine: it reads
// one command per line, updates the shared position and issues turn permits.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
)

// ErrQuit is returned by Run when the quit command is received.
var ErrQuit = errors.New("uci: quit")

// Option configures a UCI handler.
type Option func(*UCI)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Interface) Option {
	return func(u *UCI) {
		u.log = l
	}
}

// WithID sets the name and author reported by the uci command.
func WithID(name, author string) Option {
	return func(u *UCI) {
		u.name = name
		u.author = author
	}
}

// WithPerftCache sets the node-count cache used by the perft command.
func WithPerftCache(c board.PerftCache) Option {
	return func(u *UCI) {
		u.cache = c
	}
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	in     io.Reader
	log    log.Interface

	name   string
	author string
	cache  board.PerftCache
}

// New creates a new UCI protocol handler reading commands from in. Responses
// go through the engine so they never interleave with the bot's output.
func New(eng *engine.Engine, in io.Reader, opts ...Option) *UCI {
	u := &UCI{
		engine: eng,
		in:     in,
		log:    &log.Logger{Handler: discard.Default, Level: log.InfoLevel},
		name:   "chessbot",
		author: "chessbot authors",
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run reads commands until the input ends or quit is received. It returns
// ErrQuit on quit, nil at the end of input and the read error otherwise.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.engine.Send("readyok")
		case "ucinewgame":
			u.engine.NewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			if err := u.handleGo(args); err != nil {
				return err
			}
		case "stop":
			// Turns cannot be interrupted; the bot finishes on its own.
			u.log.Debug("stop ignored")
		case "quit":
			return ErrQuit
		// Debug commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		default:
			u.log.WithField("cmd", cmd).Debug("unknown command")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("uci: read: %w", err)
	}
	return nil
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.engine.Send("id name %s", u.name)
	u.engine.Send("id author %s", u.author)
	u.engine.Send("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// Moves are applied without checking them against the legal move list. An
// unparsable FEN drops the command; an unparsable move drops it and every
// move after it.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	// Find "moves" keyword
	setupEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			setupEnd, moveStart = i, i+1
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		fenStr := strings.Join(args[1:setupEnd], " ")
		var err error
		pos, err = board.ParseFEN(fenStr)
		if err != nil {
			u.log.WithError(err).WithField("fen", fenStr).Warn("invalid position")
			return
		}
	default:
		u.log.WithField("arg", args[0]).Warn("invalid position")
		return
	}

	last := board.NoMove
	for _, moveStr := range args[moveStart:] {
		move, err := board.ParseMove(moveStr, pos)
		if err != nil {
			u.log.WithError(err).WithField("move", moveStr).Warn("invalid move")
			break
		}
		pos.MakeMove(move)
		last = pos.LastMove()
	}

	u.engine.SetPosition(pos, last)
}

// parseGoOptions parses "go" command arguments. Unknown tokens are skipped.
func parseGoOptions(args []string) engine.Limits {
	var limits engine.Limits

	millis := func(i int) time.Duration {
		if i >= len(args) {
			return 0
		}
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "wtime":
			limits.Time[board.White] = millis(i + 1)
			i++
		case "btime":
			limits.Time[board.Black] = millis(i + 1)
			i++
		case "winc":
			limits.Inc[board.White] = millis(i + 1)
			i++
		case "binc":
			limits.Inc[board.Black] = millis(i + 1)
			i++
		case "movetime":
			limits.MoveTime = millis(i + 1)
			i++
		}
	}

	return limits
}

// handleGo records the clocks and hands the turn to the bot. It blocks while
// the previous turn is still running.
func (u *UCI) handleGo(args []string) error {
	limits := parseGoOptions(args)
	if err := u.engine.Go(limits); err != nil {
		return fmt.Errorf("uci: go: %w", err)
	}
	return nil
}

// handleDisplay prints the current position.
func (u *UCI) handleDisplay() {
	pos := u.engine.Board()
	for _, line := range strings.Split(strings.TrimSpace(pos.String()), "\n") {
		u.engine.Send("%s", line)
	}
	u.engine.Send("Fen: %s", pos.ToFEN())
	u.engine.Send("Checkers: %s", strings.Join(squareNames(pos.Checkers()), " "))
}

func squareNames(b board.Bitboard) []string {
	var names []string
	for _, sq := range b.Squares() {
		names = append(names, sq.String())
	}
	return names
}

// handlePerft runs a perft test, printing the count below every root move.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.log.WithField("depth", args[0]).Warn("invalid perft depth")
			return
		}
		depth = d
	}

	pos := u.engine.Board()
	start := time.Now()
	divide := board.Divide(pos, depth, u.cache, nil)
	elapsed := time.Since(start)

	moves := maps.Keys(divide)
	slices.Sort(moves)

	var nodes uint64
	for _, m := range moves {
		u.engine.Send("%s: %d", m, divide[m])
		nodes += divide[m]
	}

	u.engine.Send("")
	u.engine.Send("Nodes: %d", nodes)
	u.engine.Send("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.engine.Send("NPS: %.0f", nps)
	}
}
