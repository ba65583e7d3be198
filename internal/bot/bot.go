// Package bot is a deliberately simple move chooser that plays through the
// engine's turn API. It mates in one when it can, prefers winning the most
// valuable piece with the least valuable attacker, steers clear of drawn
// positions and otherwise picks a random legal move.
package bot

import (
	"errors"
	"math/rand"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/engine"
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = better capture
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0},       // King can't be captured
}

// Move scores
const (
	mateScore      = 1000000
	promotionBase  = 100
	drawPenalty    = -1000
	hangingPenalty = -10
)

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Interface) Option {
	return func(b *Bot) {
		b.log = l
	}
}

// Bot chooses moves for the side to move.
type Bot struct {
	rng *rand.Rand
	log log.Interface
}

// New creates a bot whose random choices are driven by seed.
func New(seed int64, opts ...Option) *Bot {
	b := &Bot{
		rng: rand.New(rand.NewSource(seed)),
		log: &log.Logger{Handler: discard.Default, Level: log.InfoLevel},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Choose returns the move to play in pos, or NoMove if there is none.
// pos is used as scratch space and is restored before returning.
func (b *Bot) Choose(pos *board.Position) board.Move {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return board.NoMove
	}

	b.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	best, bestScore := moves[0], -mateScore
	for _, m := range moves {
		score := b.score(pos, m)
		if score >= mateScore {
			return m
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// score rates a single move by playing it on pos and taking it back.
func (b *Bot) score(pos *board.Position, m board.Move) int {
	attacker := pos.PieceOn(m.From).Type()
	victim := pos.PieceOn(m.To)

	score := 0
	if m.IsCapture() {
		victimType := board.Pawn // en passant
		if victim != board.NoPiece {
			victimType = victim.Type()
		}
		score += mvvLva[victimType][attacker]
	}
	if m.IsPromotion() {
		score += promotionBase + board.PieceValue[m.Promotion]/10
	}

	pos.MakeMove(m)
	defer pos.UndoMove()

	switch pos.GameState() {
	case board.GameCheckmate:
		return mateScore
	case board.GameStalemate:
		score += drawPenalty
	}

	// Moving a piece onto an attacked square without taking anything.
	if !m.IsCapture() && attacker != board.Pawn && pos.IsSquareAttacked(m.ToSquare(), pos.SideToMove) {
		score += hangingPenalty
	}

	return score
}

// Play runs the turn loop: wait for a permit, push a move, end the turn.
// It returns nil once the engine is closed.
func (b *Bot) Play(eng *engine.Engine) error {
	err := eng.WaitTurn()
	for err == nil {
		pos := eng.Board()
		m := b.Choose(pos)

		b.log.WithFields(log.Fields{
			"move":     m.String(),
			"time":     eng.TimeMillis(),
			"opponent": eng.OpponentMove().String(),
		}).Debug("chose move")

		if !m.IsNull() {
			eng.Push(m)
		}
		err = eng.Done()
	}

	if errors.Is(err, engine.ErrClosed) {
		return nil
	}
	return err
}
