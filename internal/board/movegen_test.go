package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corpus holds positions that exercise castling, en passant, promotion,
// pins and checks.
var corpus = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	"4k3/8/8/2KpP3/8/8/8/8 w - d6 0 1",
	"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
}

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	require.NoError(t, err, fen)
	return pos
}

func moveStrings(moves []Move) []string {
	s := make([]string, len(moves))
	for i, m := range moves {
		s[i] = m.String()
	}
	return s
}

func movesFrom(moves []Move, sq Square) []Move {
	var out []Move
	for _, m := range moves {
		if m.FromSquare() == sq {
			out = append(out, m)
		}
	}
	return out
}

func TestStartingMoves(t *testing.T) {
	pos := NewPosition()
	assert.Len(t, pos.LegalMoves(), 20)

	m, err := ParseMove("e2e4", pos)
	require.NoError(t, err)
	pos.MakeMove(m)

	assert.Len(t, pos.LegalMoves(), 20)
	assert.Equal(t, E3, pos.EnPassant)
	assert.Equal(t, Black, pos.SideToMove)
}

func TestKingSideCastleGenerated(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")

	m, ok := pos.FindMove("e1g1")
	require.True(t, ok, "e1g1 missing from %v", moveStrings(pos.LegalMoves()))
	assert.True(t, m.IsCastle())
	assert.False(t, m.IsCapture())

	pos.MakeMove(m)
	assert.Equal(t, NewPiece(Rook, White), pos.PieceAt(F1))
	assert.Equal(t, NewPiece(King, White), pos.PieceAt(G1))
	assert.Equal(t, NoPiece, pos.PieceAt(H1))
	assert.False(t, pos.CanCastleKingSide(White))
}

func TestCastleBlockedByAttack(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want bool
	}{
		{"transit attacked", "4k3/8/8/8/8/8/5r2/4K2R w K - 0 1", "e1g1", false},
		{"in check", "4k3/8/8/8/8/8/8/r3K2R w K - 0 1", "e1g1", false},
		{"rook attacked only", "4k2r/8/8/8/8/8/8/4K2R w K - 0 1", "e1g1", true},
		{"queen side b-file attacked", "1r2k3/8/8/8/8/8/8/R3K3 w Q - 0 1", "e1c1", true},
		{"queen side b-file occupied", "4k3/8/8/8/8/8/8/RN2K3 w Q - 0 1", "e1c1", false},
		{"queen side d-file attacked", "3rk3/8/8/8/8/8/8/R3K3 w Q - 0 1", "e1c1", false},
		{"no right", "4k3/8/8/8/8/8/8/4K2R w - - 0 1", "e1g1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			_, ok := pos.FindMove(tc.move)
			assert.Equal(t, tc.want, ok, "%s in %v", tc.move, moveStrings(pos.LegalMoves()))
		})
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")

	m, ok := pos.FindMove("e5d6")
	require.True(t, ok)
	assert.True(t, m.IsCapture())

	pos.MakeMove(m)
	assert.Equal(t, NoPiece, pos.PieceAt(D5), "captured pawn removed")
	assert.Equal(t, NewPiece(Pawn, White), pos.PieceAt(D6))
	assert.Equal(t, NoSquare, pos.EnPassant)
	assert.Equal(t, 0, pos.HalfMoveClock)
}

func TestEnPassantEvadesCheck(t *testing.T) {
	// The pawn that just advanced gives check; capturing it en passant is legal.
	pos := mustParse(t, "8/8/8/2k5/3Pp3/8/8/4K3 b - d3 0 1")

	m, ok := pos.FindMove("e4d3")
	require.True(t, ok, "moves %v", moveStrings(pos.LegalMoves()))
	assert.True(t, m.IsCapture())
}

func TestFiftyMoveDraw(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/8/R3K3 w - - 49 40")
	assert.Equal(t, GameNormal, pos.GameState())

	m, ok := pos.FindMove("a1a7")
	require.True(t, ok)
	pos.MakeMove(m)

	assert.Equal(t, FiftyMoveLimit, pos.HalfMoveClock)
	assert.True(t, pos.IsFiftyMoveDraw())
	assert.Equal(t, GameStalemate, pos.GameState())
	assert.True(t, pos.IsDraw())
}

func TestPinnedBishop(t *testing.T) {
	pos := mustParse(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")

	assert.Empty(t, movesFrom(pos.LegalMoves(), E2))
	assert.NotEmpty(t, movesFrom(pos.LegalMoves(), E1))
}

func TestPinnedRookSlidesAlongPin(t *testing.T) {
	pos := mustParse(t, "4r1k1/8/8/8/8/8/4R3/4K3 w - - 0 1")

	got := moveStrings(movesFrom(pos.LegalMoves(), E2))
	assert.ElementsMatch(t, []string{"e2e3", "e2e4", "e2e5", "e2e6", "e2e7", "e2e8"}, got)
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Rook on e8 and knight on f3 both check the king on e1.
	pos := mustParse(t, "4r1k1/8/8/8/8/5n2/3Q4/4K3 w - - 0 1")

	require.Equal(t, 2, pos.Checkers().PopCount())
	for _, m := range pos.LegalMoves() {
		assert.Equal(t, E1, m.FromSquare(), "non-king move %s in double check", m)
	}
}

func TestSingleCheckBlockOrCapture(t *testing.T) {
	// Rook on e8 checks; the queen can block on e2..e7 or capture on e8.
	pos := mustParse(t, "4r1k1/8/8/8/8/8/8/Q3K3 w - - 0 1")

	got := moveStrings(movesFrom(pos.LegalMoves(), A1))
	assert.ElementsMatch(t, []string{"a1e5"}, got)
}

func TestPromotionExpands(t *testing.T) {
	pos := mustParse(t, "1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1")

	var push, capture []string
	for _, m := range movesFrom(pos.LegalMoves(), A7) {
		require.True(t, m.IsPromotion())
		if m.IsCapture() {
			capture = append(capture, m.String())
		} else {
			push = append(push, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"a7a8b", "a7a8n", "a7a8r", "a7a8q"}, push)
	assert.ElementsMatch(t, []string{"a7b8b", "a7b8n", "a7b8r", "a7b8q"}, capture)

	m, ok := pos.FindMove("a7b8n")
	require.True(t, ok)
	pos.MakeMove(m)
	assert.Equal(t, NewPiece(Knight, White), pos.PieceAt(B8))
	assert.Equal(t, Empty, pos.Pieces[White][Pawn])
	assert.Equal(t, Empty, pos.Pieces[Black][Knight])
}

func TestCastlingRightsLostOnRookCapture(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	m, ok := pos.FindMove("a1a8")
	require.True(t, ok)
	pos.MakeMove(m)

	assert.Equal(t, WhiteKingSideCastle|BlackKingSideCastle, pos.CastlingRights)
}

// withoutHistory copies the position state without its history stack, which
// may differ in capacity after an undo.
func withoutHistory(p *Position) Position {
	c := *p
	c.history = nil
	return c
}

// walk applies fn to every position reachable from pos within depth plies.
func walk(pos *Position, depth int, fn func(p *Position, m Move)) {
	if depth == 0 {
		return
	}
	for _, m := range pos.LegalMoves() {
		fn(pos, m)
		pos.MakeMove(m)
		walk(pos, depth-1, fn)
		pos.UndoMove()
	}
}

func TestMakeUndoRoundTrip(t *testing.T) {
	for _, fen := range corpus {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			walk(pos, 2, func(p *Position, m Move) {
				before := p.Clone()
				p.MakeMove(m)
				require.True(t, p.UndoMove())
				require.Equal(t, withoutHistory(before), withoutHistory(p), "make/undo %s", m)
				require.Equal(t, before.Ply(), p.Ply())
			})
			assert.Equal(t, 0, pos.Ply())
		})
	}
}

func TestIncrementalHash(t *testing.T) {
	for _, fen := range corpus {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			walk(pos, 3, func(p *Position, m Move) {
				p.MakeMove(m)
				require.Equal(t, p.ComputeHash(), p.Hash, "after %s", m)
				p.UndoMove()
			})
		})
	}
}

func TestHashDeterminism(t *testing.T) {
	a := mustParse(t, "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	b := mustParse(t, "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 12 30")
	assert.Equal(t, a.Hash, b.Hash, "clocks are not hashed")

	variants := []string{
		"r3k2r/8/8/3pP3/8/8/8/R3K2R b KQkq d6 0 1",
		"r3k2r/8/8/3pP3/8/8/8/R3K2R w Kkq d6 0 1",
		"r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq - 0 1",
		"r3k2r/8/8/3pP3/8/8/8/R2K3R w kq d6 0 1",
	}
	for _, fen := range variants {
		assert.NotEqual(t, a.Hash, mustParse(t, fen).Hash, fen)
	}

	// Transposition: two move orders reaching the same position.
	x, y := NewPosition(), NewPosition()
	for _, s := range []string{"g1f3", "g8f6", "b1c3"} {
		m, _ := x.FindMove(s)
		x.MakeMove(m)
	}
	for _, s := range []string{"b1c3", "g8f6", "g1f3"} {
		m, _ := y.FindMove(s)
		y.MakeMove(m)
	}
	assert.Equal(t, x.Hash, y.Hash)
}

func TestLegalityBoundary(t *testing.T) {
	for _, fen := range corpus {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			walk(pos, 2, func(p *Position, m Move) {
				mover := p.SideToMove
				p.MakeMove(m)
				assert.False(t, p.IsSquareAttacked(p.KingSquare(mover), mover.Other()),
					"%s leaves the %s king attacked in %s", m, mover, p.ToFEN())
				p.UndoMove()
			})
		})
	}
}

func TestCheckMatchesThreats(t *testing.T) {
	for _, fen := range corpus {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			walk(pos, 2, func(p *Position, m Move) {
				p.MakeMove(m)
				us := p.SideToMove
				assert.Equal(t, p.IsSquareAttacked(p.KingSquare(us), us.Other()), p.InCheck())
				assert.Equal(t, p.InCheck(), p.Checkers() != Empty)
				p.UndoMove()
			})
		})
	}
}

func TestThreefoldRepetition(t *testing.T) {
	pos := NewPosition()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	for i := 0; i < 2; i++ {
		for _, s := range shuffle {
			require.False(t, pos.IsThreefoldRepetition(), "before %s in round %d", s, i)
			m, ok := pos.FindMove(s)
			require.True(t, ok)
			pos.MakeMove(m)
		}
	}

	// The start position now occurs for the third time.
	assert.True(t, pos.IsThreefoldRepetition())
	assert.Equal(t, GameStalemate, pos.GameState())

	pos.UndoMove()
	assert.False(t, pos.IsThreefoldRepetition())
}

func TestNullMove(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	before := pos.Clone()

	pos.MakeNullMove()
	assert.Equal(t, Black, pos.SideToMove)
	assert.Equal(t, NoSquare, pos.EnPassant)
	assert.Equal(t, pos.ComputeHash(), pos.Hash)
	assert.True(t, pos.LastMove().IsNull())

	require.True(t, pos.UndoMove())
	assert.Equal(t, withoutHistory(before), withoutHistory(pos))
	assert.False(t, pos.UndoMove(), "nothing left to undo")
}

func TestInvalidMoveBecomesNullMove(t *testing.T) {
	pos := NewPosition()

	// e7 holds a black pawn, so white cannot move it.
	m, err := ParseMove("e7e5", pos)
	require.NoError(t, err)
	pos.MakeMove(m)

	assert.Equal(t, Black, pos.SideToMove)
	assert.Equal(t, NewPiece(Pawn, Black), pos.PieceAt(E7))
	assert.Equal(t, pos.ComputeHash(), pos.Hash)
}

func TestParseMoveErrors(t *testing.T) {
	pos := NewPosition()

	for _, s := range []string{"", "e2", "e2e", "e2e4qq", "z2e4", "e2e9", "e7e8k"} {
		_, err := ParseMove(s, pos)
		assert.ErrorIs(t, err, ErrInvalidMove, s)
	}
}
