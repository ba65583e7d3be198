package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Test position: Back rank mate - already checkmate
	// White: Ka1, Ra8
	// Black: Kh8, pawns on g7 and h7 blocking escape
	// Black is already in checkmate (Black to move)
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(pos)
	t.Log("Checkers bitboard:", pos.Checkers())
	t.Log("InCheck:", pos.InCheck())

	blackMoves := pos.LegalMoves()
	t.Log("Black legal moves:", len(blackMoves))
	for _, m := range blackMoves {
		t.Log("  Move:", m)
	}

	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.GameState() != GameCheckmate {
		t.Errorf("GameState = %v, want checkmate", pos.GameState())
	}
	if pos.Checkers() != SquareBB(A8) {
		t.Errorf("Checkers = %x, want a8", uint64(pos.Checkers()))
	}
}

func TestNotCheckmate(t *testing.T) {
	// Test position: King CAN escape - not checkmate
	// Black king on h8, rook on g8 but king can take it
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Not checkmate position (king can capture rook):")
	t.Log(pos)

	blackMoves := pos.LegalMoves()
	t.Log("Black legal moves:", len(blackMoves))
	for _, m := range blackMoves {
		t.Log("  Move:", m)
	}

	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
	if _, ok := pos.FindMove("h8g8"); !ok {
		t.Error("Expected h8g8 to be legal")
	}
}

func TestSmotheredMate(t *testing.T) {
	// Knight check cannot be blocked; the king is boxed in by its own pieces.
	pos, err := ParseFEN("6rk/5Npp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.IsCheckmate() {
		t.Error("Expected smothered mate")
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.IsStalemate() {
		t.Error("Expected stalemate")
	}
	if pos.IsCheckmate() {
		t.Error("Stalemate reported as checkmate")
	}
	if pos.GameState() != GameStalemate || !pos.IsDraw() {
		t.Errorf("GameState = %v, want stalemate", pos.GameState())
	}
}
