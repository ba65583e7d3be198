package board

// GameState classifies a position for the side to move. GameStalemate covers
// every drawn outcome, not only stalemate proper.
type GameState int8

const (
	GameCheckmate GameState = iota - 1
	GameNormal
	GameStalemate
)

// String returns the state name.
func (s GameState) String() string {
	switch s {
	case GameCheckmate:
		return "checkmate"
	case GameNormal:
		return "normal"
	case GameStalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// FiftyMoveLimit is the half-move clock value, in plies, at which the game
// is drawn.
const FiftyMoveLimit = 50

// GameState classifies the position: clock and repetition draws first, then
// checkmate or stalemate when no legal move exists.
func (p *Position) GameState() GameState {
	if p.IsFiftyMoveDraw() || p.IsThreefoldRepetition() {
		return GameStalemate
	}
	if p.HasLegalMoves() {
		return GameNormal
	}
	if p.InCheck() {
		return GameCheckmate
	}
	return GameStalemate
}

// IsFiftyMoveDraw returns true once the half-move clock reaches FiftyMoveLimit.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.HalfMoveClock >= FiftyMoveLimit
}

// IsThreefoldRepetition returns true if the current position, compared on
// placement, side to move, castling rights and en passant target, has
// occurred at least three times counting itself.
func (p *Position) IsThreefoldRepetition() bool {
	count := 1
	for i := len(p.history) - 1; i >= 0; i-- {
		if p.history[i].samePosition(p) {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is in check with no legal move.
func (p *Position) IsCheckmate() bool {
	return !p.HasLegalMoves() && p.InCheck()
}

// IsStalemate returns true if the side to move is not in check and has no legal move.
func (p *Position) IsStalemate() bool {
	return !p.HasLegalMoves() && !p.InCheck()
}

// IsDraw returns true for stalemate, the fifty-move rule and threefold repetition.
func (p *Position) IsDraw() bool {
	return p.GameState() == GameStalemate
}
