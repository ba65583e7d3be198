package board

import (
	"fmt"
	"strings"
)

// Move is a move as two single-square bitboards plus an optional promotion.
// The capture and castle flags are derived from the position the move was
// built against and cannot be set by callers.
type Move struct {
	From      Bitboard
	To        Bitboard
	Promotion PieceType // NoPieceType unless the move promotes

	capture bool
	castle  bool
}

// NoMove represents an invalid or null move.
var NoMove = Move{Promotion: NoPieceType}

// NewMove builds a move on pos, deriving the capture and castle flags from
// the pieces on the board. promo is ignored unless it is a legal promotion
// piece type.
func NewMove(pos *Position, from, to Bitboard, promo PieceType) Move {
	m := Move{From: from, To: to, Promotion: NoPieceType}
	if promo >= Knight && promo <= Queen {
		m.Promotion = promo
	}
	return pos.derive(m)
}

// derive recomputes the flags of m against p.
func (p *Position) derive(m Move) Move {
	m.capture, m.castle = false, false

	mover := p.PieceOn(m.From)
	if mover == NoPiece {
		return m
	}
	them := mover.Color().Other()

	switch {
	case m.To&p.Occupied[them] != 0:
		m.capture = true
	case mover.Type() == Pawn && m.To == p.EnPassant.Bitboard():
		m.capture = true
	}

	if mover.Type() == King {
		df := m.To.LSB().File() - m.From.LSB().File()
		m.castle = df == 2 || df == -2
	}
	return m
}

// FromSquare returns the origin square.
func (m Move) FromSquare() Square {
	return m.From.LSB()
}

// ToSquare returns the destination square.
func (m Move) ToSquare() Square {
	return m.To.LSB()
}

// IsNull returns true for NoMove and other moves without an origin.
func (m Move) IsNull() bool {
	return m.From == Empty || m.To == Empty
}

// IsCapture returns true if the move removes an opposing piece, en passant included.
func (m Move) IsCapture() bool {
	return m.capture
}

// IsCastle returns true if this is a castling move (king moving two files).
func (m Move) IsCastle() bool {
	return m.castle
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion >= Knight && m.Promotion <= Queen
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}

	s := m.FromSquare().String() + m.ToSquare().String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseMove parses a UCI format move string against pos. The move is not
// checked for legality; only its flags are derived from the board.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}

	promo := NoPieceType
	if len(s) == 5 {
		promo = PieceTypeFromChar(strings.ToLower(s[4:])[0])
		if promo < Knight || promo > Queen {
			return NoMove, fmt.Errorf("%w: promotion piece %q", ErrInvalidMove, s[4])
		}
	}

	return NewMove(pos, from.Bitboard(), to.Bitboard(), promo), nil
}

// FindMove returns the legal move matching the UCI string, if any.
func (p *Position) FindMove(s string) (Move, bool) {
	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, true
		}
	}
	return NoMove, false
}
