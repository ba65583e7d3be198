package board

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castlingRight(c, kingSide) != 0
}

func castlingRight(c Color, kingSide bool) CastlingRights {
	right := WhiteKingSideCastle
	if !kingSide {
		right = WhiteQueenSideCastle
	}
	if c == Black {
		right <<= 2
	}
	return right
}

// castle is the fixed geometry of one of the four castling moves.
type castle struct {
	right            CastlingRights
	kingFrom, kingTo Square
	rookFrom, rookTo Square
	empty            Bitboard // squares between king and rook
	safe             Bitboard // king start, transit and destination
}

// castles is indexed by the bit position of the right.
var castles = [4]castle{
	{WhiteKingSideCastle, E1, G1, H1, F1, 0x0000000000000060, 0x0000000000000070},
	{WhiteQueenSideCastle, E1, C1, A1, D1, 0x000000000000000E, 0x000000000000001C},
	{BlackKingSideCastle, E8, G8, H8, F8, 0x6000000000000000, 0x7000000000000000},
	{BlackQueenSideCastle, E8, C8, A8, D8, 0x0E00000000000000, 0x1C00000000000000},
}

// cornerRights maps a rook corner to the right lost when it is vacated or captured.
var cornerRights = map[Square]CastlingRights{
	H1: WhiteKingSideCastle,
	A1: WhiteQueenSideCastle,
	H8: BlackKingSideCastle,
	A8: BlackQueenSideCastle,
}

// Position represents a complete chess position together with the positions
// that preceded it.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards, kept in step with Pieces
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Plies since last pawn move or capture
	FullMoveNumber int    // Starts at 1, incremented after black moves

	Hash uint64

	// lastMove produced this position; NoMove at the root and after a null move.
	lastMove Move

	// history holds earlier positions, oldest first. Entries never carry
	// their own history.
	history []Position
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Clone returns an independent copy of the position, history included.
func (p *Position) Clone() *Position {
	c := *p
	c.history = slices.Clone(p.history)
	return &c
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.PieceOn(SquareBB(sq))
}

// PieceOn returns the piece on the lowest square of bb, or NoPiece.
func (p *Position) PieceOn(bb Bitboard) Piece {
	bb &= -bb
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}

	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// Bitboard returns the squares holding pieces of the given color and type.
func (p *Position) Bitboard(c Color, pt PieceType) Bitboard {
	if c >= NoColor || pt >= NoPieceType {
		return Empty
	}
	return p.Pieces[c][pt]
}

// KingSquare returns the king square of the given color.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// IsWhiteTurn returns true if white is to move.
func (p *Position) IsWhiteTurn() bool {
	return p.SideToMove == White
}

// IsBlackTurn returns true if black is to move.
func (p *Position) IsBlackTurn() bool {
	return p.SideToMove == Black
}

// CanCastleKingSide reports whether c still holds the king-side right.
func (p *Position) CanCastleKingSide(c Color) bool {
	return p.CastlingRights.CanCastle(c, true)
}

// CanCastleQueenSide reports whether c still holds the queen-side right.
func (p *Position) CanCastleQueenSide(c Color) bool {
	return p.CastlingRights.CanCastle(c, false)
}

// LastMove returns the move that produced this position, or NoMove.
func (p *Position) LastMove() Move {
	return p.lastMove
}

// Ply returns the number of moves (null moves included) made since the
// position was set up.
func (p *Position) Ply() int {
	return len(p.history)
}

// setPiece places a piece on a square (does not update hash).
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	bb := SquareBB(sq)
	p.Pieces[piece.Color()][piece.Type()] |= bb
	p.Occupied[piece.Color()] |= bb
	p.AllOccupied |= bb
}

// toggle flips the bits of mask for a piece and keeps occupancy and hash in step.
func (p *Position) toggle(c Color, pt PieceType, mask Bitboard) {
	p.Pieces[c][pt] ^= mask
	p.Occupied[c] ^= mask
	p.AllOccupied ^= mask
	for mask != 0 {
		p.Hash ^= zobristPiece[c][pt][mask.PopLSB()]
	}
}

// samePosition compares every feature that matters for repetition.
func (p *Position) samePosition(o *Position) bool {
	return p.Hash == o.Hash &&
		p.SideToMove == o.SideToMove &&
		p.CastlingRights == o.CastlingRights &&
		p.EnPassant == o.EnPassant &&
		p.Pieces == o.Pieces
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}
