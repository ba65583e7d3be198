package board

import "strings"

// SAN formats a legal move of p in Standard Algebraic Notation, with a check
// or mate suffix. Moves without a piece on their origin fall back to UCI.
func (p *Position) SAN(m Move) string {
	if m.IsNull() {
		return "--"
	}

	piece := p.PieceOn(m.From)
	if piece == NoPiece {
		return m.String()
	}
	m = p.derive(m)

	var sb strings.Builder
	from, to := m.FromSquare(), m.ToSquare()

	switch pt := piece.Type(); {
	case m.IsCastle():
		if to > from {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	case pt == Pawn:
		if m.IsCapture() {
			sb.WriteByte('a' + byte(from.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion])
		}
	default:
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(p.disambiguation(m, pt))
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
	}

	next := p.Clone()
	next.MakeMove(m)
	if next.InCheck() {
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same type can reach the same destination.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	from := m.FromSquare()
	same := p.Pieces[p.SideToMove][pt]

	var sameFile, sameRank, ambiguous bool
	for _, other := range p.LegalMoves() {
		if other.To != m.To || other.From == m.From || other.From&same == 0 {
			continue
		}
		ambiguous = true
		sq := other.FromSquare()
		sameFile = sameFile || sq.File() == from.File()
		sameRank = sameRank || sq.Rank() == from.Rank()
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}

// MovesToSAN converts a sequence of moves played from pos to SAN.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	p := pos.Clone()

	for i, m := range moves {
		result[i] = p.SAN(m)
		p.MakeMove(m)
	}

	return result
}
