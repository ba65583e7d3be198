package board

import "golang.org/x/exp/slices"

// LegalMoves generates all legal moves for the side to move.
//
// Targets are produced per direction; each target is traced back along the
// opposite direction to the first own piece, which is the mover. Every
// candidate is then filtered against double check, pins, king safety and
// single-check evasion before promotions are expanded.
func (p *Position) LegalMoves() []Move {
	us := p.SideToMove
	them := us.Other()
	own := p.Occupied[us]
	opp := p.Occupied[them]
	king := p.Pieces[us][King]
	pawns := p.Pieces[us][Pawn]
	empty := ^p.AllOccupied
	ep := p.EnPassant.Bitboard()
	push, _ := pawnDirs(us)

	sets := p.moveSets(us)
	threats := p.threatSets(them, king)
	attacked := threats.union()

	checks := threats.hits(king)
	evasions := Universe
	if checks == 1 {
		evasions = p.evasionTargets(&threats, king)
	}
	pins := p.pins(us)
	pinned := pins[0] | pins[1] | pins[2] | pins[3]

	moves := make([]Move, 0, 8)
	for d := Direction(0); d < NumDirections; d++ {
		back := d.Opposite()
		targets := sets[d]
		for targets != 0 {
			to := SquareBB(targets.PopLSB())

			var from Bitboard
			if d.IsCompass() {
				from = back.Blocker(to, ^own)
			} else {
				from = back.Slide(to)
			}

			isPawn := from&pawns != 0
			enPassant := isPawn && to == ep && d != push
			var victim Bitboard
			if enPassant {
				victim = push.Opposite().Slide(to)
			}

			if from&king != 0 {
				if attacked&to != 0 {
					continue
				}
			} else {
				if checks > 1 {
					continue
				}
				if from&pinned != 0 && !staysPinned(&pins, from, to, empty) {
					continue
				}
				if evasions&(to|victim) == 0 {
					continue
				}
				if enPassant && !p.enPassantSafe(us, from, to, victim) {
					continue
				}
			}

			m := Move{
				From:      from,
				To:        to,
				Promotion: NoPieceType,
				capture:   to&opp != 0 || enPassant,
			}
			if isPawn && to&BackRanks != 0 {
				for _, pt := range PromotionTypes {
					m.Promotion = pt
					moves = append(moves, m)
				}
				continue
			}
			moves = append(moves, m)
		}
	}

	if checks == 0 {
		moves = p.appendCastles(moves, us, attacked)
	}
	return slices.Clip(moves)
}

// appendCastles adds the castling moves available to us. The king path must
// not be attacked and the squares up to the rook must be empty.
func (p *Position) appendCastles(moves []Move, us Color, attacked Bitboard) []Move {
	for i, c := range castles {
		if Color(i/2) != us || p.CastlingRights&c.right == 0 {
			continue
		}
		if p.Pieces[us][King] != SquareBB(c.kingFrom) || !p.Pieces[us][Rook].IsSet(c.rookFrom) {
			continue
		}
		if p.AllOccupied&c.empty != 0 || attacked&c.safe != 0 {
			continue
		}
		moves = append(moves, Move{
			From:      SquareBB(c.kingFrom),
			To:        SquareBB(c.kingTo),
			Promotion: NoPieceType,
			castle:    true,
		})
	}
	return moves
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return len(p.LegalMoves()) > 0
}
