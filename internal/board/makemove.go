package board

// MakeMove applies a move to the position. The previous state is pushed onto
// the history so UndoMove can restore it exactly.
//
// Moves are trusted: nothing checks them against the legal move list. A move
// that does not start on one of the mover's pieces, or that lands on one, is
// played as a null move so the board stays consistent.
func (p *Position) MakeMove(m Move) {
	us := p.SideToMove
	them := us.Other()
	mover := p.PieceOn(m.From)
	if !m.From.Single() || !m.To.Single() || mover == NoPiece || mover.Color() != us || m.To&p.Occupied[us] != 0 {
		p.MakeNullMove()
		return
	}

	m = p.derive(m)
	p.push()

	pt := mover.Type()
	from, to := m.From, m.To
	fromSq, toSq := from.LSB(), to.LSB()

	// Castling rights and en passant leave the hash here and are re-added
	// once their new values are known.
	p.Hash ^= castlingKey(p.CastlingRights)
	ep := p.EnPassant.Bitboard()
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	captured := false
	push, _ := pawnDirs(us)
	switch {
	case pt == Pawn && to == ep:
		p.toggle(them, Pawn, push.Opposite().Slide(to))
		captured = true
	case to&p.Occupied[them] != 0:
		p.toggle(them, p.PieceOn(to).Type(), to)
		captured = true
	}

	p.toggle(us, pt, from|to)

	if pt == Pawn && m.IsPromotion() {
		p.toggle(us, Pawn, to)
		p.toggle(us, m.Promotion, to)
	}

	if m.IsCastle() {
		for _, c := range castles {
			if c.kingFrom == fromSq && c.kingTo == toSq {
				p.toggle(us, Rook, SquareBB(c.rookFrom)|SquareBB(c.rookTo))
				break
			}
		}
	}

	if pt == King {
		p.CastlingRights &^= castlingRight(us, true) | castlingRight(us, false)
	}
	p.CastlingRights &^= cornerRights[fromSq] | cornerRights[toSq]
	p.Hash ^= castlingKey(p.CastlingRights)

	if pt == Pawn && push.Slide(push.Slide(from)) == to {
		p.EnPassant = push.Slide(from).LSB()
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	if pt == Pawn || captured {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.Hash ^= zobristSideToMove
	p.lastMove = m
}

// MakeNullMove passes the turn without moving a piece. The en passant target
// is cleared and the clocks are left alone.
func (p *Position) MakeNullMove() {
	p.push()

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
	p.lastMove = NoMove
}

// UndoMove restores the position as it was before the last MakeMove or
// MakeNullMove. It returns false if there is nothing to undo.
func (p *Position) UndoMove() bool {
	n := len(p.history)
	if n == 0 {
		return false
	}
	prev := p.history[n-1]
	prev.history = p.history[:n-1]
	*p = prev
	return true
}

// push records the current state on the history stack.
func (p *Position) push() {
	snap := *p
	snap.history = nil
	p.history = append(p.history, snap)
}
