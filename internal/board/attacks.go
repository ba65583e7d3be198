package board

// attackSets holds one target set per direction. The sets are kept apart so
// that a target can be traced back to the piece that reaches it.
type attackSets [NumDirections]Bitboard

// union merges all directions into one set.
func (a *attackSets) union() Bitboard {
	var all Bitboard
	for _, bb := range a {
		all |= bb
	}
	return all
}

// hits counts the directions whose set contains a square of target.
func (a *attackSets) hits(target Bitboard) int {
	n := 0
	for _, bb := range a {
		if bb&target != 0 {
			n++
		}
	}
	return n
}

// pawnDirs returns the push direction and the two capture directions of c.
func pawnDirs(c Color) (push Direction, captures [2]Direction) {
	if c == White {
		return North, [2]Direction{NorthEast, NorthWest}
	}
	return South, [2]Direction{SouthEast, SouthWest}
}

// pieceSets computes slider rays, king steps and knight leaps of c over the
// given empty squares. Pawns are left to the callers.
func (p *Position) pieceSets(c Color, empty Bitboard) attackSets {
	var a attackSets

	orth := p.Pieces[c][Rook] | p.Pieces[c][Queen]
	diag := p.Pieces[c][Bishop] | p.Pieces[c][Queen]
	king := p.Pieces[c][King]
	for d := North; d <= NorthWest; d++ {
		sliders := diag
		if d.Axis() == AxisVertical || d.Axis() == AxisHorizontal {
			sliders = orth
		}
		a[d] = d.Flood(sliders, empty, true) | d.Slide(king)
	}

	knights := p.Pieces[c][Knight]
	for d := NorthNorthEast; d < NumDirections; d++ {
		a[d] = d.Slide(knights)
	}

	return a
}

// moveSets computes the pseudo-legal targets of c: pushes and captures for
// pawns, en passant included, and never a square held by c.
func (p *Position) moveSets(c Color) attackSets {
	empty := ^p.AllOccupied
	a := p.pieceSets(c, empty)

	pawns := p.Pieces[c][Pawn]
	push, captures := pawnDirs(c)

	single := push.Slide(pawns) & empty
	third := Rank3
	if c == Black {
		third = Rank6
	}
	a[push] |= single | push.Slide(single&third)&empty

	targets := p.Occupied[c.Other()]
	if c == p.SideToMove {
		targets |= p.EnPassant.Bitboard()
	}
	for _, d := range captures {
		a[d] |= d.Slide(pawns) & targets
	}

	for d := range a {
		a[d] &^= p.Occupied[c]
	}
	return a
}

// threatSets computes every square covered by c, defended pieces included.
// Pieces in transparent do not block rays, which lets a king see the squares
// behind it along a checking line.
func (p *Position) threatSets(c Color, transparent Bitboard) attackSets {
	a := p.pieceSets(c, ^(p.AllOccupied &^ transparent))

	pawns := p.Pieces[c][Pawn]
	_, captures := pawnDirs(c)
	for _, d := range captures {
		a[d] |= d.Slide(pawns)
	}
	return a
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	a := p.threatSets(by, Empty)
	return a.union()&SquareBB(sq) != 0
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	us := p.SideToMove
	a := p.threatSets(us.Other(), Empty)
	return a.hits(p.Pieces[us][King]) > 0
}

// Checkers returns the pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	us := p.SideToMove
	king := p.Pieces[us][King]
	a := p.threatSets(us.Other(), Empty)

	var checkers Bitboard
	for d := Direction(0); d < NumDirections; d++ {
		if a[d]&king == 0 {
			continue
		}
		if d.IsCompass() {
			checkers |= d.Opposite().Blocker(king, ^p.AllOccupied)
		} else {
			checkers |= d.Opposite().Slide(king)
		}
	}
	return checkers
}

// evasionTargets returns, for a single check, the checking square plus the
// squares between it and the king.
func (p *Position) evasionTargets(threats *attackSets, king Bitboard) Bitboard {
	for d := Direction(0); d < NumDirections; d++ {
		if threats[d]&king == 0 {
			continue
		}
		if d.IsCompass() {
			return d.Opposite().Flood(king, ^p.AllOccupied, true)
		}
		return d.Opposite().Slide(king)
	}
	return Empty
}

// pins returns the pieces of us pinned to their king, one set per axis.
func (p *Position) pins(us Color) [4]Bitboard {
	var pins [4]Bitboard

	them := us.Other()
	king := p.Pieces[us][King]
	empty := ^p.AllOccupied
	orth := p.Pieces[them][Rook] | p.Pieces[them][Queen]
	diag := p.Pieces[them][Bishop] | p.Pieces[them][Queen]

	for d := North; d <= NorthWest; d++ {
		candidate := d.Blocker(king, empty)
		if candidate&p.Occupied[us] == 0 {
			continue
		}
		sliders := diag
		if d.Axis() == AxisVertical || d.Axis() == AxisHorizontal {
			sliders = orth
		}
		if d.Blocker(candidate, empty)&sliders != 0 {
			pins[d.Axis()] |= candidate
		}
	}
	return pins
}

// staysPinned reports whether a move from a pinned square keeps to its pin axis.
func staysPinned(pins *[4]Bitboard, from, to, empty Bitboard) bool {
	for axis, pinned := range pins {
		if pinned&from != 0 && Axis(axis).Ray(from, empty)&to == 0 {
			return false
		}
	}
	return true
}

// enPassantSafe checks the king after an en passant capture from from to to
// that removes the pawn on victim. Both pawns leave their squares at once, so
// a rook or queen on the fifth rank can be uncovered even when neither pawn
// counts as pinned.
func (p *Position) enPassantSafe(us Color, from, to, victim Bitboard) bool {
	them := us.Other()
	occupied := p.AllOccupied&^(from|victim) | to
	empty := ^occupied
	king := p.Pieces[us][King]
	orth := p.Pieces[them][Rook] | p.Pieces[them][Queen]
	diag := p.Pieces[them][Bishop] | p.Pieces[them][Queen]

	for d := North; d <= NorthWest; d++ {
		sliders := diag
		if d.Axis() == AxisVertical || d.Axis() == AxisHorizontal {
			sliders = orth
		}
		if d.Blocker(king, empty)&sliders != 0 {
			return false
		}
	}
	return true
}
