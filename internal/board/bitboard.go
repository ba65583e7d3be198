package board

import (
	"fmt"
	"math/bits"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8 (Little-Endian Rank-File Mapping).
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileC Bitboard = 0x0404040404040404
	FileD Bitboard = 0x0808080808080808
	FileE Bitboard = 0x1010101010101010
	FileF Bitboard = 0x2020202020202020
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank3 Bitboard = 0x0000000000FF0000
	Rank4 Bitboard = 0x00000000FF000000
	Rank5 Bitboard = 0x000000FF00000000
	Rank6 Bitboard = 0x0000FF0000000000
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA  Bitboard = ^FileA
	NotFileH  Bitboard = ^FileH
	NotFileAB Bitboard = ^(FileA | FileB)
	NotFileGH Bitboard = ^(FileG | FileH)

	// BackRanks are the promotion ranks for both colors.
	BackRanks Bitboard = Rank1 | Rank8
)

// FileMask returns the file mask for a given file (0-7).
var FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// RankMask returns the rank mask for a given rank (0-7).
var RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits (population count).
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit (lowest square index).
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Single returns true if exactly one bit is set.
func (b Bitboard) Single() bool {
	return b != 0 && b&(b-1) == 0
}

// Direction is one of the eight compass directions followed by the eight
// knight leaps. Knight leaps only support Slide.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest

	NorthNorthEast
	NorthEastEast
	SouthEastEast
	SouthSouthEast
	SouthSouthWest
	SouthWestWest
	NorthWestWest
	NorthNorthWest

	// NumDirections is the number of entries in the direction table.
	NumDirections = 16
)

// direction describes a one-step translation: a signed shift and the mask of
// squares that can be reached without wrapping around the board edge.
type direction struct {
	shift int8
	mask  Bitboard
	name  string
}

var directions = [NumDirections]direction{
	North:          {8, Universe, "N"},
	NorthEast:      {9, NotFileA, "NE"},
	East:           {1, NotFileA, "E"},
	SouthEast:      {-7, NotFileA, "SE"},
	South:          {-8, Universe, "S"},
	SouthWest:      {-9, NotFileH, "SW"},
	West:           {-1, NotFileH, "W"},
	NorthWest:      {7, NotFileH, "NW"},
	NorthNorthEast: {17, NotFileA, "NNE"},
	NorthEastEast:  {10, NotFileAB, "NEE"},
	SouthEastEast:  {-6, NotFileAB, "SEE"},
	SouthSouthEast: {-15, NotFileA, "SSE"},
	SouthSouthWest: {-17, NotFileH, "SSW"},
	SouthWestWest:  {-10, NotFileGH, "SWW"},
	NorthWestWest:  {6, NotFileGH, "NWW"},
	NorthNorthWest: {15, NotFileH, "NNW"},
}

// IsCompass reports whether d is a ray direction rather than a knight leap.
func (d Direction) IsCompass() bool {
	return d < NorthNorthEast
}

// Opposite returns the direction pointing the other way, staying within the
// same group (compass or knight).
func (d Direction) Opposite() Direction {
	return d&^7 | (d+4)&7
}

// String returns the short compass name of the direction.
func (d Direction) String() string {
	if d >= NumDirections {
		return "?"
	}
	return directions[d].name
}

// Slide shifts every square of b one step in direction d, dropping squares
// that would wrap around a board edge.
func (d Direction) Slide(b Bitboard) Bitboard {
	dir := directions[d]
	if dir.shift > 0 {
		return (b << uint(dir.shift)) & dir.mask
	}
	return (b >> uint(-dir.shift)) & dir.mask
}

// Flood slides b repeatedly through empty squares. When includeBlocker is set
// the result is the full ray including the first occupied square reached,
// otherwise only the empty squares visited.
func (d Direction) Flood(b, empty Bitboard, includeBlocker bool) Bitboard {
	gen := b
	for i := 0; i < 7; i++ {
		gen |= d.Slide(gen) & empty
	}
	if includeBlocker {
		return d.Slide(gen)
	}
	return gen & empty
}

// Blocker walks a single square in direction d and returns the first square
// that is not in empty. Walking off the board yields Empty.
func (d Direction) Blocker(b, empty Bitboard) Bitboard {
	gen := b
	for i := 0; i < 7; i++ {
		gen = d.Slide(gen)
		if gen&empty == 0 {
			return gen
		}
	}
	return gen
}

// Axis groups a compass direction with its opposite.
type Axis uint8

const (
	AxisVertical Axis = iota // N/S
	AxisHorizontal           // E/W
	AxisDiagonal             // NE/SW
	AxisAntiDiagonal         // NW/SE
)

// Axis returns the pin axis of a compass direction.
func (d Direction) Axis() Axis {
	switch d & 7 {
	case North, South:
		return AxisVertical
	case East, West:
		return AxisHorizontal
	case NorthEast, SouthWest:
		return AxisDiagonal
	default:
		return AxisAntiDiagonal
	}
}

var axisDirections = [4][2]Direction{
	AxisVertical:     {North, South},
	AxisHorizontal:   {East, West},
	AxisDiagonal:     {NorthEast, SouthWest},
	AxisAntiDiagonal: {NorthWest, SouthEast},
}

// Ray returns every square reachable from b along both directions of the
// axis, including the first blocker on each side.
func (a Axis) Ray(b, empty Bitboard) Bitboard {
	dirs := axisDirections[a]
	return dirs[0].Flood(b, empty, true) | dirs[1].Flood(b, empty, true)
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	s := ""
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			if b.IsSet(sq) {
				s += "1 "
			} else {
				s += ". "
			}
		}
		s += "\n"
	}
	s += "  a b c d e f g h\n"
	return s
}

// ForEach calls the function for each set square.
func (b Bitboard) ForEach(f func(Square)) {
	for b != 0 {
		sq := b.PopLSB()
		f(sq)
	}
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
