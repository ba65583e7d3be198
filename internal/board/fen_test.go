package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range corpus {
		pos := mustParse(t, fen)
		assert.Equal(t, fen, pos.ToFEN())
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"missing fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/4K2k w - - 0 1"},
		{"long rank", "4k4/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"bad piece", "4k3/8/8/8/8/8/8/4X3 w - - 0 1"},
		{"bad side", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"bad castling", "4k3/8/8/8/8/8/8/4K3 w X - 0 1"},
		{"bad en passant", "4k3/8/8/8/8/8/8/4K3 w - z9 0 1"},
		{"bad clock", "4k3/8/8/8/8/8/8/4K3 w - - x 1"},
		{"no black king", "8/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			assert.ErrorIs(t, err, ErrInvalidFEN)
		})
	}
}

func TestParseFENDefaults(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 b - -")
	require.NoError(t, err)

	assert.Equal(t, 0, pos.HalfMoveClock)
	assert.Equal(t, 1, pos.FullMoveNumber)
	assert.True(t, pos.IsBlackTurn())
	assert.Equal(t, pos.ComputeHash(), pos.Hash)
}
