package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/deckmem/pkg/deck"
)

func TestBoardInfoSection(t *testing.T) {
	b, err := NewBoard(DefaultBoardConfig())
	require.NoError(t, err)
	decks, err := deck.DecodeInfoSection(b.InfoSection())
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "bcLighthouse4", decks[0].Name)
	assert.Equal(t, uint32(0x1000), decks[0].BaseAddress)
	assert.True(t, decks[0].Flags.SupportsUpgrade())
	assert.Equal(t, "bcAI", decks[2].Name)
	assert.False(t, decks[2].Flags.SupportsWrite())
	assert.Equal(t, decks, b.Decks())

	data, err := b.ReadMemory(1, 0, deck.InfoSectionSize)
	require.NoError(t, err)
	assert.Equal(t, b.InfoSection(), data)
}

func TestBoardMemory(t *testing.T) {
	b, err := NewBoard(DefaultBoardConfig())
	require.NoError(t, err)

	require.NoError(t, b.WriteMemory(1, 0x1ffe, []byte{1, 2}))
	data, err := b.ReadMemory(1, 0x1ffd, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)

	_, err = b.ReadMemory(1, 0x1fff, 2)
	assert.True(t, errors.Is(err, ErrUnmapped))
	err = b.WriteMemory(1, 0x10, []byte{1})
	assert.True(t, errors.Is(err, ErrUnmapped))
	err = b.WriteMemory(1, 0x10000, []byte{1})
	assert.True(t, errors.Is(err, ErrAccessDenied))
	_, err = b.ReadMemory(2, 0x1000, 1)
	assert.Equal(t, ErrUnknownMemory, err)
	assert.Equal(t, ErrUnknownMemory, b.WriteMemory(2, 0x1000, []byte{1}))
}

func TestNewBoardInvalid(t *testing.T) {
	_, err := NewBoard(&BoardConfig{Decks: []DeckConfig{{Slot: 9, Size: 1, BaseAddress: 0x1000}}})
	assert.Error(t, err)
}
