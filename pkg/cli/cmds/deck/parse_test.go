package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	slot, err := ParseSlot("3")
	require.NoError(t, err)
	assert.Equal(t, 3, slot)
	_, err = ParseSlot("4")
	assert.Error(t, err)

	addr, err := ParseAddress("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), addr)
	_, err = ParseAddress("x")
	assert.Error(t, err)

	length, err := ParseLength("16")
	require.NoError(t, err)
	assert.Equal(t, uint16(16), length)
	_, err = ParseLength("0")
	assert.Error(t, err)
	_, err = ParseLength("65536")
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		data []byte
	}{
		{"0102ff", []byte{1, 2, 0xff}},
		{"0x0a0b", []byte{0x0a, 0x0b}},
		{"de:ad:be:ef", []byte{0xde, 0xad, 0xbe, 0xef}},
	}
	for _, c := range cases {
		data, err := ParseHex(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.data, data, c.in)
	}
	_, err := ParseHex("")
	assert.Error(t, err)
	_, err = ParseHex("abc")
	assert.Error(t, err)
}
