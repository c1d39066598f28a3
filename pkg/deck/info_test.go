package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lighthouseInfoSection() []byte {
	data := make([]byte, InfoSectionSize)
	data[0] = 1
	copy(data[1:], []byte{
		0x0f,
		0xdd, 0xcc, 0xbb, 0xaa,
		0x00, 0x04, 0x00, 0x00,
		0x00, 0x20, 0x00, 0x00,
	})
	copy(data[14:], "bcLighthouse4")
	return data
}

func TestDecodeInfoSection(t *testing.T) {
	decks, err := DecodeInfoSection(lighthouseInfoSection())
	require.NoError(t, err)
	require.Len(t, decks, 1)
	desc, ok := decks[0]
	require.True(t, ok)
	assert.Equal(t, Descriptor{
		Flags:          FlagValid | FlagStarted | FlagSupportsRead | FlagSupportsWrite,
		RequiredHash:   0xaabbccdd,
		RequiredLength: 1024,
		BaseAddress:    0x2000,
		Name:           "bcLighthouse4",
	}, desc)
	assert.True(t, desc.Flags.SupportsRead())
	assert.True(t, desc.Flags.SupportsWrite())
	assert.False(t, desc.Flags.SupportsUpgrade())
	assert.False(t, desc.Flags.IsBootloaderActive())
}

func TestDecodeInfoSectionDeterministic(t *testing.T) {
	data := lighthouseInfoSection()
	first, err := DecodeInfoSection(data)
	require.NoError(t, err)
	second, err := DecodeInfoSection(data)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecodeInfoSectionSlots(t *testing.T) {
	data := make([]byte, InfoSectionSize)
	data[0] = SupportedVersion
	for i := 1; i < len(data); i++ {
		data[i] = 0xfe
	}
	// slot 2 valid, others have every bit but valid set.
	slot := data[1+2*SlotSize:]
	slot[0] = byte(FlagValid | FlagSupportsUpgrade)
	copy(slot[slotName:], []byte("abc\x00xyz"))

	decks, err := DecodeInfoSection(data)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	desc := decks[2]
	assert.Equal(t, "abc", desc.Name)
	assert.Equal(t, uint32(0xfefefefe), desc.BaseAddress)
	assert.True(t, desc.Flags.SupportsUpgrade())
	assert.False(t, desc.Flags.IsStarted())
}

func TestDecodeInfoSectionNameWithoutNul(t *testing.T) {
	data := EncodeInfoSection(map[int]Descriptor{3: {Flags: FlagValid}})
	copy(data[1+3*SlotSize+slotName:], "0123456789abcdefghi")
	decks, err := DecodeInfoSection(data)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdefghi", decks[3].Name)
}

func TestDecodeInfoSectionVersion(t *testing.T) {
	for v := 0; v < 256; v++ {
		if v == SupportedVersion {
			continue
		}
		data := lighthouseInfoSection()
		data[0] = byte(v)
		decks, err := DecodeInfoSection(data)
		require.Empty(t, decks)
		require.Equal(t, &VersionError{Version: byte(v)}, err)
	}
}

func TestDecodeInfoSectionShort(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"version only", []byte{SupportedVersion}},
		{"truncated slot", lighthouseInfoSection()[:InfoSectionSize-1]},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decks, err := DecodeInfoSection(tc.data)
			require.Empty(t, decks)
			require.Equal(t, ErrShortInfoSection, err)
		})
	}
}

func TestEncodeInfoSection(t *testing.T) {
	data := EncodeInfoSection(map[int]Descriptor{
		0: {
			Flags:          FlagValid | FlagStarted | FlagSupportsRead | FlagSupportsWrite,
			RequiredHash:   0xaabbccdd,
			RequiredLength: 1024,
			BaseAddress:    0x2000,
			Name:           "bcLighthouse4",
		},
		MaxDecks: {Flags: FlagValid, Name: "ignored"},
	})
	require.Equal(t, lighthouseInfoSection(), data)

	data = EncodeInfoSection(map[int]Descriptor{1: {Flags: FlagValid, Name: "a-name-longer-than-the-field"}})
	decks, err := DecodeInfoSection(data)
	require.NoError(t, err)
	assert.Equal(t, "a-name-longer-than", decks[1].Name)
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "valid|started|read", (FlagValid | FlagStarted | FlagSupportsRead).String())
	assert.Equal(t, "upgrade-required|bootloader", (FlagUpgradeRequired | FlagBootloaderActive).String())
}
