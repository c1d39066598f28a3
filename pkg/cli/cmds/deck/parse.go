package deck

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/deckmem/pkg/deck"
)

// Info is the printable form of a discovered deck.
type Info struct {
	Slot           int    `json:"slot"`
	Name           string `json:"name"`
	Flags          string `json:"flags"`
	BaseAddress    uint32 `json:"base_address"`
	RequiredHash   uint32 `json:"required_hash"`
	RequiredLength uint32 `json:"required_length"`
}

// InfoOf converts a deck memory into Info.
func InfoOf(mem *deck.Memory) Info {
	return Info{
		Slot:           mem.Index(),
		Name:           mem.Name(),
		Flags:          mem.Flags().String(),
		BaseAddress:    mem.BaseAddress(),
		RequiredHash:   mem.RequiredHash(),
		RequiredLength: mem.RequiredLength(),
	}
}

// FormatInfo formats Info in a single line.
func FormatInfo(info Info) string {
	return fmt.Sprintf("%d %-18s base=0x%08x flags=%s", info.Slot, info.Name, info.BaseAddress, info.Flags)
}

// ParseSlot parses a slot index.
func ParseSlot(s string) (int, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil || val >= deck.MaxDecks {
		return 0, fmt.Errorf("invalid slot %q", s)
	}
	return int(val), nil
}

// ParseAddress parses a deck relative address, decimal or 0x prefixed.
func ParseAddress(s string) (uint32, error) {
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(val), nil
}

// ParseLength parses a read length.
func ParseLength(s string) (uint16, error) {
	val, err := strconv.ParseUint(s, 0, 16)
	if err != nil || val == 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return uint16(val), nil
}

// ParseHex parses bytes in hex, separators ':' and ' ' are ignored.
func ParseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(":", "", " ", "").Replace(strings.TrimPrefix(s, "0x"))
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %v", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}
	return data, nil
}
