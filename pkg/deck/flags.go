package deck

import "strings"

// Flags is the capability bitset of a deck.
type Flags uint8

// Capability bits.
const (
	FlagValid            Flags = 1 << 0
	FlagStarted          Flags = 1 << 1
	FlagSupportsRead     Flags = 1 << 2
	FlagSupportsWrite    Flags = 1 << 3
	FlagSupportsUpgrade  Flags = 1 << 4
	FlagUpgradeRequired  Flags = 1 << 5
	FlagBootloaderActive Flags = 1 << 6
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagValid, "valid"},
	{FlagStarted, "started"},
	{FlagSupportsRead, "read"},
	{FlagSupportsWrite, "write"},
	{FlagSupportsUpgrade, "upgrade"},
	{FlagUpgradeRequired, "upgrade-required"},
	{FlagBootloaderActive, "bootloader"},
}

// Has checks if all bits in mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// IsValid indicates the slot holds a deck.
func (f Flags) IsValid() bool { return f.Has(FlagValid) }

// IsStarted indicates the deck is ready for memory access.
func (f Flags) IsStarted() bool { return f.Has(FlagStarted) }

// SupportsRead indicates the deck memory is readable.
func (f Flags) SupportsRead() bool { return f.Has(FlagSupportsRead) }

// SupportsWrite indicates the deck memory is writable.
func (f Flags) SupportsWrite() bool { return f.Has(FlagSupportsWrite) }

// SupportsUpgrade indicates the deck firmware can be upgraded.
func (f Flags) SupportsUpgrade() bool { return f.Has(FlagSupportsUpgrade) }

// IsUpgradeRequired indicates the deck firmware doesn't match the required one.
func (f Flags) IsUpgradeRequired() bool { return f.Has(FlagUpgradeRequired) }

// IsBootloaderActive indicates the deck is running its bootloader.
func (f Flags) IsBootloaderActive() bool { return f.Has(FlagBootloaderActive) }

// String implements fmt.Stringer.
func (f Flags) String() string {
	var names []string
	for _, item := range flagNames {
		if f.Has(item.flag) {
			names = append(names, item.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
