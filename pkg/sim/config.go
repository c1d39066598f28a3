package sim

import (
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/deckmem/pkg/deck"
)

// BoardConfig describes a simulated mainboard.
type BoardConfig struct {
	MemoryID uint32       `yaml:"memory_id"`
	Decks    []DeckConfig `yaml:"decks"`
}

// DeckConfig describes a deck plugged into the simulated board.
type DeckConfig struct {
	Slot           int      `yaml:"slot"`
	Name           string   `yaml:"name"`
	Flags          []string `yaml:"flags"`
	RequiredHash   uint32   `yaml:"required_hash"`
	RequiredLength uint32   `yaml:"required_length"`
	BaseAddress    uint32   `yaml:"base_address"`
	Size           uint32   `yaml:"size"`
}

var flagsByName = map[string]deck.Flags{
	"started":          deck.FlagStarted,
	"read":             deck.FlagSupportsRead,
	"write":            deck.FlagSupportsWrite,
	"upgrade":          deck.FlagSupportsUpgrade,
	"upgrade-required": deck.FlagUpgradeRequired,
	"bootloader":       deck.FlagBootloaderActive,
}

// DefaultBoardConfig is a board with two started decks.
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		MemoryID: 1,
		Decks: []DeckConfig{
			{
				Slot:           0,
				Name:           "bcLighthouse4",
				Flags:          []string{"started", "read", "write", "upgrade"},
				RequiredHash:   0xaabbccdd,
				RequiredLength: 1024,
				BaseAddress:    0x1000,
				Size:           0x1000,
			},
			{
				Slot:        2,
				Name:        "bcAI",
				Flags:       []string{"started", "read"},
				BaseAddress: 0x10000,
				Size:        0x100,
			},
		},
	}
}

// ParseBoardConfig parses a YAML board description.
func ParseBoardConfig(data []byte) (*BoardConfig, error) {
	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBoardConfig reads a YAML board description.
func LoadBoardConfig(path string) (*BoardConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseBoardConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return cfg, nil
}

// DeckFlags converts flag names into Flags, the valid bit is always set.
func (c *DeckConfig) DeckFlags() (deck.Flags, error) {
	flags := deck.FlagValid
	for _, name := range c.Flags {
		f, ok := flagsByName[name]
		if !ok {
			return 0, fmt.Errorf("deck %q: unknown flag %q", c.Name, name)
		}
		flags |= f
	}
	return flags, nil
}

// Validate checks the board description without changing it.
func (c *BoardConfig) Validate() error {
	type window struct {
		start, end uint64
		name       string
	}
	windows := []window{{0, deck.InfoSectionSize, "info section"}}
	slots := make(map[int]string)
	for i := range c.Decks {
		d := &c.Decks[i]
		if d.Slot < 0 || d.Slot >= deck.MaxDecks {
			return fmt.Errorf("deck %q: slot %d out of range", d.Name, d.Slot)
		}
		if prev, exists := slots[d.Slot]; exists {
			return fmt.Errorf("slot %d used by decks %q and %q", d.Slot, prev, d.Name)
		}
		slots[d.Slot] = d.Name
		if len(d.Name) >= deck.NameSize {
			return fmt.Errorf("deck %q: name longer than %d bytes", d.Name, deck.NameSize-1)
		}
		if _, err := d.DeckFlags(); err != nil {
			return err
		}
		if d.Size == 0 {
			return fmt.Errorf("deck %q: size must be > 0", d.Name)
		}
		start := uint64(d.BaseAddress)
		end := start + uint64(d.Size)
		if end > 1<<32 {
			return fmt.Errorf("deck %q: window exceeds address space", d.Name)
		}
		windows = append(windows, window{start, end, d.Name})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	for i := 1; i < len(windows); i++ {
		if windows[i].start < windows[i-1].end {
			return fmt.Errorf("memory of %q overlaps %q", windows[i].name, windows[i-1].name)
		}
	}
	return nil
}
