// Package sim simulates a mainboard exposing deck memory.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/robotalks/deckmem/pkg/deck"
)

var (
	// ErrUnknownMemory indicates a request for another memory element.
	ErrUnknownMemory = errors.New("unknown memory element")
	// ErrUnmapped indicates the address is outside every deck window.
	ErrUnmapped = errors.New("address not mapped")
	// ErrAccessDenied indicates the deck doesn't allow the access.
	ErrAccessDenied = errors.New("access denied")
)

type window struct {
	name  string
	flags deck.Flags
	base  uint32
	data  []byte
}

func (w *window) contains(addr uint32, length int) bool {
	offset := uint64(addr) - uint64(w.base)
	return addr >= w.base && offset+uint64(length) <= uint64(len(w.data))
}

// Board is a simulated mainboard serving the info section at address 0
// and the memory window of each deck.
type Board struct {
	memoryID uint32
	info     []byte
	windows  []*window
	lock     sync.RWMutex
}

// NewBoard creates a Board from a validated config.
func NewBoard(cfg *BoardConfig) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{memoryID: cfg.MemoryID}
	descs := make(map[int]deck.Descriptor)
	for _, d := range cfg.Decks {
		flags, _ := d.DeckFlags()
		descs[d.Slot] = deck.Descriptor{
			Flags:          flags,
			RequiredHash:   d.RequiredHash,
			RequiredLength: d.RequiredLength,
			BaseAddress:    d.BaseAddress,
			Name:           d.Name,
		}
		b.windows = append(b.windows, &window{
			name:  d.Name,
			flags: flags,
			base:  d.BaseAddress,
			data:  make([]byte, d.Size),
		})
	}
	b.info = deck.EncodeInfoSection(descs)
	return b, nil
}

// MemoryID is the ID of the deck memory element.
func (b *Board) MemoryID() uint32 {
	return b.memoryID
}

// InfoSection returns the encoded info section.
func (b *Board) InfoSection() []byte {
	return append([]byte(nil), b.info...)
}

// Decks decodes the info section back into descriptors by slot.
func (b *Board) Decks() map[int]deck.Descriptor {
	descs, _ := deck.DecodeInfoSection(b.info)
	return descs
}

func (b *Board) find(addr uint32, length int) *window {
	for _, w := range b.windows {
		if w.contains(addr, length) {
			return w
		}
	}
	return nil
}

// ReadMemory implements memlink.Memory.
func (b *Board) ReadMemory(memoryID, addr uint32, length uint16) ([]byte, error) {
	if memoryID != b.memoryID {
		return nil, ErrUnknownMemory
	}
	if uint64(addr)+uint64(length) <= uint64(len(b.info)) {
		return append([]byte(nil), b.info[addr:addr+uint32(length)]...), nil
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	w := b.find(addr, int(length))
	if w == nil {
		return nil, fmt.Errorf("read 0x%08x+%d: %w", addr, length, ErrUnmapped)
	}
	if !w.flags.SupportsRead() || !w.flags.IsStarted() {
		return nil, fmt.Errorf("read %s: %w", w.name, ErrAccessDenied)
	}
	offset := addr - w.base
	return append([]byte(nil), w.data[offset:offset+uint32(length)]...), nil
}

// WriteMemory implements memlink.Memory.
func (b *Board) WriteMemory(memoryID, addr uint32, data []byte) error {
	if memoryID != b.memoryID {
		return ErrUnknownMemory
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	w := b.find(addr, len(data))
	if w == nil {
		return fmt.Errorf("write 0x%08x+%d: %w", addr, len(data), ErrUnmapped)
	}
	if !w.flags.SupportsWrite() || !w.flags.IsStarted() {
		return fmt.Errorf("write %s: %w", w.name, ErrAccessDenied)
	}
	copy(w.data[addr-w.base:], data)
	return nil
}
