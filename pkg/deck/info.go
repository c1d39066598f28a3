package deck

import (
	"bytes"
	"encoding/binary"
)

// Info section geometry.
const (
	MaxDecks           = 4
	SupportedVersion   = 1
	InfoSectionAddress = 0
	SlotSize           = 0x20
	NameSize           = 19
	InfoSectionSize    = 1 + MaxDecks*SlotSize
)

// Offsets inside a slot.
const (
	slotFlags          = 0
	slotRequiredHash   = 1
	slotRequiredLength = 5
	slotBaseAddress    = 9
	slotName           = 13
)

// Descriptor describes a deck found in the info section.
type Descriptor struct {
	Flags          Flags
	RequiredHash   uint32
	RequiredLength uint32
	BaseAddress    uint32
	Name           string
}

// DecodeInfoSection parses the info section into descriptors keyed by slot
// index. Slots without the valid bit are skipped. On error, an empty map is
// returned along with the error.
func DecodeInfoSection(data []byte) (map[int]Descriptor, error) {
	result := make(map[int]Descriptor)
	if len(data) < 1 {
		return result, ErrShortInfoSection
	}
	if data[0] != SupportedVersion {
		return result, &VersionError{Version: data[0]}
	}
	if len(data) < InfoSectionSize {
		return result, ErrShortInfoSection
	}
	for i := 0; i < MaxDecks; i++ {
		start := 1 + SlotSize*i
		if desc, ok := decodeSlot(data[start : start+SlotSize]); ok {
			result[i] = desc
		}
	}
	return result, nil
}

func decodeSlot(slot []byte) (desc Descriptor, valid bool) {
	desc.Flags = Flags(slot[slotFlags])
	if !desc.Flags.IsValid() {
		return Descriptor{}, false
	}
	desc.RequiredHash = binary.LittleEndian.Uint32(slot[slotRequiredHash:])
	desc.RequiredLength = binary.LittleEndian.Uint32(slot[slotRequiredLength:])
	desc.BaseAddress = binary.LittleEndian.Uint32(slot[slotBaseAddress:])
	name := slot[slotName : slotName+NameSize]
	if n := bytes.IndexByte(name, 0); n >= 0 {
		name = name[:n]
	}
	desc.Name = string(name)
	return desc, true
}

// EncodeInfoSection builds the info section from descriptors keyed by slot
// index. Indexes outside [0, MaxDecks) are ignored and names are truncated
// to fit the name field.
func EncodeInfoSection(decks map[int]Descriptor) []byte {
	data := make([]byte, InfoSectionSize)
	data[0] = SupportedVersion
	for i, desc := range decks {
		if i < 0 || i >= MaxDecks {
			continue
		}
		slot := data[1+SlotSize*i : 1+SlotSize*(i+1)]
		slot[slotFlags] = byte(desc.Flags)
		binary.LittleEndian.PutUint32(slot[slotRequiredHash:], desc.RequiredHash)
		binary.LittleEndian.PutUint32(slot[slotRequiredLength:], desc.RequiredLength)
		binary.LittleEndian.PutUint32(slot[slotBaseAddress:], desc.BaseAddress)
		name := desc.Name
		if len(name) > NameSize-1 {
			name = name[:NameSize-1]
		}
		copy(slot[slotName:], name)
	}
	return data
}
