package deck

import "fmt"

// Memory gives access to the memory window of one deck.
// It's immutable and routes all requests through its Manager.
type Memory struct {
	desc    Descriptor
	index   int
	manager *Manager
}

func newMemory(m *Manager, index int, desc Descriptor) *Memory {
	return &Memory{desc: desc, index: index, manager: m}
}

// Index is the slot index in the info section.
func (d *Memory) Index() int { return d.index }

// Descriptor returns the decoded descriptor.
func (d *Memory) Descriptor() Descriptor { return d.desc }

// Name is the deck name.
func (d *Memory) Name() string { return d.desc.Name }

// Flags returns the capability flags.
func (d *Memory) Flags() Flags { return d.desc.Flags }

// BaseAddress is the absolute address of the memory window.
func (d *Memory) BaseAddress() uint32 { return d.desc.BaseAddress }

// RequiredHash is the hash of the firmware the deck requires.
func (d *Memory) RequiredHash() uint32 { return d.desc.RequiredHash }

// RequiredLength is the length of the firmware the deck requires.
func (d *Memory) RequiredLength() uint32 { return d.desc.RequiredLength }

// IsValid see Flags.IsValid.
func (d *Memory) IsValid() bool { return d.desc.Flags.IsValid() }

// IsStarted see Flags.IsStarted.
func (d *Memory) IsStarted() bool { return d.desc.Flags.IsStarted() }

// SupportsRead see Flags.SupportsRead.
func (d *Memory) SupportsRead() bool { return d.desc.Flags.SupportsRead() }

// SupportsWrite see Flags.SupportsWrite.
func (d *Memory) SupportsWrite() bool { return d.desc.Flags.SupportsWrite() }

// SupportsUpgrade see Flags.SupportsUpgrade.
func (d *Memory) SupportsUpgrade() bool { return d.desc.Flags.SupportsUpgrade() }

// IsUpgradeRequired see Flags.IsUpgradeRequired.
func (d *Memory) IsUpgradeRequired() bool { return d.desc.Flags.IsUpgradeRequired() }

// IsBootloaderActive see Flags.IsBootloaderActive.
func (d *Memory) IsBootloaderActive() bool { return d.desc.Flags.IsBootloaderActive() }

// String implements fmt.Stringer.
func (d *Memory) String() string {
	return fmt.Sprintf("%d: %s base=0x%08x flags=%s", d.index, d.desc.Name, d.desc.BaseAddress, d.desc.Flags)
}

func (d *Memory) check(op string, supported bool) error {
	if !supported {
		return &CapabilityError{Deck: d.desc.Name, Op: op}
	}
	if !d.IsStarted() {
		return ErrNotReady
	}
	return nil
}

// ReadWith reads length bytes at addr, relative to the deck base address.
// onFailed is optional, failures are reported by the manager without it.
func (d *Memory) ReadWith(addr uint32, length uint16, onDone ReadDoneFunc, onFailed FailedFunc) error {
	if err := d.check("read", d.SupportsRead()); err != nil {
		return err
	}
	return d.manager.read(d.desc.BaseAddress, addr, length, onDone, onFailed)
}

// WriteWith writes data at addr, relative to the deck base address.
// The write is delivered ahead of queued transport traffic.
// onFailed is optional, failures are reported by the manager without it.
func (d *Memory) WriteWith(addr uint32, data []byte, onDone WriteDoneFunc, onFailed FailedFunc) error {
	if err := d.check("write", d.SupportsWrite()); err != nil {
		return err
	}
	return d.manager.write(d.desc.BaseAddress, addr, data, onDone, onFailed)
}

// Read reads length bytes at addr and returns the pending request.
func (d *Memory) Read(addr uint32, length uint16) (*ReadRequest, error) {
	req := &ReadRequest{resultCh: make(chan ReadResult, 1)}
	err := d.ReadWith(addr, length, func(addr uint32, data []byte) {
		req.resultCh <- ReadResult{Address: addr, Data: data}
	}, func(addr uint32, err error) {
		req.resultCh <- ReadResult{Address: addr, Err: err}
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Write writes data at addr and returns the pending request.
func (d *Memory) Write(addr uint32, data []byte) (*WriteRequest, error) {
	req := &WriteRequest{resultCh: make(chan WriteResult, 1)}
	err := d.WriteWith(addr, data, func(addr uint32) {
		req.resultCh <- WriteResult{Address: addr}
	}, func(addr uint32, err error) {
		req.resultCh <- WriteResult{Address: addr, Err: err}
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
