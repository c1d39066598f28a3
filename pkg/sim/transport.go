package sim

import (
	"github.com/golang/glog"

	"github.com/robotalks/deckmem/pkg/deck"
)

// Transport implements deck.Transport on a Board in process.
// Completions are delivered from a separate goroutine.
type Transport struct {
	Board *Board
}

// NewTransport creates a Transport for the board.
func NewTransport(b *Board) *Transport {
	return &Transport{Board: b}
}

// Read implements deck.Transport.
func (t *Transport) Read(owner deck.Owner, addr uint32, length uint16) error {
	id := owner.MemoryID()
	go func() {
		data, err := t.Board.ReadMemory(id, addr, length)
		if err != nil {
			glog.V(2).Infof("sim: %v", err)
			owner.OnReadFailed(id, addr)
			return
		}
		owner.OnData(id, addr, data)
	}()
	return nil
}

// Write implements deck.Transport. There is no queue, flushAhead is ignored.
func (t *Transport) Write(owner deck.Owner, addr uint32, data []byte, flushAhead bool) error {
	id := owner.MemoryID()
	data = append([]byte(nil), data...)
	go func() {
		if err := t.Board.WriteMemory(id, addr, data); err != nil {
			glog.V(2).Infof("sim: %v", err)
			owner.OnWriteFailed(id, addr)
			return
		}
		owner.OnWriteDone(id, addr)
	}()
	return nil
}
