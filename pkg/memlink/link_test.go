package memlink

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/deckmem/pkg/memlink/pb"
)

type chanLink struct {
	readCh   chan []byte
	writeCh  chan []byte
	closeCh  chan struct{}
	writeErr error
	once     sync.Once
}

func newChanLink() *chanLink {
	return &chanLink{
		readCh:  make(chan []byte, 16),
		writeCh: make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

func (l *chanLink) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-l.readCh:
		return pkt, nil
	case <-l.closeCh:
		return nil, io.EOF
	}
}

func (l *chanLink) WritePacket(pkt []byte) error {
	if l.writeErr != nil {
		return l.writeErr
	}
	select {
	case l.writeCh <- pkt:
		return nil
	case <-l.closeCh:
		return io.ErrClosedPipe
	}
}

func (l *chanLink) Close() error {
	l.once.Do(func() { close(l.closeCh) })
	return nil
}

func (l *chanLink) nextRequest(t *testing.T) *pb.Request {
	select {
	case pkt := <-l.writeCh:
		var req pb.Request
		require.NoError(t, proto.Unmarshal(pkt, &req))
		return &req
	case <-time.After(time.Second):
		t.Fatal("request timeout")
	}
	return nil
}

func (l *chanLink) reply(t *testing.T, reply *pb.Reply) {
	pkt, err := proto.Marshal(reply)
	require.NoError(t, err)
	l.readCh <- pkt
}

type ownerEvent struct {
	kind     string
	memoryID uint32
	addr     uint32
	data     []byte
}

type fakeOwner struct {
	id      uint32
	eventCh chan ownerEvent
}

func newFakeOwner(id uint32) *fakeOwner {
	return &fakeOwner{id: id, eventCh: make(chan ownerEvent, 16)}
}

func (o *fakeOwner) MemoryID() uint32 { return o.id }

func (o *fakeOwner) OnData(memoryID, addr uint32, data []byte) {
	o.eventCh <- ownerEvent{"data", memoryID, addr, data}
}

func (o *fakeOwner) OnReadFailed(memoryID, addr uint32) {
	o.eventCh <- ownerEvent{"read-failed", memoryID, addr, nil}
}

func (o *fakeOwner) OnWriteDone(memoryID, addr uint32) {
	o.eventCh <- ownerEvent{"write-done", memoryID, addr, nil}
}

func (o *fakeOwner) OnWriteFailed(memoryID, addr uint32) {
	o.eventCh <- ownerEvent{"write-failed", memoryID, addr, nil}
}

func (o *fakeOwner) next(t *testing.T) ownerEvent {
	select {
	case ev := <-o.eventCh:
		return ev
	case <-time.After(time.Second):
		t.Fatal("owner event timeout")
	}
	return ownerEvent{}
}

type mapMemory struct {
	lock sync.Mutex
	id   uint32
	data []byte
}

var errOutOfRange = errors.New("out of range")

func (m *mapMemory) ReadMemory(memoryID, addr uint32, length uint16) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if memoryID != m.id || int(addr)+int(length) > len(m.data) {
		return nil, errOutOfRange
	}
	return append([]byte(nil), m.data[addr:int(addr)+int(length)]...), nil
}

func (m *mapMemory) WriteMemory(memoryID, addr uint32, data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if memoryID != m.id || int(addr)+len(data) > len(m.data) {
		return errOutOfRange
	}
	copy(m.data[addr:], data)
	return nil
}
