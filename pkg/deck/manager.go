package deck

import (
	"sync"

	"github.com/golang/glog"
)

// Lane identifies a request lane of the Manager.
type Lane int

// Lanes
const (
	LaneQuery Lane = iota
	LaneRead
	LaneWrite
)

// String implements fmt.Stringer.
func (l Lane) String() string {
	switch l {
	case LaneQuery:
		return "query"
	case LaneRead:
		return "read"
	case LaneWrite:
		return "write"
	}
	return "unknown"
}

// LaneState is the state of a lane.
type LaneState int

// Lane states
const (
	LaneIdle LaneState = iota
	LaneInFlight
)

// String implements fmt.Stringer.
func (s LaneState) String() string {
	if s == LaneInFlight {
		return "in-flight"
	}
	return "idle"
}

// pending captures everything a completion needs at dispatch time.
type pending struct {
	base     uint32
	absolute uint32
	onQuery  QueryDoneFunc
	onRead   ReadDoneFunc
	onWrite  WriteDoneFunc
	onFailed FailedFunc
}

type lane struct {
	state LaneState
	gen   uint64
	req   pending
}

func (l *lane) begin(req pending) uint64 {
	l.state, l.req = LaneInFlight, req
	l.gen++
	return l.gen
}

// end moves the lane to idle and returns the request it carried.
func (l *lane) end() (req pending, ok bool) {
	if l.state != LaneInFlight {
		return
	}
	req, ok = l.req, true
	l.state, l.req = LaneIdle, pending{}
	return
}

// Manager is the deck memory element. It queries the info section,
// builds Memory handles and arbitrates memory access over the transport.
type Manager struct {
	// Reporter receives failures without a callback, defaults to LogReporter.
	Reporter Reporter

	id        uint32
	transport Transport

	lock  sync.Mutex
	lanes [3]lane
	decks map[int]*Memory
}

// NewManager creates a Manager for the memory element id.
func NewManager(id uint32, transport Transport) *Manager {
	return &Manager{
		Reporter:  LogReporter,
		id:        id,
		transport: transport,
		decks:     make(map[int]*Memory),
	}
}

// MemoryID implements Owner.
func (m *Manager) MemoryID() uint32 {
	return m.id
}

// State returns the current state of a lane.
func (m *Manager) State(l Lane) LaneState {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.lanes[l].state
}

// Decks returns the decks found by the last successful query.
func (m *Manager) Decks() map[int]*Memory {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.decksCopy()
}

func (m *Manager) decksCopy() map[int]*Memory {
	decks := make(map[int]*Memory, len(m.decks))
	for i, d := range m.decks {
		decks[i] = d
	}
	return decks
}

// QueryDecksWith reads the info section and calls onDone with the decks found.
// A query failure has no callback, it's always reported.
func (m *Manager) QueryDecksWith(onDone QueryDoneFunc) error {
	return m.queryDecks(onDone, nil)
}

// QueryDecks reads the info section and returns the pending query.
// A decode failure is delivered with an empty deck map, the same decks
// QueryDecksWith reports.
func (m *Manager) QueryDecks() (*QueryRequest, error) {
	req := &QueryRequest{resultCh: make(chan QueryResult, 1)}
	err := m.queryDecks(func(decks map[int]*Memory) {
		req.resultCh <- QueryResult{Decks: decks}
	}, func(addr uint32, err error) {
		req.resultCh <- QueryResult{Decks: make(map[int]*Memory), Err: err}
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (m *Manager) queryDecks(onDone QueryDoneFunc, onFailed FailedFunc) error {
	m.lock.Lock()
	l := &m.lanes[LaneQuery]
	if l.state != LaneIdle {
		m.lock.Unlock()
		return &LaneBusyError{Lane: LaneQuery}
	}
	m.decks = make(map[int]*Memory)
	gen := l.begin(pending{absolute: InfoSectionAddress, onQuery: onDone, onFailed: onFailed})
	m.lock.Unlock()

	glog.V(4).Infof("deck memory %d: query info section", m.id)
	if err := m.transport.Read(m, InfoSectionAddress, InfoSectionSize); err != nil {
		m.abort(LaneQuery, gen)
		return err
	}
	return nil
}

func (m *Manager) read(base, addr uint32, length uint16, onDone ReadDoneFunc, onFailed FailedFunc) error {
	absolute := base + addr
	m.lock.Lock()
	l := &m.lanes[LaneRead]
	if l.state != LaneIdle {
		m.lock.Unlock()
		return &LaneBusyError{Lane: LaneRead}
	}
	gen := l.begin(pending{base: base, absolute: absolute, onRead: onDone, onFailed: onFailed})
	m.lock.Unlock()

	glog.V(4).Infof("deck memory %d: read 0x%08x len %d", m.id, absolute, length)
	if err := m.transport.Read(m, absolute, length); err != nil {
		m.abort(LaneRead, gen)
		return err
	}
	return nil
}

func (m *Manager) write(base, addr uint32, data []byte, onDone WriteDoneFunc, onFailed FailedFunc) error {
	absolute := base + addr
	m.lock.Lock()
	l := &m.lanes[LaneWrite]
	if l.state != LaneIdle {
		m.lock.Unlock()
		return &LaneBusyError{Lane: LaneWrite}
	}
	gen := l.begin(pending{base: base, absolute: absolute, onWrite: onDone, onFailed: onFailed})
	m.lock.Unlock()

	glog.V(4).Infof("deck memory %d: write 0x%08x len %d", m.id, absolute, len(data))
	if err := m.transport.Write(m, absolute, data, true); err != nil {
		m.abort(LaneWrite, gen)
		return err
	}
	return nil
}

// abort returns a lane to idle after a failed submission, unless the lane
// has moved on to another request in the meantime.
func (m *Manager) abort(ln Lane, gen uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if l := &m.lanes[ln]; l.gen == gen {
		l.end()
	}
}

// Disconnect drops all pending requests and the known decks.
// Callbacks and result channels of dropped requests never fire.
func (m *Manager) Disconnect() {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i := range m.lanes {
		m.lanes[i].end()
	}
	m.decks = make(map[int]*Memory)
	glog.V(2).Infof("deck memory %d: disconnected", m.id)
}

// routeRead decides which lane a read completion at addr belongs to.
// Must be called with lock held.
func (m *Manager) routeRead(addr uint32) Lane {
	if addr == InfoSectionAddress &&
		(m.lanes[LaneQuery].state == LaneInFlight || m.lanes[LaneRead].state != LaneInFlight) {
		return LaneQuery
	}
	return LaneRead
}

// take ends the lane if it carries the request for addr.
// Must be called with lock held.
func (m *Manager) take(ln Lane, addr uint32) (pending, bool) {
	l := &m.lanes[ln]
	if l.state != LaneInFlight {
		glog.V(2).Infof("deck memory %d: drop completion at 0x%08x for idle %s lane", m.id, addr, ln)
		return pending{}, false
	}
	if l.req.absolute != addr {
		glog.V(2).Infof("deck memory %d: drop completion at 0x%08x, %s lane expects 0x%08x",
			m.id, addr, ln, l.req.absolute)
		return pending{}, false
	}
	return l.end()
}

// OnData implements Owner.
func (m *Manager) OnData(memoryID, addr uint32, data []byte) {
	if memoryID != m.id {
		return
	}
	m.lock.Lock()
	ln := m.routeRead(addr)
	req, ok := m.take(ln, addr)
	if !ok {
		m.lock.Unlock()
		return
	}
	if ln == LaneRead {
		m.lock.Unlock()
		if cb := req.onRead; cb != nil {
			cb(req.absolute-req.base, data)
		}
		return
	}

	infos, err := DecodeInfoSection(data)
	m.decks = make(map[int]*Memory, len(infos))
	for i, desc := range infos {
		m.decks[i] = newMemory(m, i, desc)
	}
	decks := m.decksCopy()
	m.lock.Unlock()

	if err != nil {
		m.report(err)
		if cb := req.onFailed; cb != nil {
			cb(InfoSectionAddress, err)
			return
		}
	}
	glog.V(2).Infof("deck memory %d: found %d decks", m.id, len(decks))
	if cb := req.onQuery; cb != nil {
		cb(decks)
	}
}

// OnReadFailed implements Owner.
func (m *Manager) OnReadFailed(memoryID, addr uint32) {
	if memoryID != m.id {
		return
	}
	m.lock.Lock()
	ln := m.routeRead(addr)
	req, ok := m.take(ln, addr)
	m.lock.Unlock()
	if !ok {
		return
	}
	if ln == LaneQuery {
		err := &TransportError{Op: "query", Address: InfoSectionAddress}
		m.report(err)
		if cb := req.onFailed; cb != nil {
			cb(InfoSectionAddress, err)
		}
		return
	}
	m.fail("read", req)
}

// OnWriteDone implements Owner.
func (m *Manager) OnWriteDone(memoryID, addr uint32) {
	if memoryID != m.id {
		return
	}
	m.lock.Lock()
	req, ok := m.take(LaneWrite, addr)
	m.lock.Unlock()
	if !ok {
		return
	}
	glog.V(4).Infof("deck memory %d: write done at 0x%08x", m.id, addr)
	if cb := req.onWrite; cb != nil {
		cb(req.absolute - req.base)
	}
}

// OnWriteFailed implements Owner.
func (m *Manager) OnWriteFailed(memoryID, addr uint32) {
	if memoryID != m.id {
		return
	}
	m.lock.Lock()
	req, ok := m.take(LaneWrite, addr)
	m.lock.Unlock()
	if !ok {
		return
	}
	m.fail("write", req)
}

func (m *Manager) fail(op string, req pending) {
	addr := req.absolute - req.base
	err := &TransportError{Op: op, Address: addr}
	if cb := req.onFailed; cb != nil {
		cb(addr, err)
		return
	}
	m.report(err)
}

func (m *Manager) report(err error) {
	if r := m.Reporter; r != nil {
		r.Report(err)
		return
	}
	LogReporter.Report(err)
}
