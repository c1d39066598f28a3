package deck

import "github.com/golang/glog"

// Owner receives completions for requests issued to a Transport.
// Each completion carries the memory ID of the requesting owner so a
// transport may broadcast to all owners.
type Owner interface {
	MemoryID() uint32
	OnData(memoryID, addr uint32, data []byte)
	OnReadFailed(memoryID, addr uint32)
	OnWriteDone(memoryID, addr uint32)
	OnWriteFailed(memoryID, addr uint32)
}

// Transport performs asynchronous memory access over the link.
// Read and Write return immediately; the result is delivered later to
// the owner exactly once. A returned error means the request was not
// submitted and no completion will follow.
type Transport interface {
	Read(owner Owner, addr uint32, length uint16) error
	// Write with flushAhead set is delivered ahead of queued traffic.
	Write(owner Owner, addr uint32, data []byte, flushAhead bool) error
}

// Reporter receives failures which have no callback to go to.
type Reporter interface {
	Report(error)
}

// ReportFunc is func form of Reporter.
type ReportFunc func(error)

// Report implements Reporter.
func (f ReportFunc) Report(err error) {
	f(err)
}

// LogReporter reports errors to glog.
var LogReporter = ReportFunc(func(err error) {
	glog.Errorf("deck memory: %v", err)
})

// QueryDoneFunc is called with the decks found by a query.
type QueryDoneFunc func(decks map[int]*Memory)

// ReadDoneFunc is called with the data of a completed read.
// addr is relative to the deck base address.
type ReadDoneFunc func(addr uint32, data []byte)

// WriteDoneFunc is called when a write completes.
type WriteDoneFunc func(addr uint32)

// FailedFunc is called when the transport fails a request.
type FailedFunc func(addr uint32, err error)

// QueryResult is the result of a query.
type QueryResult struct {
	Decks map[int]*Memory
	Err   error
}

// ReadResult is the result of a read.
type ReadResult struct {
	Address uint32
	Data    []byte
	Err     error
}

// WriteResult is the result of a write.
type WriteResult struct {
	Address uint32
	Err     error
}

// QueryRequest is a pending query.
type QueryRequest struct {
	resultCh chan QueryResult
}

// ResultChan returns the chan to retrieve the result.
// Nothing is delivered if the manager disconnects first.
func (r *QueryRequest) ResultChan() <-chan QueryResult {
	return r.resultCh
}

// ReadRequest is a pending read.
type ReadRequest struct {
	resultCh chan ReadResult
}

// ResultChan returns the chan to retrieve the result.
// Nothing is delivered if the manager disconnects first.
func (r *ReadRequest) ResultChan() <-chan ReadResult {
	return r.resultCh
}

// WriteRequest is a pending write.
type WriteRequest struct {
	resultCh chan WriteResult
}

// ResultChan returns the chan to retrieve the result.
// Nothing is delivered if the manager disconnects first.
func (r *WriteRequest) ResultChan() <-chan WriteResult {
	return r.resultCh
}
