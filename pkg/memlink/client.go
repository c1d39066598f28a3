package memlink

import (
	"container/list"
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/deckmem/pkg/deck"
	fx "github.com/robotalks/deckmem/pkg/framework"
	"github.com/robotalks/deckmem/pkg/link"
	"github.com/robotalks/deckmem/pkg/memlink/pb"
)

// ErrClosed indicates the client is no longer running.
var ErrClosed = errors.New("memlink client closed")

// Client implements deck.Transport over a PacketReadWriter.
type Client struct {
	ReadWriter link.PacketReadWriter

	lock    sync.Mutex
	seq     uint32
	closed  bool
	owners  map[uint32]deck.Owner
	queue   list.List
	pending map[uint32]*pb.Request
	wakeCh  chan struct{}
}

// NewClient creates a Client on the link. Sequence numbers start at a
// random value so clients sharing a reply topic rarely collide.
func NewClient(rw link.PacketReadWriter) *Client {
	return &Client{
		ReadWriter: rw,
		seq:        rand.New(rand.NewSource(time.Now().UnixNano())).Uint32(),
		owners:     make(map[uint32]deck.Owner),
		pending:    make(map[uint32]*pb.Request),
		wakeCh:     make(chan struct{}, 1),
	}
}

// Read implements deck.Transport.
func (c *Client) Read(owner deck.Owner, addr uint32, length uint16) error {
	return c.enqueue(owner, &pb.Request{
		Op:      pb.Op_READ,
		Address: addr,
		Length:  uint32(length),
	}, false)
}

// Write implements deck.Transport.
func (c *Client) Write(owner deck.Owner, addr uint32, data []byte, flushAhead bool) error {
	return c.enqueue(owner, &pb.Request{
		Op:      pb.Op_WRITE,
		Address: addr,
		Data:    append([]byte(nil), data...),
		Flush:   flushAhead,
	}, flushAhead)
}

func (c *Client) enqueue(owner deck.Owner, req *pb.Request, ahead bool) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	req.Seq, req.MemoryId = c.seq, owner.MemoryID()
	c.owners[req.MemoryId] = owner
	if ahead {
		c.queue.PushFront(req)
	} else {
		c.queue.PushBack(req)
	}
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
	return nil
}

// Run implements Runnable. It sends queued requests and dispatches
// replies until the link fails or ctx is canceled. Requests still pending
// when Run returns are dropped without completion, the owners are expected
// to be disconnected.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sendErrCh := make(chan error, 1)
	go func() {
		sendErrCh <- c.sendLoop(ctx)
		cancel()
	}()
	err := fx.RunWithContextCloser(ctx, fx.CloserFunc(c.closeLink), c.recvLoop)
	cancel()
	if sendErr := <-sendErrCh; sendErr != nil {
		err = sendErr
	}
	c.drop()
	return err
}

func (c *Client) closeLink() error {
	if closer, ok := c.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) drop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	if n := c.queue.Len() + len(c.pending); n > 0 {
		glog.Warningf("memlink: dropped %d requests", n)
	}
	c.queue.Init()
	c.pending = make(map[uint32]*pb.Request)
}

func (c *Client) next() *pb.Request {
	c.lock.Lock()
	defer c.lock.Unlock()
	elm := c.queue.Front()
	if elm == nil {
		return nil
	}
	req := c.queue.Remove(elm).(*pb.Request)
	c.pending[req.Seq] = req
	return req
}

func (c *Client) sendLoop(ctx context.Context) error {
	for {
		req := c.next()
		if req == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wakeCh:
			}
			continue
		}
		pkt, err := proto.Marshal(req)
		if err == nil {
			glog.V(4).Infof("memlink: SND %v", req)
			err = c.ReadWriter.WritePacket(pkt)
		}
		if err != nil {
			if c.complete(errorReply(req, err)) {
				glog.Errorf("memlink: send request %d failed: %v", req.Seq, err)
			}
			return err
		}
	}
}

func (c *Client) recvLoop() error {
	for {
		pkt, err := c.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		var reply pb.Reply
		if err := proto.Unmarshal(pkt, &reply); err != nil {
			glog.Warningf("memlink: invalid reply: %v", err)
			continue
		}
		glog.V(4).Infof("memlink: RCV %v", &reply)
		if !c.complete(&reply) {
			glog.V(2).Infof("memlink: drop reply %d without matching request", reply.Seq)
		}
	}
}

func errorReply(req *pb.Request, err error) *pb.Reply {
	return &pb.Reply{
		Seq:      req.Seq,
		Op:       req.Op,
		MemoryId: req.MemoryId,
		Address:  req.Address,
		Error:    err.Error(),
	}
}

// answers reports whether reply is for req. Sequence numbers alone are not
// enough as MQTT clients of one endpoint share the reply topic.
func answers(reply *pb.Reply, req *pb.Request) bool {
	return reply.Op == req.Op &&
		reply.MemoryId == req.MemoryId &&
		reply.Address == req.Address
}

// complete dispatches the reply to the owner of the matching request.
func (c *Client) complete(reply *pb.Reply) bool {
	c.lock.Lock()
	req := c.pending[reply.Seq]
	if req == nil || !answers(reply, req) {
		c.lock.Unlock()
		return false
	}
	delete(c.pending, reply.Seq)
	owner := c.owners[req.MemoryId]
	c.lock.Unlock()
	if owner == nil {
		return false
	}

	ok := reply.Error == ""
	if !ok {
		glog.V(2).Infof("memlink: %s 0x%08x failed: %s", req.Op, req.Address, reply.Error)
	}
	switch req.Op {
	case pb.Op_READ:
		if ok {
			owner.OnData(req.MemoryId, req.Address, reply.Data)
		} else {
			owner.OnReadFailed(req.MemoryId, req.Address)
		}
	case pb.Op_WRITE:
		if ok {
			owner.OnWriteDone(req.MemoryId, req.Address)
		} else {
			owner.OnWriteFailed(req.MemoryId, req.Address)
		}
	}
	return true
}
