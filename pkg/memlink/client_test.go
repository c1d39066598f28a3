package memlink

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/deckmem/pkg/link/stream"
	"github.com/robotalks/deckmem/pkg/memlink/pb"
)

func runClient(t *testing.T, c *Client) (cancel func() error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	return func() error {
		cancelCtx()
		select {
		case err := <-errCh:
			return err
		case <-time.After(time.Second):
			t.Fatal("client stop timeout")
		}
		return nil
	}
}

func TestClientFlushAhead(t *testing.T) {
	l := newChanLink()
	c := NewClient(l)
	owner := newFakeOwner(3)
	require.NoError(t, c.Read(owner, 0x10, 4))
	require.NoError(t, c.Read(owner, 0x20, 4))
	require.NoError(t, c.Write(owner, 0x30, []byte{1, 2}, true))
	stop := runClient(t, c)

	write := l.nextRequest(t)
	assert.Equal(t, pb.Op_WRITE, write.Op)
	assert.Equal(t, uint32(0x30), write.Address)
	assert.Equal(t, []byte{1, 2}, write.Data)
	assert.True(t, write.Flush)
	assert.Equal(t, uint32(3), write.MemoryId)
	first := l.nextRequest(t)
	assert.Equal(t, pb.Op_READ, first.Op)
	assert.Equal(t, uint32(0x10), first.Address)
	assert.Equal(t, uint32(4), first.Length)
	second := l.nextRequest(t)
	assert.Equal(t, uint32(0x20), second.Address)

	l.reply(t, &pb.Reply{Seq: first.Seq, Op: pb.Op_READ, MemoryId: 3, Address: 0x10, Data: []byte{1, 2, 3, 4}})
	assert.Equal(t, ownerEvent{"data", 3, 0x10, []byte{1, 2, 3, 4}}, owner.next(t))
	l.reply(t, &pb.Reply{Seq: 1000})
	l.reply(t, &pb.Reply{Seq: write.Seq, Op: pb.Op_WRITE, MemoryId: 3, Address: 0x30, Error: "denied"})
	assert.Equal(t, ownerEvent{"write-failed", 3, 0x30, nil}, owner.next(t))
	l.reply(t, &pb.Reply{Seq: second.Seq, Op: pb.Op_READ, MemoryId: 3, Address: 0x20, Error: "denied"})
	assert.Equal(t, ownerEvent{"read-failed", 3, 0x20, nil}, owner.next(t))

	assert.Equal(t, context.Canceled, stop())
	assert.Equal(t, ErrClosed, c.Read(owner, 0, 1))
}

func TestClientIgnoresForeignReply(t *testing.T) {
	l := newChanLink()
	c := NewClient(l)
	owner := newFakeOwner(3)
	require.NoError(t, c.Read(owner, 0x1010, 4))
	stop := runClient(t, c)
	req := l.nextRequest(t)

	// replies for other clients sharing the reply topic reuse the sequence.
	foreign := []*pb.Reply{
		{Seq: req.Seq, Op: pb.Op_WRITE, MemoryId: 3, Address: 0x1010},
		{Seq: req.Seq, Op: pb.Op_READ, MemoryId: 9, Address: 0x1010, Data: []byte("other")},
		{Seq: req.Seq, Op: pb.Op_READ, MemoryId: 3, Address: 0, Data: []byte("other")},
	}
	for _, reply := range foreign {
		l.reply(t, reply)
	}
	l.reply(t, &pb.Reply{Seq: req.Seq, Op: pb.Op_READ, MemoryId: 3, Address: 0x1010, Data: []byte{1, 2, 3, 4}})
	assert.Equal(t, ownerEvent{"data", 3, 0x1010, []byte{1, 2, 3, 4}}, owner.next(t))
	select {
	case ev := <-owner.eventCh:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(10 * time.Millisecond):
	}
	assert.Equal(t, context.Canceled, stop())
}

func TestClientWriteCopiesData(t *testing.T) {
	l := newChanLink()
	c := NewClient(l)
	owner := newFakeOwner(1)
	data := []byte{1, 2, 3}
	require.NoError(t, c.Write(owner, 0, data, false))
	data[0] = 0xff
	stop := runClient(t, c)
	assert.Equal(t, []byte{1, 2, 3}, l.nextRequest(t).Data)
	assert.Equal(t, context.Canceled, stop())
}

func TestClientSendFailure(t *testing.T) {
	l := newChanLink()
	l.writeErr = errors.New("broken link")
	c := NewClient(l)
	owner := newFakeOwner(1)
	require.NoError(t, c.Read(owner, 0x40, 1))
	err := c.Run(context.Background())
	assert.Equal(t, l.writeErr, err)
	assert.Equal(t, ownerEvent{"read-failed", 1, 0x40, nil}, owner.next(t))
	assert.Equal(t, ErrClosed, c.Write(owner, 0, []byte{1}, false))
}

func TestClientServer(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	mem := &mapMemory{id: 5, data: make([]byte, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverErrCh := make(chan error, 1)
	go func() { serverErrCh <- NewServer(mem).Serve(ctx, stream.New(serverConn)) }()

	c := NewClient(stream.New(clientConn))
	stop := runClient(t, c)
	owner := newFakeOwner(5)

	require.NoError(t, c.Write(owner, 4, []byte{0xaa, 0xbb}, true))
	assert.Equal(t, ownerEvent{"write-done", 5, 4, nil}, owner.next(t))
	require.NoError(t, c.Read(owner, 3, 4))
	assert.Equal(t, ownerEvent{"data", 5, 3, []byte{0, 0xaa, 0xbb, 0}}, owner.next(t))
	require.NoError(t, c.Read(owner, 14, 4))
	assert.Equal(t, ownerEvent{"read-failed", 5, 14, nil}, owner.next(t))
	require.NoError(t, c.Write(owner, 15, []byte{1, 2}, false))
	assert.Equal(t, ownerEvent{"write-failed", 5, 15, nil}, owner.next(t))

	assert.Equal(t, context.Canceled, stop())
	select {
	case err := <-serverErrCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("server stop timeout")
	}
}

func TestClientServerMaxRead(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	mem := &mapMemory{id: 5, data: make([]byte, 0x10000)}
	for n := range mem.data {
		mem.data[n] = byte(n)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewServer(mem).Serve(ctx, stream.New(serverConn))

	c := NewClient(stream.New(clientConn))
	stop := runClient(t, c)
	owner := newFakeOwner(5)

	require.NoError(t, c.Read(owner, 0, 0xffff))
	ev := owner.next(t)
	require.Equal(t, "data", ev.kind)
	assert.Equal(t, mem.data[:0xffff], ev.data)

	// the link survives.
	require.NoError(t, c.Read(owner, 0xfffe, 2))
	assert.Equal(t, ownerEvent{"data", 5, 0xfffe, []byte{0xfe, 0xff}}, owner.next(t))
	assert.Equal(t, context.Canceled, stop())
}

func TestServerHandle(t *testing.T) {
	s := NewServer(&mapMemory{id: 1, data: []byte{1, 2, 3}})
	reply := s.handle(&pb.Request{Seq: 9, Op: pb.Op_READ, MemoryId: 1, Address: 1, Length: 2})
	assert.Equal(t, &pb.Reply{Seq: 9, Op: pb.Op_READ, MemoryId: 1, Address: 1, Data: []byte{2, 3}}, reply)

	reply = s.handle(&pb.Request{Seq: 10, Op: pb.Op_READ, MemoryId: 1, Length: 0x10000})
	assert.NotEmpty(t, reply.Error)
	reply = s.handle(&pb.Request{Seq: 11, MemoryId: 1})
	assert.Equal(t, "unknown op UNKNOWN", reply.Error)
	reply = s.handle(&pb.Request{Seq: 12, Op: pb.Op_READ, MemoryId: 2, Length: 1})
	assert.Equal(t, errOutOfRange.Error(), reply.Error)
	assert.Nil(t, reply.Data)
}
