package memlink

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/deckmem/pkg/framework"
	"github.com/robotalks/deckmem/pkg/link"
	"github.com/robotalks/deckmem/pkg/memlink/pb"
)

// Memory is the backend answering memlink requests.
type Memory interface {
	ReadMemory(memoryID, addr uint32, length uint16) ([]byte, error)
	WriteMemory(memoryID, addr uint32, data []byte) error
}

// Server serves memlink requests from Memory.
type Server struct {
	Memory Memory
}

// NewServer creates a Server.
func NewServer(mem Memory) *Server {
	return &Server{Memory: mem}
}

// Serve answers requests on one link until it fails or ctx is canceled.
func (s *Server) Serve(ctx context.Context, rw link.PacketReadWriter) error {
	closer := fx.CloserFunc(func() error {
		if c, ok := rw.(io.Closer); ok {
			return c.Close()
		}
		return nil
	})
	return fx.RunWithContextCloser(ctx, closer, func() error {
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return err
			}
			var req pb.Request
			if err := proto.Unmarshal(pkt, &req); err != nil {
				glog.Warningf("memlink: invalid request: %v", err)
				continue
			}
			glog.V(4).Infof("memlink: serve %v", &req)
			reply := s.handle(&req)
			out, err := proto.Marshal(reply)
			if err != nil {
				return err
			}
			if err = rw.WritePacket(out); err != nil {
				return err
			}
		}
	})
}

func (s *Server) handle(req *pb.Request) *pb.Reply {
	reply := &pb.Reply{
		Seq:      req.Seq,
		Op:       req.Op,
		MemoryId: req.MemoryId,
		Address:  req.Address,
	}
	var err error
	switch req.Op {
	case pb.Op_READ:
		if req.Length > 0xffff {
			err = fmt.Errorf("read length %d too large", req.Length)
			break
		}
		reply.Data, err = s.Memory.ReadMemory(req.MemoryId, req.Address, uint16(req.Length))
	case pb.Op_WRITE:
		err = s.Memory.WriteMemory(req.MemoryId, req.Address, req.Data)
	default:
		err = fmt.Errorf("unknown op %v", req.Op)
	}
	if err != nil {
		reply.Data, reply.Error = nil, err.Error()
	}
	return reply
}

// ServeListener serves every link accepted from ln until ctx is canceled.
func (s *Server) ServeListener(ctx context.Context, ln link.Listener) error {
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("memlink: link accepted on %s", ln.Addr())
			go func(conn link.Conn) {
				err := s.Serve(ctx, conn)
				glog.Infof("memlink: link closed: %v", err)
			}(conn)
		}
	})
}
