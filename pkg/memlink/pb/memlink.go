// Package pb defines the protobuf messages of the memlink protocol.
package pb

import "github.com/golang/protobuf/proto"

// Op is the memory operation of a request.
type Op int32

// Operations
const (
	Op_UNKNOWN Op = 0
	Op_READ    Op = 1
	Op_WRITE   Op = 2
)

var opNames = map[Op]string{
	Op_UNKNOWN: "UNKNOWN",
	Op_READ:    "READ",
	Op_WRITE:   "WRITE",
}

func (x Op) String() string {
	if name, ok := opNames[x]; ok {
		return name
	}
	return "UNKNOWN"
}

// Request is a memory access request.
type Request struct {
	Seq      uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Op       Op     `protobuf:"varint,2,opt,name=op,proto3,enum=memlink.v1.Op" json:"op,omitempty"`
	MemoryId uint32 `protobuf:"varint,3,opt,name=memory_id,json=memoryId,proto3" json:"memory_id,omitempty"`
	Address  uint32 `protobuf:"varint,4,opt,name=address,proto3" json:"address,omitempty"`
	Length   uint32 `protobuf:"varint,5,opt,name=length,proto3" json:"length,omitempty"`
	Data     []byte `protobuf:"bytes,6,opt,name=data,proto3" json:"data,omitempty"`
	Flush    bool   `protobuf:"varint,7,opt,name=flush,proto3" json:"flush,omitempty"`
}

func (m *Request) Reset()         { *m = Request{} }
func (m *Request) String() string { return proto.CompactTextString(m) }
func (*Request) ProtoMessage()    {}

// Reply is the reply to a Request. An empty Error means success.
type Reply struct {
	Seq      uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Op       Op     `protobuf:"varint,2,opt,name=op,proto3,enum=memlink.v1.Op" json:"op,omitempty"`
	MemoryId uint32 `protobuf:"varint,3,opt,name=memory_id,json=memoryId,proto3" json:"memory_id,omitempty"`
	Address  uint32 `protobuf:"varint,4,opt,name=address,proto3" json:"address,omitempty"`
	Data     []byte `protobuf:"bytes,5,opt,name=data,proto3" json:"data,omitempty"`
	Error    string `protobuf:"bytes,6,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *Reply) Reset()         { *m = Reply{} }
func (m *Reply) String() string { return proto.CompactTextString(m) }
func (*Reply) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("memlink.v1.Op", opNames32(), opValues())
	proto.RegisterType((*Request)(nil), "memlink.v1.Request")
	proto.RegisterType((*Reply)(nil), "memlink.v1.Reply")
}

func opNames32() map[int32]string {
	names := make(map[int32]string, len(opNames))
	for op, name := range opNames {
		names[int32(op)] = name
	}
	return names
}

func opValues() map[string]int32 {
	values := make(map[string]int32, len(opNames))
	for op, name := range opNames {
		values[name] = int32(op)
	}
	return values
}
