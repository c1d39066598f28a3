// Package link provides packet links carrying memlink traffic.
package link

import "io"

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Conn is a PacketReadWriter which can be closed.
type Conn interface {
	PacketReadWriter
	io.Closer
}

// Listener accepts incoming links.
type Listener interface {
	Accept() (Conn, error)
	Close() error
	Addr() string
}
