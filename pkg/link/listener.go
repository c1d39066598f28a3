package link

import (
	"errors"
	"net"
	"sync"

	"github.com/robotalks/deckmem/pkg/link/stream"
	"github.com/robotalks/deckmem/pkg/link/websocket"
)

// ErrListenerClosed is returned by Accept after Close.
var ErrListenerClosed = errors.New("listener closed")

type tcpListener struct {
	net.Listener
}

func (l *tcpListener) Accept() (Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return stream.New(conn), nil
}

func (l *tcpListener) Addr() string {
	return l.Listener.Addr().String()
}

type wsListener struct {
	*websocket.Listener
}

func (l *wsListener) Accept() (Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// singleListener hands out one Conn, then blocks until closed.
type singleListener struct {
	conn    Conn
	addr    string
	connCh  chan Conn
	closeCh chan struct{}
	once    sync.Once
}

func newSingleListener(conn Conn, addr string) *singleListener {
	l := &singleListener{
		conn:    conn,
		addr:    addr,
		connCh:  make(chan Conn, 1),
		closeCh: make(chan struct{}),
	}
	l.connCh <- conn
	return l
}

func (l *singleListener) Accept() (Conn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.closeCh:
		return nil, ErrListenerClosed
	}
}

func (l *singleListener) Addr() string {
	return l.addr
}

func (l *singleListener) Close() (err error) {
	l.once.Do(func() {
		close(l.closeCh)
		err = l.conn.Close()
	})
	return
}
