package websocket

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// ErrListenerClosed is returned by Accept after Close.
var ErrListenerClosed = errors.New("websocket listener closed")

// Listener accepts websocket connections on an HTTP path.
type Listener struct {
	listener net.Listener
	server   *http.Server
	connCh   chan *ServerConn
	closeCh  chan struct{}
	once     sync.Once
}

// ServerConn is an accepted connection. The HTTP handler serving the
// connection returns after Close.
type ServerConn struct {
	*ReadWriter
	doneCh chan struct{}
	once   sync.Once
}

// Close implements io.Closer.
func (c *ServerConn) Close() (err error) {
	c.once.Do(func() {
		err = c.ReadWriter.Close()
		close(c.doneCh)
	})
	return
}

// Listen starts serving websocket connections at addr and path.
func Listen(addr, path string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		listener: ln,
		connCh:   make(chan *ServerConn),
		closeCh:  make(chan struct{}),
	}
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(l.handle))
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			glog.Errorf("websocket server: %v", err)
		}
	}()
	return l, nil
}

func (l *Listener) handle(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	sc := &ServerConn{ReadWriter: New(conn), doneCh: make(chan struct{})}
	select {
	case l.connCh <- sc:
	case <-l.closeCh:
		return
	}
	select {
	case <-sc.doneCh:
	case <-l.closeCh:
		sc.Close()
	}
}

// Accept waits for the next connection.
func (l *Listener) Accept() (*ServerConn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.closeCh:
		return nil, ErrListenerClosed
	}
}

// Addr returns the listening address.
func (l *Listener) Addr() string {
	return l.listener.Addr().String()
}

// Close stops the listener and closes accepted connections.
func (l *Listener) Close() (err error) {
	l.once.Do(func() {
		close(l.closeCh)
		err = l.server.Close()
	})
	return
}
