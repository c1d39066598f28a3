package link

import (
	"fmt"
	"net"
	"net/url"

	"github.com/robotalks/deckmem/pkg/link/mqtt"
	"github.com/robotalks/deckmem/pkg/link/stream"
	"github.com/robotalks/deckmem/pkg/link/websocket"
)

// DefaultEndpoint is the MQTT endpoint name when the URL doesn't specify one.
const DefaultEndpoint = "mainboard"

// Dial connects a memlink client. Supported URLs:
//   tcp://host:port
//   ws://host:port/path
//   mqtt://host:port/topic-prefix/?endpoint=name&client-id=id
func Dial(rawURL string) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	switch u.Scheme {
	case "tcp":
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return stream.New(conn), nil
	case "ws", "wss":
		conn, err := websocket.Dial(rawURL)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "mqtt", "ssl":
		conn, err := dialMQTT(u, rawURL, false)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
}

func dialMQTT(u *url.URL, rawURL string, server bool) (*mqtt.ReadWriter, error) {
	endpoint := u.Query().Get("endpoint")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	opts, prefix, err := mqtt.ClientOptionsFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	q := mqtt.NewQueue(opts, prefix)
	if err := q.Connect(); err != nil {
		return nil, err
	}
	rw := mqtt.NewPacketReadWriter(q)
	rw.OwnsQueue = true
	if server {
		rw.ForServer(endpoint)
	} else {
		rw.ForClient(endpoint)
	}
	if err := rw.Open(); err != nil {
		rw.Close()
		return nil, err
	}
	return rw, nil
}

// Listen accepts memlink clients. Supported URLs:
//   tcp://host:port
//   ws://host:port/path
//   mqtt://host:port/topic-prefix/?endpoint=name
// An MQTT listener accepts exactly one link: all clients share the
// endpoint topics through the broker.
func Listen(rawURL string) (Listener, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	switch u.Scheme {
	case "tcp":
		ln, err := net.Listen("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return &tcpListener{ln}, nil
	case "ws":
		ln, err := websocket.Listen(u.Host, u.Path)
		if err != nil {
			return nil, err
		}
		return &wsListener{ln}, nil
	case "mqtt", "ssl":
		rw, err := dialMQTT(u, rawURL, true)
		if err != nil {
			return nil, err
		}
		return newSingleListener(rw, u.Host), nil
	default:
		return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
}
