package mqtt

import (
	"io"
	"sync"
)

// Topic suffixes of a memlink endpoint.
const (
	RequestTopic = "req"
	ReplyTopic   = "rep"
)

// ReadWriter implements PacketReadWriter on a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	// OwnsQueue closes Queue together with the ReadWriter.
	OwnsQueue bool

	packetCh  chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	sub       *Subscription
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		closeCh:  make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForClient sets topics using default convention for memlink clients:
// SubTopic = endpoint/rep
// PubTopic = endpoint/req
func (p *ReadWriter) ForClient(endpoint string) *ReadWriter {
	return p.WithTopics(endpoint+"/"+ReplyTopic, endpoint+"/"+RequestTopic)
}

// ForServer sets topics using default convention for memlink servers:
// SubTopic = endpoint/req
// PubTopic = endpoint/rep
func (p *ReadWriter) ForServer(endpoint string) *ReadWriter {
	return p.WithTopics(endpoint+"/"+RequestTopic, endpoint+"/"+ReplyTopic)
}

// Open subscribes SubTopic.
func (p *ReadWriter) Open() error {
	p.sub = p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	p.sub.Token.Wait()
	return p.sub.Token.Error()
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.closeCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *ReadWriter) Close() (err error) {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		if p.sub != nil {
			err = p.sub.Close()
		}
		if p.OwnsQueue {
			p.Queue.Close()
		}
	})
	return
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.closeCh:
	}
}
