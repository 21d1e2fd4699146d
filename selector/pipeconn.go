package selector

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/panjf2000/gnet/v2"
)

// pipeConn adapts one gnet.Conn to the net.Conn interface SocketWrapper and
// the filter chain expect. Reads are served from a byteQueue OnTraffic
// feeds; writes are bridged through gnet's AsyncWritev, the only
// cross-goroutine-safe way to send on a gnet connection, and block the
// caller until the write completes so Processor sees ordinary synchronous
// net.Conn.Write semantics.
type pipeConn struct {
	gc    gnet.Conn
	laddr net.Addr
	raddr net.Addr

	in *byteQueue

	closeOnce sync.Once
	closed    chan struct{}
}

func newPipeConn(gc gnet.Conn) *pipeConn {
	return &pipeConn{
		gc:     gc,
		laddr:  gc.LocalAddr(),
		raddr:  gc.RemoteAddr(),
		in:     newByteQueue(),
		closed: make(chan struct{}),
	}
}

func (p *pipeConn) Read(b []byte) (int, error) { return p.in.read(b) }

func (p *pipeConn) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	// AsyncWritev retains the slice until the callback fires, which can
	// outlive this call; it must reference a stable backing array.
	data := append([]byte(nil), b...)
	done := make(chan error, 1)
	err := p.gc.AsyncWritev([][]byte{data}, func(_ gnet.Conn, werr error) error {
		done <- werr
		return nil
	})
	if err != nil {
		return 0, err
	}
	select {
	case werr := <-done:
		if werr != nil {
			return 0, werr
		}
		return len(b), nil
	case <-p.closed:
		return 0, net.ErrClosed
	}
}

func (p *pipeConn) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.in.closeWithError(io.EOF)
		_ = p.gc.Close()
	})
	return nil
}

func (p *pipeConn) LocalAddr() net.Addr  { return p.laddr }
func (p *pipeConn) RemoteAddr() net.Addr { return p.raddr }

// SetDeadline/SetReadDeadline both arm the queue's read deadline; the
// engine only ever calls SetReadDeadline (InputBuffer.fill), never a
// write deadline, since
// writes already complete synchronously through AsyncWritev's callback.
func (p *pipeConn) SetDeadline(t time.Time) error {
	p.in.setDeadline(t)
	return nil
}

func (p *pipeConn) SetReadDeadline(t time.Time) error {
	p.in.setDeadline(t)
	return nil
}

func (p *pipeConn) SetWriteDeadline(t time.Time) error { return nil }
