package selector

import (
	"io"
	"sync"
	"time"

	"github.com/codetesla51/byteengine/server"
)

// byteQueue is a thread-safe byte pipe: OnTraffic pushes bytes in from the
// gnet event-loop goroutine, and a per-connection Processor goroutine reads
// them out with blocking semantics, the same shape net.Conn.Read gives the
// processor on the blocking endpoint. sync.Cond has no built-in timed wait,
// so a deadline is implemented with time.AfterFunc waking the waiter once.
type byteQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf      []byte
	err      error
	timer    *time.Timer
	timedOut bool
}

func newByteQueue() *byteQueue {
	q := &byteQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends received bytes and wakes any blocked reader.
func (q *byteQueue) push(b []byte) {
	if len(b) == 0 {
		return
	}
	q.mu.Lock()
	q.buf = append(q.buf, b...)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// closeWithError marks the queue permanently failed once drained.
func (q *byteQueue) closeWithError(err error) {
	q.mu.Lock()
	if q.err == nil {
		q.err = err
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// setDeadline arms (or disarms, for a zero Time) a one-shot wakeup so a
// blocked read returns a timeout error instead of hanging forever.
func (q *byteQueue) setDeadline(t time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.timedOut = false
	if t.IsZero() {
		return
	}
	d := time.Until(t)
	if d <= 0 {
		q.timedOut = true
		q.cond.Broadcast()
		return
	}
	q.timer = time.AfterFunc(d, func() {
		q.mu.Lock()
		q.timedOut = true
		q.mu.Unlock()
		q.cond.Broadcast()
	})
}

// read blocks until bytes are available, the queue is closed, or the armed
// deadline fires, mirroring net.Conn.Read's contract for InputBuffer.fill.
func (q *byteQueue) read(dst []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && q.err == nil && !q.timedOut {
		q.cond.Wait()
	}
	if len(q.buf) > 0 {
		n := copy(dst, q.buf)
		q.buf = q.buf[n:]
		return n, nil
	}
	if q.timedOut {
		q.timedOut = false
		return 0, server.NewTimeoutError("selector: read deadline exceeded")
	}
	if q.err != nil {
		return 0, q.err
	}
	return 0, io.EOF
}
