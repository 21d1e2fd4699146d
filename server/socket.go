package server

import (
	"net"
	"sync"
	"time"
)

// SocketState is the outcome a protocol handler (the processor driver)
// reports back to the endpoint after driving one handoff, per spec.md §4.E
// step 3.
type SocketState int

const (
	StateClosed SocketState = iota
	StateOpen
	StateUpgraded
	StateLong
)

func (s SocketState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateUpgraded:
		return "UPGRADED"
	case StateLong:
		return "LONG"
	default:
		return "UNKNOWN"
	}
}

// DispatchStatus is what the endpoint tells the processor driver the
// handoff is for: a fresh read opportunity, or an out-of-band event.
type DispatchStatus int

const (
	StatusOpenRead DispatchStatus = iota
	StatusTimeout
	StatusDisconnect
)

// SocketWrapper owns one accepted connection's transport handle plus the
// per-connection bookkeeping spec.md §3 assigns it: last access time,
// keep-alive counter, filter-stack state, async timeout deadline. Exactly
// one worker runs a wrapper's protocol handling at a time. The wrapper's
// mutex is taken only by Close (and by callers of Lock/Unlock); the
// endpoint does not hold it while a worker runs the connection, so an
// async-timeout Close can happen during a run.
type SocketWrapper struct {
	Conn net.Conn

	mu sync.Mutex

	lastAccess time.Time

	// KeepAliveLeft counts remaining requests permitted on this connection;
	// MaxKeepAliveRequests == 1 disables keep-alive entirely.
	KeepAliveLeft int

	// AsyncTimeout is the absolute deadline the AsyncTimeout sweeper checks
	// while waiting is true; waiting is cleared once the wrapper stops
	// waiting or the timeout has been dispatched (the idempotent marker of
	// spec.md §4.E).
	AsyncTimeout time.Time
	waiting      bool

	inputFilters  []InputFilter
	outputFilters []OutputFilter

	closed bool
}

// NewSocketWrapper wraps an accepted connection.
func NewSocketWrapper(conn net.Conn, keepAliveRequests int) *SocketWrapper {
	return &SocketWrapper{
		Conn:          conn,
		lastAccess:    time.Now(),
		KeepAliveLeft: keepAliveRequests,
	}
}

// Lock/Unlock expose the wrapper's monitor (the mutex Close takes). The
// endpoint does not call them.
func (w *SocketWrapper) Lock()   { w.mu.Lock() }
func (w *SocketWrapper) Unlock() { w.mu.Unlock() }

// Touch records the current time as the last-access moment, used by the
// async-timeout sweeper's idle calculation.
func (w *SocketWrapper) Touch() { w.lastAccess = time.Now() }

// LastAccess returns the last-touched time.
func (w *SocketWrapper) LastAccess() time.Time { return w.lastAccess }

// MarkWaiting sets the waiting flag with the given absolute deadline; the
// sweeper checks it on every wrapper in the endpoint's connection registry.
func (w *SocketWrapper) MarkWaiting(deadline time.Time) {
	w.AsyncTimeout = deadline
	w.waiting = true
}

// ClearWaiting idempotently marks the wrapper as no longer waiting; the
// sweeper calls this before dispatching a timeout so a second sweep pass
// never double-dispatches (spec.md §4.E AsyncTimeout: "set timeout=-1,
// idempotent").
func (w *SocketWrapper) ClearWaiting() bool {
	if !w.waiting {
		return false
	}
	w.waiting = false
	return true
}

// IsWaiting reports whether the wrapper currently sits in the async-wait
// set.
func (w *SocketWrapper) IsWaiting() bool { return w.waiting }

// Close closes the underlying connection exactly once.
func (w *SocketWrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Conn.Close()
}

// inputFilterStack / outputFilterStack give the processor driver access to
// this connection's persistent, recycled filter instances (spec.md §4.D:
// "Filters are allocated once per connection and recycled").
func (w *SocketWrapper) inputFilterStack() []InputFilter   { return w.inputFilters }
func (w *SocketWrapper) outputFilterStack() []OutputFilter { return w.outputFilters }

func (w *SocketWrapper) ensureFilters() {
	if w.inputFilters == nil {
		w.inputFilters = newInputFilterSet()
	}
	if w.outputFilters == nil {
		w.outputFilters = newOutputFilterSet()
	}
}
