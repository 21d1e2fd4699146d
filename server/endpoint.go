package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Endpoint owns the listener socket, a fixed set of acceptor goroutines, a
// bounded worker pool, the connection-count latch, and the async-timeout
// sweeper — spec.md §4.E's blocking-I/O endpoint. This generalizes the
// teacher's main.go accept loop (plain net.Listen + unbounded
// goroutine-per-connection) into a pooled design where MaxThreads caps how
// many connections run concurrently and ConnLatch caps how many are open
// at once, served or still queued for a worker.
type Endpoint struct {
	config  *Config
	handler Handler

	latch *ConnLatch

	listener net.Listener
	ready    chan struct{}
	jobs     chan net.Conn

	registryMu sync.Mutex
	registry   map[*SocketWrapper]struct{}

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewEndpoint builds an endpoint bound to config, dispatching every request
// to handler.
func NewEndpoint(config *Config, handler Handler) *Endpoint {
	return &Endpoint{
		config:   config,
		handler:  handler,
		latch:    NewConnLatch(config.ResolvedMaxConnections()),
		jobs:     make(chan net.Conn, config.MaxThreads),
		registry: make(map[*SocketWrapper]struct{}),
		shutdown: make(chan struct{}),
		ready:    make(chan struct{}),
	}
}

// Addr blocks until the listener is bound and returns its address; used by
// callers (and tests) that need to know the ephemeral port chosen when
// Config.Port is 0.
func (e *Endpoint) Addr() net.Addr {
	<-e.ready
	return e.listener.Addr()
}

// ListenAndServe binds the listener, starts the acceptor goroutines, the
// worker pool, and the async-timeout sweeper, and blocks until Shutdown is
// called or the listener fails.
func (e *Endpoint) ListenAndServe() error {
	lc := net.ListenConfig{Control: e.controlSocketOptions}
	addr := fmt.Sprintf("%s:%d", e.config.Address, e.config.Port)
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.listener = ln
	close(e.ready)

	workers := e.config.MaxThreads
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	acceptors := e.config.AcceptorThreadCount
	if acceptors <= 0 {
		acceptors = 1
	}
	for i := 0; i < acceptors; i++ {
		e.wg.Add(1)
		go e.acceptLoop()
	}

	e.wg.Add(1)
	go e.sweepAsyncTimeouts()

	<-e.shutdown
	ln.Close()
	e.wg.Wait()
	return nil
}

// Shutdown stops accepting new connections and lets in-flight workers drain
// on their own; it does not forcibly close connections already in flight.
func (e *Endpoint) Shutdown() {
	select {
	case <-e.shutdown:
	default:
		close(e.shutdown)
	}
}

// acceptLoop is one acceptor goroutine: it blocks on the connection latch
// before calling Accept, so the kernel's own listen backlog — not an
// unbounded goroutine pile — absorbs bursts past Config.MaxConnections,
// matching spec.md §4.E step 1.
func (e *Endpoint) acceptLoop() {
	defer e.wg.Done()
	for {
		if !e.latch.Await(e.shutdown) {
			return
		}
		conn, err := e.listener.Accept()
		if err != nil {
			e.latch.Release()
			select {
			case <-e.shutdown:
				return
			default:
				logErrorf("accept: %v", err)
				continue
			}
		}
		e.applyConnOptions(conn)
		select {
		case e.jobs <- conn:
		case <-e.shutdown:
			conn.Close()
			e.latch.Release()
			return
		}
	}
}

// worker pulls accepted connections off the job queue and drives each one
// to completion through its own Processor, one connection at a time — the
// classic blocking-I/O model where a worker is pinned to a connection for
// its entire keep-alive lifetime, not just a single request (spec.md §4.E
// step 2, §4.F).
func (e *Endpoint) worker() {
	defer e.wg.Done()
	proc := NewProcessor(e.config, e.handler)
	for {
		select {
		case conn, ok := <-e.jobs:
			if !ok {
				return
			}
			e.handleConnection(proc, conn)
		case <-e.shutdown:
			return
		}
	}
}

func (e *Endpoint) handleConnection(proc *Processor, conn net.Conn) {
	w := NewSocketWrapper(conn, e.config.MaxKeepAliveRequests)
	e.register(w)
	defer func() {
		e.unregister(w)
		w.Close()
		e.latch.Release()
	}()

	state := proc.Process(w)
	_ = state // only CLOSED is produced today; UPGRADED/LONG are reserved for future protocol handlers.
}

func (e *Endpoint) register(w *SocketWrapper) {
	e.registryMu.Lock()
	e.registry[w] = struct{}{}
	e.registryMu.Unlock()
}

func (e *Endpoint) unregister(w *SocketWrapper) {
	e.registryMu.Lock()
	delete(e.registry, w)
	e.registryMu.Unlock()
}

// sweepAsyncTimeouts periodically scans every registered connection and
// force-closes any still marked waiting past its AsyncTimeout deadline
// (spec.md §4.E "AsyncTimeout"). SetReadDeadline on the connection is the
// primary timeout mechanism; this is the defense-in-depth backstop for a
// deadline that for whatever reason never unblocked the read.
func (e *Endpoint) sweepAsyncTimeouts() {
	defer e.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			e.registryMu.Lock()
			for w := range e.registry {
				if w.IsWaiting() && now.After(w.AsyncTimeout) {
					if w.ClearWaiting() {
						logWarn("%s: async timeout, forcing close", w.Conn.RemoteAddr())
						w.Close()
					}
				}
			}
			e.registryMu.Unlock()
		case <-e.shutdown:
			return
		}
	}
}

// controlSocketOptions is the net.ListenConfig.Control hook applying
// SO_REUSEADDR/SO_REUSEPORT to the listening socket before bind, gated by
// Config.SocketOptions (spec_full.md §6).
func (e *Endpoint) controlSocketOptions(network, address string, c syscall.RawConn) error {
	if !e.config.SocketOptions {
		return nil
	}
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// applyConnOptions tunes a freshly accepted connection: TCP_NODELAY per
// Config.TCPNoDelay, and SO_LINGER when Config.SOLinger is non-negative.
func (e *Endpoint) applyConnOptions(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if e.config.TCPNoDelay {
		tc.SetNoDelay(true)
	}
	if e.config.SOLinger >= 0 {
		tc.SetLinger(int(e.config.SOLinger / time.Second))
	}
}
