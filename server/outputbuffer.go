package server

import (
	"io"
	"strconv"
)

// Sink is what an OutputBuffer ultimately writes raw bytes to.
type Sink interface {
	io.Writer
}

// OutputBuffer owns the header-line buffer, an optional socket-sized body
// buffer, and the commit policy described in spec.md §4.C. Exactly one
// OutputBuffer exists per connection and is reused across keep-alive
// requests.
type OutputBuffer struct {
	sink Sink

	headerBuf []byte
	bodyBuf   []byte
	bodyUsed  int

	committed bool
}

// NewOutputBuffer allocates header/body scratch space. bodySize of 0 selects
// an unbuffered body path (every DoWrite call reaches the sink directly).
func NewOutputBuffer(bodySize int) *OutputBuffer {
	ob := &OutputBuffer{headerBuf: make([]byte, 0, 512)}
	if bodySize > 0 {
		ob.bodyBuf = make([]byte, bodySize)
	}
	return ob
}

// Reset points the buffer at a new connection and clears commit state.
func (ob *OutputBuffer) Reset(sink Sink) {
	ob.sink = sink
	ob.headerBuf = ob.headerBuf[:0]
	ob.bodyUsed = 0
	ob.committed = false
}

// Committed reports whether the status line and headers have already been
// written to the sink.
func (ob *OutputBuffer) Committed() bool { return ob.committed }

// ---------------------------------------------------------------------
// Transfer-encoding selection (spec.md §4.C)
// ---------------------------------------------------------------------

// TransferMode names which output filter governs body framing for one
// response.
type TransferMode int

const (
	TransferIdentity TransferMode = iota
	TransferChunked
	TransferVoid
)

// SelectTransferMode implements the framing decision table from spec.md
// §4.C: an explicit Content-Length always wins; otherwise HTTP/1.1 falls
// back to chunked, HTTP/1.0 falls back to identity-with-connection-close,
// and bodiless statuses are always void regardless of what the application
// requested.
func SelectTransferMode(resp *Response, httpMinorVersion int, httpMajorVersion int) (mode TransferMode, forceConnectionClose bool) {
	if isBodilessStatus(resp.Status) {
		return TransferVoid, false
	}
	if resp.ContentLength >= 0 {
		return TransferIdentity, false
	}
	if httpMajorVersion == 1 && httpMinorVersion >= 1 {
		return TransferChunked, false
	}
	return TransferIdentity, true
}

// ---------------------------------------------------------------------
// Commit: status line + headers
// ---------------------------------------------------------------------

// Commit writes the status line and header block to the sink exactly once.
// Calling Commit a second time is a no-op.
func (ob *OutputBuffer) Commit(resp *Response, protocol string) error {
	if ob.committed {
		return nil
	}
	ob.committed = true
	resp.Committed = true

	ob.headerBuf = ob.headerBuf[:0]
	ob.headerBuf = append(ob.headerBuf, protocol...)
	ob.headerBuf = append(ob.headerBuf, ' ')
	ob.headerBuf = strconv.AppendInt(ob.headerBuf, int64(resp.Status), 10)
	ob.headerBuf = append(ob.headerBuf, ' ')
	ob.headerBuf = append(ob.headerBuf, resp.StatusMessage...)
	ob.headerBuf = append(ob.headerBuf, '\r', '\n')

	for _, name := range resp.Headers.Names() {
		for _, v := range resp.Headers.Values(name) {
			ob.headerBuf = append(ob.headerBuf, name...)
			ob.headerBuf = append(ob.headerBuf, ':', ' ')
			ob.headerBuf = append(ob.headerBuf, v...)
			ob.headerBuf = append(ob.headerBuf, '\r', '\n')
		}
	}
	ob.headerBuf = append(ob.headerBuf, '\r', '\n')

	_, err := ob.sink.Write(ob.headerBuf)
	return err
}

// ---------------------------------------------------------------------
// RawSink: the bottom of the output filter stack.
// ---------------------------------------------------------------------

// DoWrite buffers src (when a body buffer is configured) or writes straight
// through, flushing whenever the buffer fills.
func (ob *OutputBuffer) DoWrite(src []byte) (int, error) {
	if ob.bodyBuf == nil {
		return ob.sink.Write(src)
	}
	total := 0
	for len(src) > 0 {
		n := copy(ob.bodyBuf[ob.bodyUsed:], src)
		ob.bodyUsed += n
		total += n
		src = src[n:]
		if ob.bodyUsed == len(ob.bodyBuf) {
			if err := ob.flush(); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// Flush pushes any buffered body bytes to the sink.
func (ob *OutputBuffer) Flush() error { return ob.flush() }

func (ob *OutputBuffer) flush() error {
	if ob.bodyUsed == 0 {
		return nil
	}
	_, err := ob.sink.Write(ob.bodyBuf[:ob.bodyUsed])
	ob.bodyUsed = 0
	return err
}
