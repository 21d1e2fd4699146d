package server

import "strconv"

// Response holds the status, headers and framing state for one reply. It is
// mutable until Committed becomes true (spec.md §3, GLOSSARY "Commit").
type Response struct {
	Status        int
	StatusMessage string
	Headers       MimeHeaders

	// ContentLength is the explicit value set by application code, or -1
	// if the application never set one (in which case the output buffer
	// may auto-calculate it in Finish, per spec.md §4.C).
	ContentLength int64

	ContentType       string
	CharacterEncoding string

	Committed bool

	// WriteError records the first write failure encountered while sending
	// this response, so application code (and tests) can observe that the
	// exchange failed without the driver fabricating a different status.
	WriteError error

	// bodyBytesBuffered counts every body byte ever handed to Write, for
	// introspection/tests; the Content-Length auto-calculation itself reads
	// len(pending) instead (see Finish), since it must ignore bytes written
	// after commit per spec.md §4.C.
	bodyBytesBuffered int64

	// pending holds body bytes written before commit, so the whole body can
	// still land in a single Content-Length-framed response if it never
	// grows past responseBufferSize — spec.md §4.C's "per-request response
	// buffer" sitting above the header/socket buffers OutputBuffer owns.
	// Cleared the moment commit happens, whether that is forced early by
	// overflow or deferred all the way to Finish.
	pending []byte

	// isHeadRequest disables the Content-Length auto-calculation in Finish:
	// a HEAD response should reflect whatever length the equivalent GET
	// would have had, not the zero-length body HEAD actually produced.
	isHeadRequest bool

	// Wiring installed by the processor driver before Handler.Serve runs;
	// nil until then. protocol is the request's own protocol token, echoed
	// back on the status line per spec.md §4.C. availableFilters is the
	// connection's persistent output filter set (spec.md §4.D: "allocated
	// once per connection, recycled between requests") that ensureCommitted
	// picks from instead of allocating new filter instances per request.
	ob               *OutputBuffer
	availableFilters []OutputFilter
	outFilter        OutputFilter
	gzipEligible     bool
	protocol         string
	httpMajor        int
	httpMinor        int
	forceConnClose   bool
}

// attach wires the response to the connection's output buffer, its
// persistent filter set, and the request's protocol version; called once
// per request by the processor driver before handing the response to a
// Handler. gzipEligible reflects whether compression is configured and the
// request asked for it, decided once up front by the driver.
func (r *Response) attach(ob *OutputBuffer, filters []OutputFilter, protocol string, httpMajor, httpMinor int, gzipEligible bool, isHeadRequest bool) {
	r.ob = ob
	r.availableFilters = filters
	r.protocol = protocol
	r.httpMajor = httpMajor
	r.httpMinor = httpMinor
	r.gzipEligible = gzipEligible
	r.isHeadRequest = isHeadRequest
}

// responseBufferSize bounds how many body bytes Response will hold before
// it must commit, matching Tomcat OutputBuffer.DEFAULT_BUFFER_SIZE; spec.md
// §4.C describes the buffer but leaves its size to the implementation.
const responseBufferSize = 8 * 1024

func (r *Response) findOutputFilter(mode TransferMode) OutputFilter {
	for _, f := range r.availableFilters {
		switch mode {
		case TransferVoid:
			if vf, ok := f.(*VoidOutputFilter); ok {
				return vf
			}
		case TransferChunked:
			if cf, ok := f.(*ChunkedOutputFilter); ok {
				return cf
			}
		default:
			if idf, ok := f.(*IdentityOutputFilter); ok {
				return idf
			}
		}
	}
	return nil
}

func (r *Response) findGzipFilter() *GzipOutputFilter {
	for _, f := range r.availableFilters {
		if gz, ok := f.(*GzipOutputFilter); ok {
			return gz
		}
	}
	return nil
}

// ensureCommitted picks the transfer mode (spec.md §4.C's framing table),
// installs the matching output filter from the connection's persistent
// set, and writes the status line/headers. Only called once pending must
// actually be flushed — either because it overflowed responseBufferSize or
// because Finish was reached — so an application-set Content-Length, or
// the auto-calculated one Finish derives from the buffered body, is always
// honored no matter when it was set.
func (r *Response) ensureCommitted() error {
	if r.Committed {
		return nil
	}
	mode, forceClose := SelectTransferMode(r, r.httpMinor, r.httpMajor)
	r.forceConnClose = forceClose

	switch mode {
	case TransferIdentity:
		if r.ContentLength >= 0 {
			r.Headers.Set("content-length", strconv.FormatInt(r.ContentLength, 10))
		}
	case TransferChunked:
		r.Headers.Set("transfer-encoding", "chunked")
	}
	if r.forceConnClose {
		r.Headers.Set("connection", "close")
	}

	top := r.findOutputFilter(mode)
	top.SetNext(r.ob)

	if r.gzipEligible && mode != TransferVoid {
		gz := r.findGzipFilter()
		gz.SetNext(top.(RawSink))
		r.SetHeader("content-encoding", "gzip")
		top = gz
	}
	r.outFilter = top

	return r.ob.Commit(r, r.protocol)
}

// Write buffers body bytes in pending until either committing becomes
// unavoidable (pending would grow past responseBufferSize) or Finish is
// reached, so an application that never sets ContentLength can still get
// one calculated automatically for any body that fits (spec.md §4.C, §8
// invariant 4, scenario 1).
func (r *Response) Write(p []byte) (int, error) {
	r.bodyBytesBuffered += int64(len(p))

	if r.Committed {
		n, err := r.outFilter.DoWrite(p)
		if err != nil {
			r.WriteError = err
		}
		return n, err
	}

	r.pending = append(r.pending, p...)
	if len(r.pending) <= responseBufferSize {
		return len(p), nil
	}

	// Buffer would overflow: commit now with ContentLength still whatever
	// the application left it as (spec.md §4.C: "if the response had
	// already been committed before close, content-length is not set
	// retroactively"), then flush everything buffered so far through the
	// chosen filter in one shot.
	if err := r.commitAndFlushPending(); err != nil {
		r.WriteError = err
		return 0, err
	}
	return len(p), nil
}

// commitAndFlushPending commits the response (if not already committed)
// and pushes any buffered pending bytes through the now-selected output
// filter exactly once.
func (r *Response) commitAndFlushPending() error {
	if err := r.ensureCommitted(); err != nil {
		return err
	}
	if len(r.pending) == 0 {
		return nil
	}
	buffered := r.pending
	r.pending = nil
	_, err := r.outFilter.DoWrite(buffered)
	return err
}

// Finish auto-calculates Content-Length from the buffered body when the
// response never committed and the application never set one explicitly
// (spec.md §4.C "Content-length auto-calculation", skipped for HEAD per
// Tomcat's OutputBuffer.close: setting a zero length there would shadow
// what a GET on the same resource would have reported), then commits,
// flushes, and closes out the active output filter's framing, returning
// whether the connection must close regardless of keep-alive bookkeeping
// (the HTTP/1.0-no-length case).
//
// gzipEligible also skips the calculation: pending holds the raw,
// pre-encoding bytes, and gzip changes the byte count on the wire, so
// len(pending) is not a length that would ever match what the gzip filter
// actually emits. Chunked encoding governs framing for a compressed body
// instead, the same way it does for any other response whose final size
// can't be known up front.
func (r *Response) Finish() (forceClose bool, err error) {
	if !r.Committed && r.ContentLength == -1 && !r.isHeadRequest && !r.gzipEligible {
		r.ContentLength = int64(len(r.pending))
	}
	if err := r.commitAndFlushPending(); err != nil {
		return false, err
	}
	if err := r.outFilter.End(); err != nil {
		r.WriteError = err
		return r.forceConnClose, err
	}
	if err := r.ob.Flush(); err != nil {
		r.WriteError = err
		return r.forceConnClose, err
	}
	return r.forceConnClose, nil
}

// NewResponse returns a Response ready for its first use: 200 OK, no
// explicit content-length.
func NewResponse() *Response {
	return &Response{
		Status:        200,
		StatusMessage: "OK",
		ContentLength: -1,
	}
}

// NewStandaloneResponse wires a fresh Response directly to sink with a full
// output filter set and HTTP/1.1 framing, bypassing the processor driver's
// per-connection wiring. For Handler code and tests that want to exercise
// Write/Finish without running a whole request through Processor.
func NewStandaloneResponse(sink Sink) *Response {
	resp := NewResponse()
	ob := NewOutputBuffer(0)
	ob.Reset(sink)
	resp.attach(ob, newOutputFilterSet(), "HTTP/1.1", 1, 1, false, false)
	return resp
}

// SetStatus sets the numeric status code; it is an error (silently ignored,
// matching the "headers may be mutated until commit" rule) to call this
// after Committed.
func (r *Response) SetStatus(code int, message string) {
	if r.Committed {
		return
	}
	r.Status = code
	r.StatusMessage = message
}

// SetHeader sets a response header, replacing any existing value(s). No-op
// after commit.
func (r *Response) SetHeader(name, value string) {
	if r.Committed {
		return
	}
	r.Headers.Set(name, value)
}

// AddHeader appends a response header without removing existing values for
// the same name. No-op after commit.
func (r *Response) AddHeader(name, value string) {
	if r.Committed {
		return
	}
	r.Headers.AddString(name, value)
}

// Recycle clears r for reuse at the next request boundary.
func (r *Response) Recycle() {
	r.Status = 200
	r.StatusMessage = "OK"
	r.Headers.Recycle()
	r.ContentLength = -1
	r.ContentType = ""
	r.CharacterEncoding = ""
	r.Committed = false
	r.WriteError = nil
	r.bodyBytesBuffered = 0
	r.pending = nil
	r.isHeadRequest = false
	r.ob = nil
	r.availableFilters = nil
	r.outFilter = nil
	r.gzipEligible = false
	r.protocol = ""
	r.httpMajor = 0
	r.httpMinor = 0
	r.forceConnClose = false
}

// isBodilessStatus reports whether status forbids a response body per
// spec.md §4.C's void-filter table.
func isBodilessStatus(status int) bool {
	if status >= 100 && status < 200 {
		return true
	}
	switch status {
	case 204, 205, 304:
		return true
	}
	return false
}
