package server

import (
	"strconv"
	"strings"
	"time"
)

// driverState names the steps of the per-connection state machine spec.md
// §4.F describes: IDLE → READING_LINE → READING_HEADERS → PROCESSING →
// WRITING → (IDLE|CLOSED). Tracked on the Processor purely for
// introspection/logging; the control flow itself lives in runOneRequest.
type driverState int

const (
	driverIdle driverState = iota
	driverReadingLine
	driverReadingHeaders
	driverProcessing
	driverWriting
)

func (s driverState) String() string {
	switch s {
	case driverIdle:
		return "IDLE"
	case driverReadingLine:
		return "READING_LINE"
	case driverReadingHeaders:
		return "READING_HEADERS"
	case driverProcessing:
		return "PROCESSING"
	case driverWriting:
		return "WRITING"
	default:
		return "UNKNOWN"
	}
}

// Processor drives one connection through as many keep-alive request
// cycles as it is allowed, per spec.md §4.F. One Processor is owned by one
// worker-pool slot and reused across many connections in sequence, the
// same way the teacher's per-goroutine connection handler was reused by
// being re-entered on the next accepted socket.
type Processor struct {
	config  *Config
	handler Handler

	ib *InputBuffer
	ob *OutputBuffer

	state driverState
}

// NewProcessor allocates a processor bound to config/handler.
func NewProcessor(config *Config, handler Handler) *Processor {
	socketBuffer := config.SocketBuffer
	if socketBuffer <= 500 {
		socketBuffer = 0
	}
	return &Processor{
		config:  config,
		handler: handler,
		ib:      NewInputBuffer(config.MaxHTTPHeaderSize),
		ob:      NewOutputBuffer(socketBuffer),
	}
}

// Process drives w through request cycles until keep-alive is exhausted,
// the peer closes, or a framing error forces the connection closed,
// returning the SocketState the endpoint should act on next.
func (p *Processor) Process(w *SocketWrapper) SocketState {
	w.ensureFilters()
	p.ib.Reset(w.Conn, p.config.KeepAliveTimeout, p.config.RejectIllegalHeaderName)
	for {
		state, err := p.runOneRequest(w)
		if err != nil {
			if kind, ok := KindOf(err); ok {
				logWarn("%s: %s", w.Conn.RemoteAddr(), kind)
			} else {
				logWarn("%s: %v", w.Conn.RemoteAddr(), err)
			}
		}
		if state != StateOpen {
			return state
		}
		w.KeepAliveLeft--
		if w.KeepAliveLeft <= 0 {
			return StateClosed
		}
		w.Touch()
	}
}

// runOneRequest parses one request, dispatches it to the configured
// Handler, and writes one response.
func (p *Processor) runOneRequest(w *SocketWrapper) (SocketState, error) {
	p.state = driverReadingLine
	// Bytes left over from the previous request are the start of a
	// pipelined next request; only a drained buffer is reset.
	if !p.ib.HasPendingBytes() {
		p.ib.Reset(w.Conn, p.config.KeepAliveTimeout, p.config.RejectIllegalHeaderName)
	}

	req := getRequest()
	req.RemoteAddr = w.Conn.RemoteAddr().String()
	req.StartTime = time.Now()

	// The connection sits idle here waiting for the next request line
	// (the only point in the cycle where that's true); mark it so the
	// endpoint's async-timeout sweeper can see a connection stuck past its
	// deadline even if SetReadDeadline itself never fires.
	w.MarkWaiting(time.Now().Add(p.config.KeepAliveTimeout))
	ok, err := p.ib.ParseRequestLine(req)
	w.ClearWaiting()
	if err != nil {
		p.sendErrorResponse(w, "HTTP/1.1", err)
		putRequest(req)
		return StateClosed, err
	}
	if !ok {
		// Peer closed an idle keep-alive connection before sending another
		// request: a clean close, not an error (spec.md §4.F).
		putRequest(req)
		return StateClosed, nil
	}

	p.state = driverReadingHeaders
	if err := p.ib.ParseHeaders(req); err != nil {
		p.sendErrorResponse(w, protocolTokenOrDefault(req), err)
		putRequest(req)
		return StateClosed, err
	}

	applyHeaderDerivedFields(req)

	p.state = driverProcessing
	p.ib.TransitionToBody()

	inputFilter := selectInputFilter(p.ib, w.inputFilterStack(), req)
	req.attach(inputFilter)

	resp := getResponse()
	major, minor := parseProtocolVersion(req.Protocol.String())
	p.ob.Reset(w.Conn)
	gzipEligible := p.config.Compression && acceptsGzip(req)
	resp.attach(p.ob, w.outputFilterStack(), protocolTokenOrDefault(req), major, minor, gzipEligible, req.MethodString() == "HEAD")

	p.handler.Serve(req, resp)

	if _, drainErr := inputFilter.End(); drainErr != nil && err == nil {
		err = drainErr
	}
	for _, f := range w.inputFilterStack() {
		f.Recycle()
	}

	p.state = driverWriting
	forceClose, writeErr := resp.Finish()
	for _, f := range w.outputFilterStack() {
		f.Recycle()
	}
	if writeErr != nil && err == nil {
		err = writeErr
	}

	if p.config.EnableLogging {
		logAccess(req.MethodString(), req.Path(), resp.Status)
	}

	connClose := req.ConnectionClose || forceClose || writeErr != nil
	putRequest(req)
	putResponse(resp)

	if connClose {
		return StateClosed, err
	}
	return StateOpen, err
}

// sendErrorResponse writes a minimal bodyless response (status line,
// "connection: close" and "content-length: 0") for a
// request that failed to parse, then lets the caller close the
// connection — a malformed request line/header block leaves the
// connection's byte alignment unrecoverable for keep-alive.
func (p *Processor) sendErrorResponse(w *SocketWrapper, protocol string, cause error) {
	resp := NewResponse()
	resp.SetStatus(statusForError(cause), "Bad Request")
	resp.Headers.AddString("connection", "close")
	p.ob.Reset(w.Conn)
	resp.attach(p.ob, w.outputFilterStack(), protocol, 1, 1, false, false)
	if _, err := resp.Finish(); err != nil {
		logErrorf("%s: writing error response: %v", w.Conn.RemoteAddr(), err)
	}
}

func statusForError(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return 500
	}
	switch kind {
	case KindInvalidMethod, KindInvalidRequestTarget, KindInvalidHTTPProtocol,
		KindInvalidHeaderName, KindMalformedChunk:
		return 400
	case KindRequestHeaderTooLarge:
		return 431
	case KindSocketTimeout:
		return 408
	case KindRejected:
		return 503
	default:
		return 400
	}
}

// applyHeaderDerivedFields populates the framing fields the input filter
// selection and keep-alive bookkeeping depend on, from the headers just
// parsed (spec.md §4.B "derived fields").
func applyHeaderDerivedFields(req *Request) {
	if v, ok := req.Headers.Get("transfer-encoding"); ok {
		req.TransferChunked = strings.Contains(strings.ToLower(v), "chunked")
	}
	if !req.TransferChunked {
		if v, ok := req.Headers.Get("content-length"); ok {
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
				req.ContentLength = n
			}
		}
	}
	if v, ok := req.Headers.Get("expect"); ok {
		req.ExpectContinue = strings.EqualFold(strings.TrimSpace(v), "100-continue")
	}
	if v, ok := req.Headers.Get("connection"); ok {
		req.ConnectionClose = strings.Contains(strings.ToLower(v), "close")
	}
	if req.IsHTTP09() {
		req.ConnectionClose = true
	}
}

// acceptsGzip reports whether the request's Accept-Encoding header lists
// gzip, used to gate the gzip output filter.
func acceptsGzip(req *Request) bool {
	v, ok := req.Headers.Get("accept-encoding")
	if !ok {
		return false
	}
	for _, tok := range strings.Split(v, ",") {
		if strings.EqualFold(strings.TrimSpace(strings.SplitN(tok, ";", 2)[0]), "gzip") {
			return true
		}
	}
	return false
}

// selectInputFilter picks the body-decoding filter spec.md §4.D's table
// calls for, from the connection's persistent filter set, and wires it to
// source (the InputBuffer acting as RawSource).
func selectInputFilter(source RawSource, stack []InputFilter, req *Request) InputFilter {
	var chosen InputFilter
	switch {
	case req.TransferChunked:
		chosen = findChunkedInputFilter(stack)
	case req.ContentLength >= 0:
		cl := findContentLengthInputFilter(stack)
		cl.SetLength(req.ContentLength)
		chosen = cl
	default:
		chosen = findVoidInputFilter(stack)
	}
	chosen.SetNext(source)
	return chosen
}

func findChunkedInputFilter(stack []InputFilter) *ChunkedInputFilter {
	for _, f := range stack {
		if cf, ok := f.(*ChunkedInputFilter); ok {
			return cf
		}
	}
	return nil
}

func findContentLengthInputFilter(stack []InputFilter) *ContentLengthInputFilter {
	for _, f := range stack {
		if cf, ok := f.(*ContentLengthInputFilter); ok {
			return cf
		}
	}
	return nil
}

func findVoidInputFilter(stack []InputFilter) *VoidInputFilter {
	for _, f := range stack {
		if vf, ok := f.(*VoidInputFilter); ok {
			return vf
		}
	}
	return nil
}

// parseProtocolVersion extracts the major/minor digits from an "HTTP/x.y"
// token, defaulting to (0, 9) for the empty HTTP/0.9 token.
func parseProtocolVersion(protocol string) (major, minor int) {
	if len(protocol) != 8 || !strings.HasPrefix(protocol, "HTTP/") {
		return 0, 9
	}
	major = int(protocol[5] - '0')
	minor = int(protocol[7] - '0')
	return major, minor
}

// protocolTokenOrDefault echoes the request's own protocol token on the
// response status line, falling back to HTTP/1.0 for HTTP/0.9 requests
// (which carry no protocol token of their own to echo).
func protocolTokenOrDefault(req *Request) string {
	if req.IsHTTP09() {
		return "HTTP/1.0"
	}
	return req.Protocol.String()
}
