package server

import "time"

// Request holds everything parsed from one HTTP/1.1 (or 0.9) request line
// and header block. Method/RequestURI/QueryString/UnparsedURI/Protocol are
// all ByteChunk *views* into the owning InputBuffer's parse buffer — valid
// until the request is recycled, per spec.md §3 invariant 2 and §8
// invariant 2.
type Request struct {
	Method      ByteChunk
	RequestURI  ByteChunk
	QueryString ByteChunk
	UnparsedURI ByteChunk
	Protocol    ByteChunk

	Headers MimeHeaders

	// ContentLength is the parsed Content-Length header, or -1 if absent.
	ContentLength int64

	// TransferChunked is true when Transfer-Encoding: chunked was present.
	TransferChunked bool

	// ExpectContinue is true when the request carried Expect: 100-continue.
	ExpectContinue bool

	// ConnectionClose is true when the request explicitly asked for
	// Connection: close.
	ConnectionClose bool

	Scheme     string
	RemoteAddr string
	StartTime  time.Time

	// BodyBytesRead tracks how many body bytes have been consumed through
	// the active input filter stack, for spec.md §8 invariant 3.
	BodyBytesRead int64

	// bodyFilter is the top of the connection's input filter stack, wired
	// by the processor driver before Handler.Serve runs; Read pulls the
	// request body through it.
	bodyFilter InputFilter
}

// attach installs the input filter stack a Handler's Read calls will pull
// the body through; called once per request by the processor driver.
func (r *Request) attach(filter InputFilter) { r.bodyFilter = filter }

// Read implements io.Reader over the request body, satisfying whatever
// framing (identity/content-length/chunked/void) the processor driver
// selected for this request.
func (r *Request) Read(p []byte) (int, error) {
	n, err := r.bodyFilter.DoRead(p)
	r.BodyBytesRead += int64(n)
	return n, err
}

// MethodString materializes Method as a string (one copy — used outside the
// hot parse path, e.g. by application handlers).
func (r *Request) MethodString() string { return r.Method.String() }

// Path returns the request-target's path portion (before any '?').
func (r *Request) Path() string { return r.RequestURI.String() }

// Query returns the raw, undecoded query string (the part after '?'), which
// is empty both when there was no '?' and when the query itself is empty.
func (r *Request) Query() string { return r.QueryString.String() }

// IsHTTP09 reports whether the request line carried no protocol token.
func (r *Request) IsHTTP09() bool { return r.Protocol.Len() == 0 }

// Host returns the Host header's value, or "" if absent.
func (r *Request) Host() string {
	v, _ := r.Headers.Get("host")
	return v
}

// Recycle clears a Request for reuse at the next request boundary. Views
// into the parse buffer are dropped so the underlying array can be reused
// or reclaimed without dangling references.
func (r *Request) Recycle() {
	r.Method.Recycle()
	r.RequestURI.Recycle()
	r.QueryString.Recycle()
	r.UnparsedURI.Recycle()
	r.Protocol.Recycle()
	r.Headers.Recycle()
	r.ContentLength = -1
	r.TransferChunked = false
	r.ExpectContinue = false
	r.ConnectionClose = false
	r.Scheme = ""
	r.RemoteAddr = ""
	r.BodyBytesRead = 0
	r.bodyFilter = nil
}

// NewRequest returns a Request ready for its first use.
func NewRequest() *Request {
	r := &Request{ContentLength: -1}
	return r
}
