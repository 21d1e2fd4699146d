package server

import "sync"

// Buffer pools for reducing per-request allocations, generalized from the
// teacher's server/pool.go (chunkBufferPool/requestBufferPool/
// responseBufferPool) onto this engine's parse buffers and its Request and
// Response records.

// maxPoolBufferSize caps what gets returned to a pool; oversized buffers
// (e.g. from an unusually large request) are left for the GC instead of
// bloating the pool, matching the teacher's policy.
const maxPoolBufferSize = 64 * 1024

// parseBufferPool holds raw byte slices sized to Config.MaxHTTPHeaderSize
// (default 8KiB) for InputBuffer's parse buffer.
var parseBufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 8192)
		return &buf
	},
}

// getParseBuffer returns a pooled buffer at least size bytes long.
func getParseBuffer(size int) []byte {
	bufPtr := parseBufferPool.Get().(*[]byte)
	buf := *bufPtr
	if cap(buf) < size {
		return make([]byte, size)
	}
	return buf[:size]
}

func putParseBuffer(buf []byte) {
	if cap(buf) > maxPoolBufferSize {
		return
	}
	parseBufferPool.Put(&buf)
}

// requestPool and responsePool recycle Request/Response records across
// connections.
var requestPool = sync.Pool{
	New: func() any { return NewRequest() },
}

var responsePool = sync.Pool{
	New: func() any { return NewResponse() },
}

func getRequest() *Request {
	return requestPool.Get().(*Request)
}

func putRequest(r *Request) {
	r.Recycle()
	requestPool.Put(r)
}

func getResponse() *Response {
	return responsePool.Get().(*Response)
}

func putResponse(r *Response) {
	r.Recycle()
	responsePool.Put(r)
}
