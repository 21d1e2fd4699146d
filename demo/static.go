package demo

import (
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/codetesla51/byteengine/server"
)

// serveStatic serves a file under r.StaticDir for cleanPath, streaming its
// contents through resp.Write. Returns false (leaving resp untouched) when
// no such file exists, so the caller can fall through to NotFound. cleanJoin
// guarantees full can never resolve outside StaticDir, so there is no
// separate traversal-rejection branch here.
func (r *Router) serveStatic(cleanPath string, resp *server.Response) bool {
	full := cleanJoin(r.StaticDir, cleanPath)

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return false
	}

	f, err := os.Open(full)
	if err != nil {
		return false
	}
	defer f.Close()

	resp.SetStatus(200, "OK")
	resp.SetHeader("content-type", contentTypeFor(full))
	resp.ContentLength = info.Size()
	io.Copy(resp, f)
	return true
}

// contentTypeFor guesses a MIME type from a file extension, falling back to
// application/octet-stream — the teacher's getContentType.
func contentTypeFor(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
