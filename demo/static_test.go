package demo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codetesla51/byteengine/server"
)

func TestServeStaticServesExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRouter(dir)

	var buf bytes.Buffer
	resp := server.NewStandaloneResponse(&buf)
	if !r.serveStatic("/site.css", resp) {
		t.Fatal("expected file to be served")
	}
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if _, err := resp.Finish(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("body{}")) {
		t.Fatalf("response body missing file contents: %q", buf.String())
	}
}

func TestServeStaticMissingFileFallsThrough(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(dir)

	var buf bytes.Buffer
	resp := server.NewStandaloneResponse(&buf)
	if r.serveStatic("/nope.css", resp) {
		t.Fatal("expected no file served")
	}
}

func TestServeStaticTraversalStaysWithinRoot(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(dir)

	// No such file exists inside dir at the neutralized path, so this must
	// fall through to NotFound rather than ever touching anything outside
	// dir (there is no way for this call to read /etc/passwd).
	var buf bytes.Buffer
	resp := server.NewStandaloneResponse(&buf)
	if r.serveStatic("/../../etc/passwd", resp) {
		t.Fatal("expected no file served")
	}
}

func TestCleanJoinNeutralizesTraversal(t *testing.T) {
	full := cleanJoin("pages", "/../../etc/passwd")
	if !strings.HasPrefix(full, filepath.Clean("pages")+string(filepath.Separator)) {
		t.Fatalf("joined path escaped root: %q", full)
	}
}

func TestContentTypeForKnownExtension(t *testing.T) {
	if got := contentTypeFor("site.css"); got != "text/css; charset=utf-8" {
		t.Fatalf("contentTypeFor(.css) = %q", got)
	}
	if got := contentTypeFor("data.unknownext"); got != "application/octet-stream" {
		t.Fatalf("contentTypeFor(unknown) = %q", got)
	}
}
