package server

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputBufferCommitWritesStatusLineAndHeaders(t *testing.T) {
	var buf bytes.Buffer
	ob := NewOutputBuffer(0)
	ob.Reset(&buf)

	resp := NewResponse()
	resp.SetStatus(404, "Not Found")
	resp.SetHeader("content-type", "text/plain")

	if err := ob.Commit(resp, "HTTP/1.1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n") {
		t.Fatalf("status line wrong: %q", out)
	}
	if !strings.Contains(out, "content-type: text/plain\r\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Fatalf("missing terminating blank line: %q", out)
	}
	if !resp.Committed {
		t.Fatal("response should be marked committed")
	}
}

func TestOutputBufferCommitIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	ob := NewOutputBuffer(0)
	ob.Reset(&buf)
	resp := NewResponse()

	if err := ob.Commit(resp, "HTTP/1.1"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	firstLen := buf.Len()
	if err := ob.Commit(resp, "HTTP/1.1"); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if buf.Len() != firstLen {
		t.Fatalf("second commit wrote more bytes: %d -> %d", firstLen, buf.Len())
	}
}

func TestOutputBufferDoWriteUnbuffered(t *testing.T) {
	var buf bytes.Buffer
	ob := NewOutputBuffer(0)
	ob.Reset(&buf)

	n, err := ob.DoWrite([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("DoWrite: n=%d err=%v", n, err)
	}
	if buf.String() != "hello" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestOutputBufferDoWriteBufferedFlushesOnFill(t *testing.T) {
	var buf bytes.Buffer
	ob := NewOutputBuffer(4)
	ob.Reset(&buf)

	if _, err := ob.DoWrite([]byte("abcdefgh")); err != nil {
		t.Fatalf("DoWrite: %v", err)
	}
	if buf.String() != "abcdefgh" {
		t.Fatalf("expected all bytes flushed through 4-byte buffer, got %q", buf.String())
	}

	if _, err := ob.DoWrite([]byte("xy")); err != nil {
		t.Fatalf("DoWrite: %v", err)
	}
	if err := ob.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.String() != "abcdefghxy" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestSelectTransferModeExplicitContentLength(t *testing.T) {
	resp := NewResponse()
	resp.ContentLength = 10
	mode, forceClose := SelectTransferMode(resp, 1, 1)
	if mode != TransferIdentity || forceClose {
		t.Fatalf("mode=%v forceClose=%v", mode, forceClose)
	}
}

func TestSelectTransferModeHTTP11NoLengthChunked(t *testing.T) {
	resp := NewResponse()
	mode, forceClose := SelectTransferMode(resp, 1, 1)
	if mode != TransferChunked || forceClose {
		t.Fatalf("mode=%v forceClose=%v", mode, forceClose)
	}
}

func TestSelectTransferModeHTTP10NoLengthIdentityAndClose(t *testing.T) {
	resp := NewResponse()
	mode, forceClose := SelectTransferMode(resp, 0, 1)
	if mode != TransferIdentity || !forceClose {
		t.Fatalf("mode=%v forceClose=%v", mode, forceClose)
	}
}

func TestSelectTransferModeBodilessStatusAlwaysVoid(t *testing.T) {
	resp := NewResponse()
	resp.ContentLength = 50
	resp.SetStatus(204, "No Content")
	mode, forceClose := SelectTransferMode(resp, 1, 1)
	if mode != TransferVoid || forceClose {
		t.Fatalf("mode=%v forceClose=%v", mode, forceClose)
	}
}
