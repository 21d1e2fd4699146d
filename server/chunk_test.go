package server

import (
	"bytes"
	"testing"
)

type recordingSink struct {
	writes [][]byte
}

func (s *recordingSink) RealWriteBytes(src []byte) error {
	cp := make([]byte, len(src))
	copy(cp, src)
	s.writes = append(s.writes, cp)
	return nil
}

func (s *recordingSink) flat() []byte {
	var out []byte
	for _, w := range s.writes {
		out = append(out, w...)
	}
	return out
}

func TestByteChunkViewDoesNotCopy(t *testing.T) {
	buf := []byte("GET /a HTTP/1.1")
	var c ByteChunk
	c.SetView(buf, 4, 2)
	if got := c.String(); got != "/a" {
		t.Fatalf("got %q want /a", got)
	}
	if !c.IsView() {
		t.Fatal("expected view chunk")
	}
	buf[4] = 'X'
	if c.Bytes()[0] != 'X' {
		t.Fatal("view should alias the backing array")
	}
}

func TestByteChunkAppendWithinCapacity(t *testing.T) {
	c := NewByteChunk(64)
	if err := c.Append([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := c.Append([]byte(" world")); err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestByteChunkAppendFlushesWhenLimitHit(t *testing.T) {
	c := NewByteChunk(4)
	sink := &recordingSink{}
	c.SetOutputChannel(sink)

	if err := c.Append([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	if err := c.Append([]byte("cdef")); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	got := sink.flat()
	if !bytes.Equal(got, []byte("abcdef")) {
		t.Fatalf("got %q want abcdef", got)
	}
}

func TestByteChunkAppendStreamsLargeRemainderDirectly(t *testing.T) {
	c := NewByteChunk(4)
	sink := &recordingSink{}
	c.SetOutputChannel(sink)

	payload := []byte("0123456789")
	if err := c.Append(payload); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := sink.flat(); !bytes.Equal(got, payload) {
		t.Fatalf("got %q want %q", got, payload)
	}
}

func TestByteChunkAppendNoSinkOverflows(t *testing.T) {
	c := NewByteChunk(2)
	if err := c.Append([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	if err := c.Append([]byte("c")); err != ErrNoSink {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestByteChunkAppendOptimizesEmptyExactFit(t *testing.T) {
	c := NewByteChunk(5)
	sink := &recordingSink{}
	c.SetOutputChannel(sink)

	if err := c.Append([]byte("abcde")); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected direct write to bypass buffering, Len()=%d", c.Len())
	}
	if got := sink.flat(); !bytes.Equal(got, []byte("abcde")) {
		t.Fatalf("got %q", got)
	}
}

func TestByteChunkSubtractRefills(t *testing.T) {
	c := NewByteChunk(-1)
	c.SetInputChannel(inputChannelFunc(func(dst []byte) (int, error) {
		return copy(dst, "refilled"), nil
	}))

	dst := make([]byte, 4)
	n, err := c.Subtract(dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || string(dst) != "refi" {
		t.Fatalf("got n=%d dst=%q", n, dst)
	}
}

func TestByteChunkFindByteAndStartsWith(t *testing.T) {
	var c ByteChunk
	c.SetView([]byte("Host: example.com"), 0, 17)
	if idx := c.FindByte(':'); idx != 4 {
		t.Fatalf("got %d want 4", idx)
	}
	if !c.StartsWith([]byte("Host")) {
		t.Fatal("expected prefix match")
	}
	if c.StartsWith([]byte("host")) {
		t.Fatal("StartsWith should be case sensitive")
	}
}

func TestByteChunkEqualsIgnoreCaseASCII(t *testing.T) {
	var c ByteChunk
	c.SetView([]byte("Content-Length"), 0, 14)
	if !c.EqualsIgnoreCaseASCII([]byte("content-length")) {
		t.Fatal("expected case-insensitive match")
	}
	if c.EqualsIgnoreCaseASCII([]byte("content-type")) {
		t.Fatal("unexpected match")
	}
}

func TestByteChunkRecycleClearsState(t *testing.T) {
	c := NewByteChunk(8)
	sink := &recordingSink{}
	c.SetOutputChannel(sink)
	_ = c.Append([]byte("xy"))
	c.Recycle()

	if c.Len() != 0 || c.Bytes() != nil {
		t.Fatal("expected recycled chunk to be empty")
	}
}

type inputChannelFunc func([]byte) (int, error)

func (f inputChannelFunc) RealReadBytes(dst []byte) (int, error) { return f(dst) }
