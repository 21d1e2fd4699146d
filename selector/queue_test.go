package selector

import (
	"io"
	"testing"
	"time"

	"github.com/codetesla51/byteengine/server"
)

func TestByteQueuePushThenRead(t *testing.T) {
	q := newByteQueue()
	q.push([]byte("hello"))

	buf := make([]byte, 5)
	n, err := q.read(buf)
	if err != nil {
		t.Fatalf("read err = %v", err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Fatalf("read = %q (%d)", buf[:n], n)
	}
}

func TestByteQueueReadBlocksUntilPush(t *testing.T) {
	q := newByteQueue()
	done := make(chan struct{})

	go func() {
		buf := make([]byte, 3)
		n, err := q.read(buf)
		if err != nil || string(buf[:n]) != "abc" {
			t.Errorf("read = %q, err = %v", buf[:n], err)
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	q.push([]byte("abc"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read never unblocked")
	}
}

func TestByteQueueCloseWithErrorUnblocksRead(t *testing.T) {
	q := newByteQueue()
	done := make(chan error, 1)

	go func() {
		buf := make([]byte, 4)
		_, err := q.read(buf)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.closeWithError(io.EOF)

	select {
	case err := <-done:
		if err != io.EOF {
			t.Fatalf("err = %v, want io.EOF", err)
		}
	case <-time.After(time.Second):
		t.Fatal("read never unblocked")
	}
}

func TestByteQueueDeadlineInThePastTimesOutImmediately(t *testing.T) {
	q := newByteQueue()
	q.setDeadline(time.Now().Add(-time.Second))

	buf := make([]byte, 4)
	_, err := q.read(buf)
	if kind, ok := server.KindOf(err); !ok || kind != server.KindSocketTimeout {
		t.Fatalf("err = %v, want KindSocketTimeout", err)
	}
}

func TestByteQueueDeadlineFiresWhileBlocked(t *testing.T) {
	q := newByteQueue()
	q.setDeadline(time.Now().Add(30 * time.Millisecond))

	buf := make([]byte, 4)
	_, err := q.read(buf)
	if kind, ok := server.KindOf(err); !ok || kind != server.KindSocketTimeout {
		t.Fatalf("err = %v, want KindSocketTimeout", err)
	}
}

func TestByteQueueZeroDeadlineDisarmsTimeout(t *testing.T) {
	q := newByteQueue()
	q.setDeadline(time.Now().Add(10 * time.Millisecond))
	q.setDeadline(time.Time{})

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 2)
		q.read(buf)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("read returned before push despite disarmed deadline")
	case <-time.After(60 * time.Millisecond):
	}
	q.push([]byte("ok"))
	<-done
}
