package server

import (
	"testing"
	"time"
)

func TestConnLatchBoundsConcurrency(t *testing.T) {
	l := NewConnLatch(2)
	done := make(chan struct{})

	if !l.Await(done) {
		t.Fatal("first await should succeed")
	}
	if !l.Await(done) {
		t.Fatal("second await should succeed")
	}
	if l.TryAcquire() {
		t.Fatal("latch should be at capacity")
	}

	l.Release()
	if !l.TryAcquire() {
		t.Fatal("should be able to acquire after release")
	}
}

func TestConnLatchAwaitUnblocksOnDone(t *testing.T) {
	l := NewConnLatch(1)
	done := make(chan struct{})

	if !l.TryAcquire() {
		t.Fatal("expected to acquire the only slot")
	}

	result := make(chan bool, 1)
	go func() { result <- l.Await(done) }()

	close(done)
	select {
	case ok := <-result:
		if ok {
			t.Fatal("expected Await to report failure after done closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Await did not unblock on done")
	}
}

func TestConnLatchInUseAndCapacity(t *testing.T) {
	l := NewConnLatch(3)
	if l.Capacity() != 3 || l.InUse() != 0 {
		t.Fatalf("got cap=%d inUse=%d", l.Capacity(), l.InUse())
	}
	l.TryAcquire()
	if l.InUse() != 1 {
		t.Fatalf("got inUse=%d want 1", l.InUse())
	}
}
