package crawler

import (
	"testing"
	"time"
)

// TestFrontierPriorityOrder tests that higher hints pop first and ties
// keep discovery order.
func TestFrontierPriorityOrder(t *testing.T) {
	t.Parallel()

	fr := newFrontier()
	fr.push(Request{URL: "low", Priority: 1})
	fr.push(Request{URL: "high", Priority: 5})
	fr.push(Request{URL: "tie-first", Priority: 3})
	fr.push(Request{URL: "tie-second", Priority: 3})

	want := []string{"high", "tie-first", "tie-second", "low"}
	for _, wantURL := range want {
		req, ok := fr.pop()
		if !ok {
			t.Fatal("frontier drained early")
		}
		if req.URL != wantURL {
			t.Errorf("popped %q, want %q", req.URL, wantURL)
		}
		fr.done()
	}

	if _, ok := fr.pop(); ok {
		t.Error("expected quiesced frontier to report done")
	}
}

// TestFrontierQuiescence tests that pop blocks while work is in flight
// and unblocks when the last in-flight request completes.
func TestFrontierQuiescence(t *testing.T) {
	t.Parallel()

	fr := newFrontier()
	fr.push(Request{URL: "only"})

	req, ok := fr.pop()
	if !ok || req.URL != "only" {
		t.Fatalf("unexpected pop result: %v %v", req, ok)
	}

	popped := make(chan bool, 1)
	go func() {
		_, ok := fr.pop()
		popped <- ok
	}()

	// The in-flight request may still push follow-ups, so the second
	// pop must not give up yet.
	select {
	case <-popped:
		t.Fatal("pop returned while a request was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	fr.push(Request{URL: "follow-up"})
	fr.done()

	select {
	case ok := <-popped:
		if !ok {
			t.Error("expected pop to deliver the follow-up")
		}
	case <-time.After(time.Second):
		t.Fatal("pop never woke up")
	}
}

// TestFrontierClose tests that close unblocks waiting workers.
func TestFrontierClose(t *testing.T) {
	t.Parallel()

	fr := newFrontier()
	fr.push(Request{URL: "held"})
	if _, ok := fr.pop(); !ok {
		t.Fatal("expected pop to succeed")
	}

	popped := make(chan bool, 1)
	go func() {
		_, ok := fr.pop()
		popped <- ok
	}()

	fr.close()

	select {
	case ok := <-popped:
		if ok {
			t.Error("expected pop to fail after close")
		}
	case <-time.After(time.Second):
		t.Fatal("pop never woke up after close")
	}

	// Pushes after close are dropped.
	fr.push(Request{URL: "ignored"})
	if _, ok := fr.pop(); ok {
		t.Error("expected closed frontier to stay empty")
	}
}
