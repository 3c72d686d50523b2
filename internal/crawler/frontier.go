package crawler

import (
	"container/heap"
	"sync"
)

// frontier is the engine's request queue: a priority queue ordered by
// each request's advisory priority hint, FIFO among equal hints.
//
// It also tracks quiescence: pop blocks while the queue is empty but
// popped requests are still being processed (they may push follow-ups),
// and unblocks with ok=false once the queue is empty and nothing is in
// flight, meaning the crawl is done.
type frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	items requestHeap

	// seq breaks priority ties in favor of earlier discovery.
	seq int

	// inFlight counts requests popped but not yet marked done.
	inFlight int

	// closed stops the frontier; pending items are discarded.
	closed bool
}

func newFrontier() *frontier {
	f := &frontier{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push enqueues a request. Pushes after close are dropped.
func (f *frontier) push(req Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	heap.Push(&f.items, frontierItem{req: req, seq: f.seq})
	f.seq++
	f.cond.Signal()
}

// pop removes the highest-priority request. It blocks while the queue is
// empty but work is still in flight, and returns ok=false once the crawl
// has quiesced or the frontier was closed.
func (f *frontier) pop() (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for !f.closed && f.items.Len() == 0 && f.inFlight > 0 {
		f.cond.Wait()
	}

	if f.closed || f.items.Len() == 0 {
		return Request{}, false
	}

	item := heap.Pop(&f.items).(frontierItem)
	f.inFlight++
	return item.req, true
}

// done marks one popped request as fully processed. Must be called after
// any follow-up pushes so quiescence is never observed early.
func (f *frontier) done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight--
	if f.inFlight == 0 && f.items.Len() == 0 {
		// Crawl quiesced: wake every blocked worker so it can exit.
		f.cond.Broadcast()
	}
}

// close stops the frontier and wakes all blocked workers.
func (f *frontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// frontierItem pairs a request with its discovery sequence number.
type frontierItem struct {
	req Request
	seq int
}

// requestHeap is a max-heap on priority; lower seq wins ties.
type requestHeap []frontierItem

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].req.Priority != h[j].req.Priority {
		return h[i].req.Priority > h[j].req.Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	*h = append(*h, x.(frontierItem))
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
