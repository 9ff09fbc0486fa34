package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Features and Guarantees of LockFreeMPSC:
//
//   - Lock-Free pushes: producers only use atomic operations on the hot path
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Single Consumer: values are delivered through the Recv() channel
//   - Per-producer FIFO: values pushed by one goroutine are received in push order.
//     Across producers the order is whichever push completes first.
//   - Close drains: values pushed before Close are still delivered, then Recv() is closed

// node represents a single element in the queue
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is a lock-free multi-producer single-consumer queue
// Implementation uses a linked list of nodes with atomic operations
// for concurrent push operations without locks
type LockFreeMPSC[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	out    chan *T
	done   chan struct{}
	closed atomic.Bool

	// wakes the forwarding goroutine when it ran out of items
	mu   sync.Mutex
	cond *sync.Cond
}

// NewLockFreeMPSC creates a new lock-free multi-producer single-consumer queue
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{
		out:  make(chan *T),
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.forward()

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed or value is nil.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// may fail if another producer already moved the tail, which is fine
				q.tail.CompareAndSwap(tailNode, newNode)

				// signal under the lock, otherwise the wakeup can get lost between the
				// consumer's emptiness check and its Wait()
				q.mu.Lock()
				q.cond.Signal()
				q.mu.Unlock()
				return true
			}
		} else {
			// help a producer that appended but did not move the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin briefly at low contention, then yield
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// forward moves items from the linked list to the output channel
func (q *LockFreeMPSC[T]) forward() {
	defer close(q.done)
	defer close(q.out)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			hasItems = true

			value := next.value
			q.head.Store(next)
			q.out <- value

			// help the go gc
			next.value = nil
		}

		if hasItems {
			continue
		}

		q.mu.Lock()
		head := q.head.Load()
		if head.next.Load() == nil {
			if q.closed.Load() {
				q.mu.Unlock()
				return
			}
			q.cond.Wait()
		}
		q.mu.Unlock()
	}
}

// Recv returns a receive-only channel for consuming from the queue.
// The channel is closed once the queue is closed and all items were delivered.
func (q *LockFreeMPSC[T]) Recv() <-chan *T {
	return q.out
}

// Done is closed after the last item was handed to the consumer.
func (q *LockFreeMPSC[T]) Done() <-chan struct{} {
	return q.done
}

// Close closes the queue, preventing further writes.
// Any items already in the queue will still be delivered to the consumer.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)

	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed returns true if the queue is closed.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns an approximate count of the number of items in the queue.
// This is O(n) and should only be used for debugging and statistics.
func (q *LockFreeMPSC[T]) Len() int {
	count := 0
	current := q.head.Load()
	for {
		next := current.next.Load()
		if next == nil {
			return count
		}
		count++
		current = next
	}
}
