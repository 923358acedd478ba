// Package util provides a lock-free Multi-Producer Single-Consumer (MPSC) queue implementation.
//
// Features and Guarantees:
//
//   - Lock-Free: producers append with atomic operations only
//   - Unbounded Size: the queue can grow to any size as needed, limited only by available memory
//   - Thread-Safe writes: any number of goroutines can safely Push() concurrently
//   - Polling Consumer: a single goroutine removes items with TryPop() or Drain(), neither ever blocks.
//     This lets a rank loop interleave draining its inbox with its own work.
//   - No Strict FIFO Guarantee across producers: the order of concurrent pushes is determined by
//     which producer completes its operation first. Items of a single producer stay in order.
package util

import (
	"runtime"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T interface{}] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is a lock-free multi-producer single-consumer queue.
// The implementation is a linked list with a sentinel head node.
type Queue[T interface{}] struct {
	head   atomic.Pointer[node[T]] // only touched by the consumer
	tail   atomic.Pointer[node[T]]
	size   atomic.Int64
	closed atomic.Bool
}

// NewQueue creates an empty queue
func NewQueue[T interface{}]() *Queue[T] {
	sentinel := &node[T]{}
	q := &Queue[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Push adds an item to the queue.
// Returns false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *Queue[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8 = 0

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// may fail if another producer already helped, tail still moves forward
				q.tail.CompareAndSwap(tailNode, newNode)
				q.size.Add(1)
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// exponential backoff under contention
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// TryPop removes the oldest item. The second return value is false if the queue is empty.
//
// Thread-safety: must only be called by the single consumer.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return zero, false
	}

	value := next.value
	q.head.Store(next)
	q.size.Add(-1)

	// help go gc, next is the new sentinel
	next.value = zero
	return value, true
}

// Drain pops at most max items (all available items if max <= 0) and calls fn for each.
// Returns the number of processed items.
//
// Thread-safety: must only be called by the single consumer.
func (q *Queue[T]) Drain(max int, fn func(T)) int {
	processed := 0
	for max <= 0 || processed < max {
		value, ok := q.TryPop()
		if !ok {
			break
		}
		fn(value)
		processed++
	}
	return processed
}

// Close prevents further writes. Items already in the queue can still be popped.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
}

// IsClosed returns true if the queue is closed.
func (q *Queue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns an approximate count of the items in the queue
func (q *Queue[T]) Len() int {
	return int(q.size.Load())
}
