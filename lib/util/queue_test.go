package util

import (
	"sync"
	"testing"
)

// TestBasicOperations tests push and pop in a single goroutine
func TestBasicOperations(t *testing.T) {
	q := NewQueue[int]()

	if _, ok := q.TryPop(); ok {
		t.Fatal("new queue should be empty")
	}

	for i := 0; i < 10; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}
	if q.Len() != 10 {
		t.Errorf("Expected length 10, got %d", q.Len())
	}

	for i := 0; i < 10; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("Queue empty at item %d", i)
		}
		if val != i {
			t.Errorf("Expected %d, got %d", i, val)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Error("Queue should be empty")
	}
}

// TestDrainLimit verifies that Drain respects its budget
func TestDrainLimit(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	var got []int
	if n := q.Drain(3, func(v int) { got = append(got, v) }); n != 3 {
		t.Errorf("Expected 3 drained items, got %d", n)
	}
	if n := q.Drain(0, func(v int) { got = append(got, v) }); n != 2 {
		t.Errorf("Expected 2 remaining items, got %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("Expected %d at position %d, got %d", i, i, v)
		}
	}
}

// TestClose verifies that a closed queue rejects writes but keeps its items
func TestClose(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Close()

	if !q.IsClosed() {
		t.Error("Queue should be closed")
	}
	if q.Push("b") {
		t.Error("Push on a closed queue should fail")
	}
	if v, ok := q.TryPop(); !ok || v != "a" {
		t.Errorf("Expected remaining item a, got %q (%v)", v, ok)
	}
}

// TestConcurrentProducers verifies the queue works correctly with multiple producers
func TestConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()
			base := producerID * itemsPerProducer
			for i := 0; i < itemsPerProducer; i++ {
				q.Push(base + i)
			}
		}(p)
	}

	received := make(map[int]bool, totalItems)
	lastPerProducer := make(map[int]int)
	consume := func(v int) {
		if received[v] {
			t.Errorf("Duplicate item received: %d", v)
		}
		received[v] = true

		// per producer order is preserved
		producer := v / itemsPerProducer
		if last, ok := lastPerProducer[producer]; ok && last > v {
			t.Errorf("Producer %d out of order: %d after %d", producer, v, last)
		}
		lastPerProducer[producer] = v
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// poll while producers are running
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			q.Drain(100, consume)
		}
	}
	q.Drain(0, consume)

	if len(received) != totalItems {
		t.Errorf("Expected %d items, got %d", totalItems, len(received))
	}
}

func BenchmarkPushPop(b *testing.B) {
	q := NewQueue[int]()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q.Push(i)
		q.TryPop()
	}
}
