package arena

import (
	"errors"
	"testing"
)

func TestAllocateDoesNotOverlap(t *testing.T) {
	a := New[int]("test", 64, 4)

	b1 := a.Allocate(10)
	b2 := a.Allocate(10)

	s1 := a.Slice(b1, 10)
	s2 := a.Slice(b2, 10)
	for i := range s1 {
		s1[i] = 1
	}
	for i := range s2 {
		s2[i] = 2
	}
	for i := range s1 {
		if s1[i] != 1 {
			t.Fatalf("block 1 was overwritten at %d", i)
		}
	}

	if cap(s1) != 10 {
		t.Errorf("expected capacity to be clamped to 10, got %d", cap(s1))
	}
	s1 = append(s1, 42)
	if s2[0] != 2 {
		t.Error("append on a block must not write into its neighbour")
	}
}

func TestReleaseIsReusedFirst(t *testing.T) {
	a := New[int]("test", 64, 4)

	b := a.Allocate(3)
	a.Release(b, 3)

	again := a.Allocate(3)
	if again != b {
		t.Errorf("expected released block %v to be reused, got %v", b, again)
	}

	stats := a.Stats()
	if stats.Reused != 1 || stats.HighWater != 3 || stats.FreeBlocks != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	// different size buckets are not mixed
	a.Release(again, 3)
	other := a.Allocate(4)
	if other == again {
		t.Error("a block of size 3 must not serve an allocation of size 4")
	}
}

func TestRegionRollover(t *testing.T) {
	a := New[int]("test", 8, 4)

	a.Allocate(6)
	b := a.Allocate(4) // does not fit the remaining 2 elements
	if b.Region != 1 || b.Offset != 0 {
		t.Errorf("expected allocation in a fresh region, got %v", b)
	}
	if a.Stats().Regions != 2 {
		t.Errorf("expected 2 regions, got %d", a.Stats().Regions)
	}
	if a.Capacity() != 32 {
		t.Errorf("expected a capacity of 4 regions of 8, got %d", a.Capacity())
	}
}

func TestExhaustionIsFatal(t *testing.T) {
	a := New[int]("test", 8, 1)
	a.Allocate(8)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic on exhaustion")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrArenaExhausted) {
			t.Errorf("expected ErrArenaExhausted, got %v", r)
		}
	}()
	a.Allocate(1)
}

// growing a bin from size 1 to N repeatedly only ever needs one live block
// per size, so the high water mark stays bounded by the triangular number
func TestGrowthHighWaterIsBounded(t *testing.T) {
	const bins = 16
	const n = 20
	a := New[uint64]("test", 1024, 16)

	for round := 0; round < 3; round++ {
		blocks := make([]Block, bins)
		sizes := make([]int, bins)
		for size := 1; size <= n; size++ {
			for bin := 0; bin < bins; bin++ {
				nb := a.Allocate(size)
				if sizes[bin] > 0 {
					a.Release(blocks[bin], sizes[bin])
				}
				blocks[bin], sizes[bin] = nb, size
			}
		}
		for bin := 0; bin < bins; bin++ {
			a.Release(blocks[bin], sizes[bin])
		}
	}

	// every size class needs at most bins+1 blocks at once
	var bound uint64
	for size := 1; size <= n; size++ {
		bound += uint64(size * (bins + 1))
	}
	if hw := a.Stats().HighWater; hw > bound {
		t.Errorf("high water mark %d exceeds bound %d", hw, bound)
	}
	if a.Stats().Reused == 0 {
		t.Error("expected released blocks to be reused")
	}
}
