// Package arena provides a bump allocator over a bounded number of large
// regions with size-bucketed reuse of released blocks.
//
// Blocks are addressed by explicit (region, offset) handles instead of
// pointers. A handle stays valid for the lifetime of the arena; memory is
// never given back, Release only makes a block available to a later Allocate
// of exactly the same size. Running out of regions is fatal.
package arena

import (
	"errors"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("arena")

	// ErrArenaExhausted is raised (as panic value) when no region can satisfy an allocation
	ErrArenaExhausted = errors.New("arena exhausted")

	allocatedElements = metrics.NewCounter("dkg_arena_elements_allocated_total")
	reusedBlocks      = metrics.NewCounter("dkg_arena_blocks_reused_total")
)

const (
	DefaultRegionSize = 1 << 20
	DefaultMaxRegions = 1024
)

// Block is a handle to a contiguous run of elements inside one region
type Block struct {
	Region uint32
	Offset uint32
}

// Stats describes the state of an arena
type Stats struct {
	Regions      int    `json:"regions"`
	HighWater    uint64 `json:"high_water"`    // elements handed out by bump allocation
	Reused       uint64 `json:"reused"`        // allocations served from a free list
	FreeBlocks   uint64 `json:"free_blocks"`   // blocks currently waiting for reuse
	FreeElements uint64 `json:"free_elements"` // elements held by those blocks
}

// Arena is a bump allocator for elements of type T.
//
// Not thread-safe: an arena belongs to exactly one store.
type Arena[T any] struct {
	name       string
	regionSize int
	maxRegions int

	regions [][]T
	offset  int // bump position in the last region

	free map[int][]Block

	highWater    uint64
	reused       uint64
	freeBlocks   uint64
	freeElements uint64
}

// New creates an arena with regions of regionSize elements and at most
// maxRegions regions. Regions are materialized on first use.
func New[T any](name string, regionSize, maxRegions int) *Arena[T] {
	if regionSize <= 0 {
		regionSize = DefaultRegionSize
	}
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}
	return &Arena[T]{
		name:       name,
		regionSize: regionSize,
		maxRegions: maxRegions,
		free:       make(map[int][]Block),
	}
}

// Allocate returns a block of n elements. A released block of exactly n
// elements is reused before the bump pointer moves.
func (a *Arena[T]) Allocate(n int) Block {
	if n <= 0 {
		panic(fmt.Sprintf("arena %s: invalid allocation size %d", a.name, n))
	}

	if list := a.free[n]; len(list) > 0 {
		b := list[len(list)-1]
		a.free[n] = list[:len(list)-1]
		a.reused++
		a.freeBlocks--
		a.freeElements -= uint64(n)
		reusedBlocks.Inc()
		return b
	}

	if n > a.regionSize {
		a.exhausted(n)
	}

	if len(a.regions) == 0 || a.offset+n > a.regionSize {
		if len(a.regions) == a.maxRegions {
			a.exhausted(n)
		}
		a.regions = append(a.regions, make([]T, a.regionSize))
		a.offset = 0
		Logger.Debugf("arena %s: opened region %d (%d elements)", a.name, len(a.regions)-1, a.regionSize)
	}

	b := Block{Region: uint32(len(a.regions) - 1), Offset: uint32(a.offset)}
	a.offset += n
	a.highWater += uint64(n)
	allocatedElements.Add(n)
	return b
}

// Release hands a block of n elements back for reuse. The contents are left as is.
func (a *Arena[T]) Release(b Block, n int) {
	if n <= 0 {
		return
	}
	a.free[n] = append(a.free[n], b)
	a.freeBlocks++
	a.freeElements += uint64(n)
}

// Slice resolves a block of n elements. The capacity is clamped to n so
// appends never spill into a neighbouring block.
func (a *Arena[T]) Slice(b Block, n int) []T {
	start := int(b.Offset)
	return a.regions[b.Region][start : start+n : start+n]
}

// Stats returns the current allocation statistics
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Regions:      len(a.regions),
		HighWater:    a.highWater,
		Reused:       a.reused,
		FreeBlocks:   a.freeBlocks,
		FreeElements: a.freeElements,
	}
}

// Capacity is the number of elements the arena can hand out in total
func (a *Arena[T]) Capacity() uint64 {
	return uint64(a.regionSize) * uint64(a.maxRegions)
}

func (a *Arena[T]) exhausted(n int) {
	Logger.Errorf("arena %s: cannot allocate %d elements (%d regions of %d elements in use, high water %d)",
		a.name, n, len(a.regions), a.regionSize, a.highWater)
	panic(fmt.Errorf("%w: %s needs %d elements", ErrArenaExhausted, a.name, n))
}
