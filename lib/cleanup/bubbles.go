package cleanup

import (
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/fetch"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/traverse"
	"github.com/VictoriaMetrics/metrics"
)

var (
	bubbleSeedsChecked = metrics.NewCounter("dkg_bubble_seeds_checked_total")
	bubbleSeedsInvalid = metrics.NewCounter("dkg_bubble_seeds_invalid_total")
)

// DeadEndDepth is how far a seed end must lead into the graph to not be a dead end
const DeadEndDepth = 128

type bubbleStep int

const (
	stepDeadEndLeft bubbleStep = iota
	stepDeadEndRight
	stepBubblePatterns
)

// BubbleDetector checks whether a seed path is a spurious arm of a bubble.
// Each call to Work advances the check by one step. A seed is invalid if one
// of its ends runs into a dead end within DeadEndDepth vertices or if it does
// not hang off a unique parent and grandparent.
type BubbleDetector struct {
	id       comm.WorkerID
	seed     []uint64
	wordSize int

	fetcher    fetch.VertexFetcher
	directions fetch.DirectionFetcher
	search     *traverse.Search

	step    bubbleStep
	started bool
	done    bool
	valid   bool

	fetchedParent      bool
	parent             uint64
	fetchedGrandparent bool
	grandparent        uint64
	fetchedDirections  bool
	grandparentDirs    []grid.Direction
}

// NewBubbleDetector creates a detector for one seed
func NewBubbleDetector(id comm.WorkerID, seed []uint64, wordSize int, fetcher fetch.VertexFetcher, directions fetch.DirectionFetcher) *BubbleDetector {
	bubbleSeedsChecked.Inc()
	return &BubbleDetector{
		id:         id,
		seed:       seed,
		wordSize:   wordSize,
		fetcher:    fetcher,
		directions: directions,
		search:     traverse.NewSearch(fetcher, DeadEndDepth),
		valid:      true,
	}
}

// Work advances the detector by one step
func (b *BubbleDetector) Work() {
	if b.done {
		return
	}

	// too long to be a simple polymorphism, not judged here
	if len(b.seed) == 0 || len(b.seed) > 3*b.wordSize {
		b.done = true
		return
	}

	switch b.step {
	case stepDeadEndLeft:
		b.checkDeadEnd(b.seed[0], traverse.Parents)
	case stepDeadEndRight:
		b.checkDeadEnd(b.seed[len(b.seed)-1], traverse.Children)
	case stepBubblePatterns:
		b.checkBubblePatterns()
	}
}

func (b *BubbleDetector) checkDeadEnd(start uint64, direction traverse.Direction) {
	if !b.started {
		b.search.Start(start, direction)
		b.started = true
		return
	}
	if !b.search.Step() {
		return
	}

	b.started = false
	if b.search.ActualMaximumDepth() < DeadEndDepth {
		b.invalidate()
		return
	}
	b.step++
	b.fetcher.Reset()
}

func (b *BubbleDetector) checkBubblePatterns() {
	switch {
	case !b.fetchedParent:
		if !b.fetcher.Fetch(b.seed[0]) {
			return
		}
		parents := b.fetcher.Attributes().Parents
		b.fetcher.Reset()
		b.fetchedParent = true
		if len(parents) != 1 {
			b.invalidate()
			return
		}
		b.parent = parents[0]

	case !b.fetchedGrandparent:
		if !b.fetcher.Fetch(b.parent) {
			return
		}
		parents := b.fetcher.Attributes().Parents
		b.fetcher.Reset()
		b.fetchedGrandparent = true
		if len(parents) != 1 {
			b.invalidate()
			return
		}
		b.grandparent = parents[0]
		b.directions.Reset()

	case !b.fetchedDirections:
		if !b.directions.FetchDirections(b.grandparent) {
			return
		}
		b.grandparentDirs = b.directions.Directions()
		b.fetchedDirections = true

	default:
		b.done = true
	}
}

func (b *BubbleDetector) invalidate() {
	b.valid = false
	b.done = true
	bubbleSeedsInvalid.Inc()
}

// IsDone reports whether the detector reached a verdict
func (b *BubbleDetector) IsDone() bool {
	return b.done
}

// IsValid is false if the seed was found to be spurious
func (b *BubbleDetector) IsValid() bool {
	return b.valid
}

// WorkerID returns the id used for remote requests
func (b *BubbleDetector) WorkerID() comm.WorkerID {
	return b.id
}

// Seed returns the checked seed
func (b *BubbleDetector) Seed() []uint64 {
	return b.seed
}

// GrandparentDirections returns the directions recorded at the grandparent of the seed
func (b *BubbleDetector) GrandparentDirections() []grid.Direction {
	return b.grandparentDirs
}
