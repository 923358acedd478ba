package cleanup

import (
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/fetch"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/traverse"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("cleanup")

	tipCandidates     = metrics.NewCounter("dkg_tips_candidates_total")
	tipVerticesMarked = metrics.NewCounter("dkg_tips_vertices_marked_total")
)

const (
	// DefaultTipMaxCoverage is the highest coverage a dead end may have to be considered
	DefaultTipMaxCoverage = 3
	// DefaultProgressInterval is the number of vertices between progress reports
	DefaultProgressInterval = 40000
)

// TipOptions configures a TipRemover
type TipOptions struct {
	// ID is the worker id of the remover when driven by a Pool
	ID          comm.WorkerID
	MaxCoverage int
	// JunctionDepth is how far a branch must reach for its vertex to count as
	// a junction; 0 uses the word size
	JunctionDepth    int
	ProgressInterval int
}

// DefaultTipOptions returns the options used for a full pass
func DefaultTipOptions() TipOptions {
	return TipOptions{
		MaxCoverage:      DefaultTipMaxCoverage,
		ProgressInterval: DefaultProgressInterval,
	}
}

// TipRemover finds short low coverage dead ends ("tips") hanging off the
// graph. A pass iterates over the whole local table and evaluates every
// candidate with a search of depth 2w+2 around it. Vertices of removable tips
// are appended to a list that lives as long as the remover, across passes;
// deleting them is up to the caller.
//
// The table is frozen for the duration of the pass.
type TipRemover struct {
	table    *grid.GridTable
	fetcher  fetch.VertexFetcher
	search   *traverse.Search
	opts     TipOptions
	wordSize int

	initiated  bool
	iterator   *grid.Iterator
	hasVertex  bool
	searching  bool
	root       uint64
	rootParent int
	rootChild  int

	processed uint64
	total     uint64
	toRemove  []uint64
	removed   int
	done      bool
}

// NewTipRemover creates a remover for the local table of a rank
func NewTipRemover(table *grid.GridTable, fetcher fetch.VertexFetcher, opts TipOptions) *TipRemover {
	if opts.MaxCoverage <= 0 {
		opts.MaxCoverage = DefaultTipMaxCoverage
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	w := table.WordSize()
	return &TipRemover{
		table:    table,
		fetcher:  fetcher,
		search:   traverse.NewSearch(fetcher, 2*w+2),
		opts:     opts,
		wordSize: w,
	}
}

// Reduce advances the pass by one step. Returns true once all vertices of the
// table have been considered; the table is unfrozen at that point.
func (r *TipRemover) Reduce() bool {
	if !r.initiated {
		r.table.Freeze()
		r.iterator = grid.NewIterator(r.table)
		r.processed = 0
		r.total = r.table.Size() / 2
		r.hasVertex = false
		r.initiated = true
		return false
	}

	if !r.hasVertex {
		for r.iterator.HasNext() {
			v := r.iterator.Next()
			r.processed++
			r.printProgress(false)

			parents, children := v.Degree(v.LowerKey, r.wordSize)
			if r.isCandidate(v, parents, children) {
				r.root = v.LowerKey
				r.rootParent, r.rootChild = parents, children
				r.hasVertex = true
				r.searching = false
				tipCandidates.Inc()
				return false
			}
		}

		r.printProgress(true)
		r.table.Unfreeze()
		r.initiated = false
		return true
	}

	if !r.searching {
		r.search.Start(r.root, traverse.Both)
		r.searching = true
		return false
	}
	if !r.search.Step() {
		return false
	}

	graph := newTipGraph(r.search.Edges(), r.search.Coverages())
	junctionDepth := r.opts.JunctionDepth
	if junctionDepth <= 0 {
		junctionDepth = r.wordSize
	}
	verdict := graph.evaluate(r.root, r.rootParent == 0, r.wordSize, junctionDepth)
	if verdict.Remove {
		r.toRemove = append(r.toRemove, verdict.Path...)
		r.removed += len(verdict.Path)
		tipVerticesMarked.Add(len(verdict.Path))
		Logger.Debugf("rank %d: tip of %d vertices at junction %d (A=%d, B=%d, depth %d)",
			r.table.Rank(), len(verdict.Path), verdict.Junction, verdict.MaxCoverage, verdict.AltMinCoverage, verdict.AltDepth)
	}
	r.hasVertex = false
	return false
}

func (r *TipRemover) isCandidate(v *grid.Vertex, parents, children int) bool {
	deadEnd := (parents == 1 && children == 0) || (parents == 0 && children == 1)
	return deadEnd && int(v.Coverage) <= r.opts.MaxCoverage
}

func (r *TipRemover) printProgress(done bool) {
	if done || r.processed%uint64(r.opts.ProgressInterval) == 0 {
		Logger.Infof("rank %d is reducing memory usage [%d/%d], %d vertices marked",
			r.table.Rank(), r.processed, r.total, r.removed)
	}
}

// Work runs Reduce until one full pass is complete, so a TipRemover can be
// driven by a Pool next to other workers
func (r *TipRemover) Work() {
	if !r.done {
		r.done = r.Reduce()
	}
}

// IsDone reports whether the pass started by Work is complete
func (r *TipRemover) IsDone() bool {
	return r.done
}

// WorkerID returns the worker id of the remover
func (r *TipRemover) WorkerID() comm.WorkerID {
	return r.opts.ID
}

// VerticesToRemove returns the vertices marked by all passes so far, in the order they were found
func (r *TipRemover) VerticesToRemove() []uint64 {
	return r.toRemove
}

// NumberOfRemovedVertices returns the length of the removal list
func (r *TipRemover) NumberOfRemovedVertices() int {
	return r.removed
}
