package fetch

import (
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/grid"
)

// DirectionFetcher loads the path positions of one vertex without blocking
type DirectionFetcher interface {
	// FetchDirections returns true once all directions of key are available
	FetchDirections(key uint64) bool
	Directions() []grid.Direction
	Reset()
}

// PathFetcher asks the owner of a vertex for the number of its directions,
// then for every direction by index.
type PathFetcher struct {
	worker comm.WorkerID
	rank   comm.Rank
	router comm.Router
	table  *grid.GridTable
	corr   comm.Correlator

	ready      bool
	requested  bool
	sizeKnown  bool
	size       int
	directions []grid.Direction
}

// NewPathFetcher creates a direction fetcher for a worker of rank
func NewPathFetcher(worker comm.WorkerID, rank comm.Rank, router comm.Router, table *grid.GridTable, corr comm.Correlator) *PathFetcher {
	return &PathFetcher{
		worker: worker,
		rank:   rank,
		router: router,
		table:  table,
		corr:   corr,
	}
}

func (f *PathFetcher) FetchDirections(key uint64) bool {
	if f.ready {
		return true
	}

	destination := f.router.VertexRank(key)
	if destination == f.rank {
		f.directions = f.table.GetDirections(key)
		f.ready = true
		return true
	}

	if !f.sizeKnown {
		if !f.requested {
			f.corr.Submit(f.worker, destination, comm.KindVertexPathsSize, []uint64{key})
			f.requested = true
			return false
		}
		if !f.corr.IsComplete(f.worker) {
			return false
		}
		resp := f.corr.TakeResponse(f.worker)
		f.requested = false
		f.sizeKnown = true
		if len(resp) > 0 {
			f.size = int(resp[0])
		}
	}

	for len(f.directions) < f.size {
		index := uint64(len(f.directions))
		if !f.requested {
			f.corr.Submit(f.worker, destination, comm.KindVertexPath, []uint64{key, index})
			f.requested = true
			return false
		}
		if !f.corr.IsComplete(f.worker) {
			return false
		}
		resp := f.corr.TakeResponse(f.worker)
		f.requested = false
		if len(resp) < 2 {
			// the vertex lost directions in between, keep what we have
			Logger.Warningf("worker %d: direction %d of %d vanished", f.worker, index, key)
			f.size = len(f.directions)
			break
		}
		f.directions = append(f.directions, grid.Direction{Wave: resp[0], Progression: int32(resp[1])})
	}

	f.ready = true
	return true
}

func (f *PathFetcher) Directions() []grid.Direction {
	return f.directions
}

func (f *PathFetcher) Reset() {
	f.ready = false
	f.requested = false
	f.sizeKnown = false
	f.size = 0
	f.directions = nil
}
