package fetch

import (
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/kmer"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("fetch")

// Attributes are the parts of a vertex the graph engines work with,
// oriented relative to Key
type Attributes struct {
	Key      uint64
	Found    bool
	Coverage int
	Parents  []uint64
	Children []uint64
}

// VertexFetcher loads the attributes of one vertex at a time without blocking
type VertexFetcher interface {
	// Fetch returns true once the attributes of key are available. While it
	// returns false the caller must retry with the same key on a later step.
	Fetch(key uint64) bool

	// Attributes returns the fetched attributes, valid after Fetch returned true
	Attributes() Attributes

	// Reset prepares the fetcher for the next key
	Reset()
}

// AttributeFetcher reads vertices of its own rank from the local table and
// all other vertices through a Correlator. It has at most one outstanding request.
type AttributeFetcher struct {
	worker comm.WorkerID
	rank   comm.Rank
	router comm.Router
	table  *grid.GridTable
	corr   comm.Correlator

	key       uint64
	requested bool
	ready     bool
	attrs     Attributes
}

// NewAttributeFetcher creates a fetcher for a worker of rank
func NewAttributeFetcher(worker comm.WorkerID, rank comm.Rank, router comm.Router, table *grid.GridTable, corr comm.Correlator) *AttributeFetcher {
	return &AttributeFetcher{
		worker: worker,
		rank:   rank,
		router: router,
		table:  table,
		corr:   corr,
	}
}

func (f *AttributeFetcher) Fetch(key uint64) bool {
	if f.ready {
		if key != f.key {
			Logger.Panicf("worker %d: fetch of %d without reset after %d", f.worker, key, f.key)
		}
		return true
	}

	w := f.router.WordSize
	destination := f.router.VertexRank(key)
	if destination == f.rank {
		f.key = key
		f.attrs = LocalAttributes(f.table, key, w)
		f.ready = true
		return true
	}

	if !f.requested {
		f.key = key
		f.corr.Submit(f.worker, destination, comm.KindVertexEdges, []uint64{key})
		f.requested = true
		return false
	}
	if key != f.key {
		Logger.Panicf("worker %d: fetch of %d while %d is pending", f.worker, key, f.key)
	}

	if !f.corr.IsComplete(f.worker) {
		return false
	}
	f.attrs = decodeEdgesResponse(key, f.corr.TakeResponse(f.worker), w)
	f.ready = true
	return true
}

func (f *AttributeFetcher) Attributes() Attributes {
	return f.attrs
}

func (f *AttributeFetcher) Reset() {
	f.requested = false
	f.ready = false
	f.attrs = Attributes{}
}

// LocalAttributes reads the attributes of key from a table
func LocalAttributes(table *grid.GridTable, key uint64, w int) Attributes {
	v := table.Find(key)
	if v == nil {
		return Attributes{Key: key}
	}
	m := v.EdgesFor(key, w)
	return Attributes{
		Key:      key,
		Found:    true,
		Coverage: int(v.Coverage),
		Parents:  kmer.Parents(key, m, w),
		Children: kmer.Children(key, m, w),
	}
}

func decodeEdgesResponse(key uint64, resp []uint64, w int) Attributes {
	if len(resp) < 3 || resp[0] == 0 {
		return Attributes{Key: key}
	}
	m := kmer.EdgeMask(resp[2])
	return Attributes{
		Key:      key,
		Found:    true,
		Coverage: int(resp[1]),
		Parents:  kmer.Parents(key, m, w),
		Children: kmer.Children(key, m, w),
	}
}
