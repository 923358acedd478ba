package comm

import (
	"fmt"

	"github.com/ValentinKolb/dKG/lib/kmer"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("comm")

// Rank identifies a process owning one partition of the vertex store
type Rank int

// WorkerID identifies a worker; a worker has at most one outstanding request
type WorkerID uint64

// MessageKind is the query type of a request
type MessageKind uint8

const (
	// KindVertexEdges asks for [found, coverage, edge mask] of payload[0], mask relative to payload[0]
	KindVertexEdges MessageKind = iota + 1
	// KindVertexPathsSize asks for [number of directions] of payload[0]
	KindVertexPathsSize
	// KindVertexPath asks for [wave, progression] of direction payload[1] of payload[0]
	KindVertexPath
)

func (k MessageKind) String() string {
	switch k {
	case KindVertexEdges:
		return "VERTEX_EDGES"
	case KindVertexPathsSize:
		return "VERTEX_PATHS_SIZE"
	case KindVertexPath:
		return "VERTEX_PATH"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

// --------------------------------------------------------------------------
// Interfaces
// --------------------------------------------------------------------------

// Correlator delivers requests of workers to ranks and hands the responses
// back by worker id. None of the methods block.
type Correlator interface {
	// Submit sends a request on behalf of worker. A worker must take the
	// response of its previous request before submitting again.
	Submit(worker WorkerID, destination Rank, kind MessageKind, payload []uint64)

	// IsComplete reports whether the response for worker has arrived
	IsComplete(worker WorkerID) bool

	// TakeResponse returns and forgets the response for worker. Returns nil
	// if none is available.
	TakeResponse(worker WorkerID) []uint64
}

// Handler answers a request against the partition of one rank
type Handler interface {
	Answer(kind MessageKind, payload []uint64) ([]uint64, error)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(kind MessageKind, payload []uint64) ([]uint64, error)

func (f HandlerFunc) Answer(kind MessageKind, payload []uint64) ([]uint64, error) {
	return f(kind, payload)
}

// --------------------------------------------------------------------------
// Routing
// --------------------------------------------------------------------------

// Router maps vertices to the rank owning them. Both strands of a k-mer are
// owned by the same rank.
type Router struct {
	Ranks    int
	WordSize int
}

// VertexRank returns the owner of key
func (r Router) VertexRank(key uint64) Rank {
	if r.Ranks <= 1 {
		return 0
	}
	return Rank(kmer.RankHash(key, r.WordSize) % uint64(r.Ranks))
}

// Owns returns a filter selecting the vertices owned by rank
func (r Router) Owns(rank Rank) func(key uint64) bool {
	return func(key uint64) bool {
		return r.VertexRank(key) == rank
	}
}
