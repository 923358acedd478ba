package fetch

import (
	"fmt"

	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/grid"
)

// Responder answers vertex queries of other ranks from the local table.
// It must run on the goroutine owning the table.
type Responder struct {
	table *grid.GridTable
}

// NewResponder creates a responder for a table
func NewResponder(table *grid.GridTable) *Responder {
	return &Responder{table: table}
}

func (r *Responder) Answer(kind comm.MessageKind, payload []uint64) ([]uint64, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%s without vertex", kind)
	}
	key := payload[0]

	switch kind {
	case comm.KindVertexEdges:
		v := r.table.Find(key)
		if v == nil {
			return []uint64{0, 0, 0}, nil
		}
		return []uint64{1, uint64(v.Coverage), uint64(v.EdgesFor(key, r.table.WordSize()))}, nil

	case comm.KindVertexPathsSize:
		return []uint64{uint64(len(r.table.GetDirections(key)))}, nil

	case comm.KindVertexPath:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%s without index", kind)
		}
		directions := r.table.GetDirections(key)
		index := payload[1]
		if index >= uint64(len(directions)) {
			return []uint64{}, nil
		}
		d := directions[index]
		return []uint64{d.Wave, uint64(uint32(d.Progression))}, nil
	}

	return nil, fmt.Errorf("unsupported message kind %s", kind)
}
