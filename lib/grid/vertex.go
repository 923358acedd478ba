package grid

import (
	"math"

	"github.com/ValentinKolb/dKG/lib/kmer"
)

// Vertex is the record stored for one canonical k-mer. Edges are kept
// relative to LowerKey; use EdgesFor to view them from either strand.
type Vertex struct {
	LowerKey uint64
	Coverage uint16
	Edges    kmer.EdgeMask
}

// IncrementCoverage adds one observation, saturating at the maximum
func (v *Vertex) IncrementCoverage() {
	if v.Coverage < math.MaxUint16 {
		v.Coverage++
	}
}

// SetCoverage sets the coverage, saturating at the maximum
func (v *Vertex) SetCoverage(coverage int) {
	switch {
	case coverage < 0:
		v.Coverage = 0
	case coverage > math.MaxUint16:
		v.Coverage = math.MaxUint16
	default:
		v.Coverage = uint16(coverage)
	}
}

// EdgesFor returns the edge mask as seen from key, which must be LowerKey or its complement
func (v *Vertex) EdgesFor(key uint64, w int) kmer.EdgeMask {
	if key == v.LowerKey {
		return v.Edges
	}
	return kmer.FlipMask(v.Edges)
}

// Parents returns the parents of key
func (v *Vertex) Parents(key uint64, w int) []uint64 {
	return kmer.Parents(key, v.EdgesFor(key, w), w)
}

// Children returns the children of key
func (v *Vertex) Children(key uint64, w int) []uint64 {
	return kmer.Children(key, v.EdgesFor(key, w), w)
}

// AddOutgoingEdge records the edge key -> child
func (v *Vertex) AddOutgoingEdge(key, child uint64, w int) {
	base := kmer.LastBase(child)
	if key == v.LowerKey {
		v.Edges |= kmer.ChildBit(base)
	} else {
		v.Edges |= kmer.ParentBit(3 - base)
	}
}

// AddIngoingEdge records the edge parent -> key
func (v *Vertex) AddIngoingEdge(key, parent uint64, w int) {
	base := kmer.FirstBase(parent, w)
	if key == v.LowerKey {
		v.Edges |= kmer.ParentBit(base)
	} else {
		v.Edges |= kmer.ChildBit(3 - base)
	}
}

// Degree returns the number of parents and children of key
func (v *Vertex) Degree(key uint64, w int) (parents, children int) {
	m := v.EdgesFor(key, w)
	return m.NumberOfParents(), m.NumberOfChildren()
}
