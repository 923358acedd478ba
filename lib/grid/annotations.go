package grid

import (
	"sync"

	"github.com/ValentinKolb/dKG/lib/kmer"
	"github.com/puzpuzpuz/xsync/v3"
)

// ReadAnnotation locates a k-mer on a read
type ReadAnnotation struct {
	Rank             int32
	ReadIndex        uint32
	PositionOnStrand uint32
	Strand           byte
}

// Direction locates a k-mer on an assembled path
type Direction struct {
	Wave        uint64
	Progression int32
}

type annotations struct {
	mu         sync.Mutex
	reads      []ReadAnnotation
	directions []Direction
}

// VertexTable holds the per-vertex data that does not fit the packed grid
// records. Entries are keyed by the key as given (strand sensitive).
//
// Thread-safe, unlike the grid table, so annotations can be read by the
// server while paths are being recorded.
type VertexTable struct {
	wordSize int
	entries  *xsync.MapOf[uint64, *annotations]
}

// NewVertexTable creates an empty table
func NewVertexTable() *VertexTable {
	return &VertexTable{
		wordSize: kmer.MaxWordSize,
		entries:  xsync.NewMapOf[uint64, *annotations](),
	}
}

// SetWordSize sets the k-mer length used for reverse complements
func (vt *VertexTable) SetWordSize(w int) {
	vt.wordSize = w
}

func (vt *VertexTable) entry(key uint64) *annotations {
	a, _ := vt.entries.LoadOrCompute(key, func() *annotations { return &annotations{} })
	return a
}

// AddRead appends a read annotation to key
func (vt *VertexTable) AddRead(key uint64, read ReadAnnotation) {
	a := vt.entry(key)
	a.mu.Lock()
	a.reads = append(a.reads, read)
	a.mu.Unlock()
}

// GetReads returns a copy of the read annotations of key
func (vt *VertexTable) GetReads(key uint64) []ReadAnnotation {
	a, ok := vt.entries.Load(key)
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ReadAnnotation(nil), a.reads...)
}

// AddDirection appends a path position to key
func (vt *VertexTable) AddDirection(key uint64, direction Direction) {
	a := vt.entry(key)
	a.mu.Lock()
	a.directions = append(a.directions, direction)
	a.mu.Unlock()
}

// GetDirections returns a copy of the path positions of key
func (vt *VertexTable) GetDirections(key uint64) []Direction {
	a, ok := vt.entries.Load(key)
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Direction(nil), a.directions...)
}

// ClearDirections removes all path positions of key
func (vt *VertexTable) ClearDirections(key uint64) {
	a, ok := vt.entries.Load(key)
	if !ok {
		return
	}
	a.mu.Lock()
	a.directions = nil
	a.mu.Unlock()
}

// IsAssembled reports whether key or its complement has a path position
func (vt *VertexTable) IsAssembled(key uint64) bool {
	return vt.hasDirections(key) || vt.hasDirections(kmer.Complement(key, vt.wordSize))
}

func (vt *VertexTable) hasDirections(key uint64) bool {
	a, ok := vt.entries.Load(key)
	if !ok {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.directions) > 0
}

// Size returns the number of annotated keys
func (vt *VertexTable) Size() int {
	return vt.entries.Size()
}
