package grid

import (
	"fmt"
	"math"

	"github.com/ValentinKolb/dKG/lib/arena"
	"github.com/ValentinKolb/dKG/lib/kmer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("grid")

	insertedVertices = metrics.NewCounter("dkg_grid_vertices_inserted_total")
)

const (
	// DefaultNumberOfBins is the number of bins of a store (2^22)
	DefaultNumberOfBins = 4194304

	// maxBinSize is the largest number of records a single bin can hold
	maxBinSize = math.MaxUint16
)

// Options configures a GridTable
type Options struct {
	NumberOfBins int
	// ArenaRegionSize is the number of vertices per arena region
	ArenaRegionSize int
	// ArenaMaxRegions bounds the memory of the store, exceeding it is fatal
	ArenaMaxRegions int
}

// DefaultOptions returns the options used by a rank process
func DefaultOptions() Options {
	return Options{
		NumberOfBins:    DefaultNumberOfBins,
		ArenaRegionSize: arena.DefaultRegionSize,
		ArenaMaxRegions: arena.DefaultMaxRegions,
	}
}

// bin references the arena block holding its records
type bin struct {
	block arena.Block
	size  uint16
}

// GridTable is the local partition of the distributed vertex store.
//
// Every vertex is stored once under its canonical key. Each bin is a packed
// array in the arena. Lookups move the hit to the front of its bin unless the
// table is frozen, so frequently accessed vertices are found first.
//
// Not thread-safe: a table is owned by the goroutine running the rank loop.
// A *Vertex returned by Find or Insert stays valid until the next Find or
// Insert on an unfrozen table touches the same bin.
type GridTable struct {
	rank     int
	wordSize int

	bins      []bin
	size      uint64
	inserted  bool
	frozen    bool
	allocator *arena.Arena[Vertex]

	vertexTable *VertexTable
}

// NewGridTable creates an empty store for a rank
func NewGridTable(rank int, opts Options) *GridTable {
	if opts.NumberOfBins <= 0 {
		opts.NumberOfBins = DefaultNumberOfBins
	}
	t := &GridTable{
		rank:        rank,
		wordSize:    kmer.MaxWordSize,
		bins:        make([]bin, opts.NumberOfBins),
		allocator:   arena.New[Vertex](fmt.Sprintf("grid-%d", rank), opts.ArenaRegionSize, opts.ArenaMaxRegions),
		vertexTable: NewVertexTable(),
	}
	Logger.Debugf("rank %d: created grid table with %d bins", rank, opts.NumberOfBins)
	return t
}

// SetWordSize sets the k-mer length used for canonicalization
func (t *GridTable) SetWordSize(w int) {
	if w <= 0 || w > kmer.MaxWordSize {
		panic(fmt.Sprintf("invalid word size %d", w))
	}
	t.wordSize = w
	t.vertexTable.SetWordSize(w)
}

// WordSize returns the k-mer length
func (t *GridTable) WordSize() int {
	return t.wordSize
}

// Rank returns the rank owning this table
func (t *GridTable) Rank() int {
	return t.rank
}

// --------------------------------------------------------------------------
// Lookup and insertion
// --------------------------------------------------------------------------

// Find returns the record of key (either strand) or nil
func (t *GridTable) Find(key uint64) *Vertex {
	hash, lower := kmer.Hash(key, t.wordSize)
	binIndex := int(hash % uint64(len(t.bins)))
	b := &t.bins[binIndex]
	if b.size == 0 {
		return nil
	}

	records := t.allocator.Slice(b.block, int(b.size))
	for i := range records {
		if records[i].LowerKey == lower {
			return t.move(records, i)
		}
	}
	return nil
}

// Insert returns the record of key, creating it if missing. Inserted reports
// whether this call created it.
func (t *GridTable) Insert(key uint64) *Vertex {
	if v := t.Find(key); v != nil {
		t.inserted = false
		return v
	}

	hash, lower := kmer.Hash(key, t.wordSize)
	binIndex := int(hash % uint64(len(t.bins)))
	b := &t.bins[binIndex]

	oldSize := int(b.size)
	if oldSize == maxBinSize {
		Logger.Panicf("rank %d: bin %d is full (%d records)", t.rank, binIndex, oldSize)
		panic(fmt.Sprintf("bin %d is full", binIndex))
	}

	block := t.allocator.Allocate(oldSize + 1)
	records := t.allocator.Slice(block, oldSize+1)
	if oldSize > 0 {
		copy(records, t.allocator.Slice(b.block, oldSize))
		t.allocator.Release(b.block, oldSize)
	}
	records[oldSize] = Vertex{LowerKey: lower}

	b.block = block
	b.size = uint16(oldSize + 1)

	t.inserted = true
	// every record stands for both strands
	t.size += 2
	insertedVertices.Inc()

	return t.move(records, oldSize)
}

// Inserted reports whether the last Insert created a new record
func (t *GridTable) Inserted() bool {
	return t.inserted
}

// move brings records[i] to the front of its bin unless the table is frozen
func (t *GridTable) move(records []Vertex, i int) *Vertex {
	if t.frozen || i == 0 {
		return &records[i]
	}
	hit := records[i]
	copy(records[1:i+1], records[:i])
	records[0] = hit
	return &records[0]
}

// --------------------------------------------------------------------------
// Freezing
// --------------------------------------------------------------------------

// Freeze disables move-to-front so records keep their positions during iteration
func (t *GridTable) Freeze() {
	t.frozen = true
}

// Unfreeze enables move-to-front again
func (t *GridTable) Unfreeze() {
	t.frozen = false
}

// Frozen reports whether the table is frozen
func (t *GridTable) Frozen() bool {
	return t.frozen
}

// --------------------------------------------------------------------------
// Raw access
// --------------------------------------------------------------------------

// Size returns the number of stored k-mers, counting both strands of every record
func (t *GridTable) Size() uint64 {
	return t.size
}

// NumberOfBins returns the fixed number of bins
func (t *GridTable) NumberOfBins() int {
	return len(t.bins)
}

// NumberOfElementsInBin returns the number of records in a bin
func (t *GridTable) NumberOfElementsInBin(bin int) int {
	if assertionsEnabled && (bin < 0 || bin >= len(t.bins)) {
		panic(fmt.Sprintf("bin %d out of range [0, %d)", bin, len(t.bins)))
	}
	return int(t.bins[bin].size)
}

// ElementInBin returns the record at a position of a bin
func (t *GridTable) ElementInBin(bin, element int) *Vertex {
	if assertionsEnabled {
		if bin < 0 || bin >= len(t.bins) {
			panic(fmt.Sprintf("bin %d out of range [0, %d)", bin, len(t.bins)))
		}
		if element < 0 || element >= int(t.bins[bin].size) {
			panic(fmt.Sprintf("element %d out of range [0, %d) in bin %d", element, t.bins[bin].size, bin))
		}
	}
	b := t.bins[bin]
	return &t.allocator.Slice(b.block, int(b.size))[element]
}

// Allocator exposes the arena backing the bins
func (t *GridTable) Allocator() *arena.Arena[Vertex] {
	return t.allocator
}

// --------------------------------------------------------------------------
// Vertex annotations
// --------------------------------------------------------------------------

// VertexTable returns the table holding reads and directions of vertices
func (t *GridTable) VertexTable() *VertexTable {
	return t.vertexTable
}

// AddRead annotates key with a read position
func (t *GridTable) AddRead(key uint64, read ReadAnnotation) {
	t.vertexTable.AddRead(key, read)
}

// GetReads returns the read annotations of key
func (t *GridTable) GetReads(key uint64) []ReadAnnotation {
	return t.vertexTable.GetReads(key)
}

// AddDirection records that key was assembled into a path
func (t *GridTable) AddDirection(key uint64, direction Direction) {
	t.vertexTable.AddDirection(key, direction)
}

// GetDirections returns the path positions of key
func (t *GridTable) GetDirections(key uint64) []Direction {
	return t.vertexTable.GetDirections(key)
}

// ClearDirections forgets all path positions of key
func (t *GridTable) ClearDirections(key uint64) {
	t.vertexTable.ClearDirections(key)
}

// IsAssembled reports whether key or its reverse complement is part of a path
func (t *GridTable) IsAssembled(key uint64) bool {
	return t.vertexTable.IsAssembled(key)
}
