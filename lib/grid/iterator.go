package grid

// Iterator walks all records of a table bin by bin. The table should be
// frozen while iterating, otherwise lookups reorder the bins underneath.
type Iterator struct {
	table   *GridTable
	bin     int
	element int
}

// NewIterator creates an iterator positioned before the first record
func NewIterator(t *GridTable) *Iterator {
	it := &Iterator{table: t}
	it.skipEmpty()
	return it
}

// HasNext reports whether Next returns another record
func (it *Iterator) HasNext() bool {
	return it.bin < len(it.table.bins)
}

// Next returns the next record, or nil when the iterator is exhausted
func (it *Iterator) Next() *Vertex {
	if !it.HasNext() {
		return nil
	}
	v := it.table.ElementInBin(it.bin, it.element)
	it.element++
	it.skipEmpty()
	return v
}

func (it *Iterator) skipEmpty() {
	for it.bin < len(it.table.bins) && it.element >= int(it.table.bins[it.bin].size) {
		it.bin++
		it.element = 0
	}
}
