/*
Package grid implements the vertex store of one rank: a hash table with a fixed
number of bins, each bin a packed array of Vertex records allocated from an arena.

Lookups canonicalize the key (both strands of a k-mer share one record), hash it
to a bin and scan the bin linearly. A hit is moved to the front of its bin, so
repeated lookups of hot vertices stay cheap. Freezing the table disables the
reordering, which is required while an Iterator walks the bins.

Inserting into a bin allocates a new array one record larger, copies the old
records and releases the old array to the arena, where it serves the next
allocation of the same size. Size counts k-mers, i.e. two per record.

Read and path annotations live next to the table in a VertexTable.

Bounds checks of the raw accessors (NumberOfElementsInBin, ElementInBin) are
compiled in with the "debug" build tag:

	go test -tags debug ./lib/grid/...
*/
package grid
