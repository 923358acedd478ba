package grid

import (
	"fmt"

	"github.com/ValentinKolb/dKG/lib/kmer"
)

// AddSequence threads a DNA sequence into the table: every k-mer gets
// coverage added and is linked to its neighbours on the sequence. Only k-mers
// for which owns returns true are touched (nil owns everything), so every
// rank can thread the same sequence into its own partition.
//
// Characters other than ACGT break the sequence, no k-mer spans them.
// Returns the number of k-mers stored.
func (t *GridTable) AddSequence(seq string, coverage int, owns func(key uint64) bool) (int, error) {
	if coverage <= 0 {
		return 0, fmt.Errorf("invalid coverage %d", coverage)
	}
	w := t.wordSize
	mask := kmer.Mask(w)

	var (
		key     uint64
		valid   int // number of consecutive valid bases ending at the current position
		prev    uint64
		hasPrev bool
		stored  int
	)

	for i := 0; i < len(seq); i++ {
		code, ok := kmer.BaseCode(seq[i])
		if !ok {
			valid, hasPrev = 0, false
			continue
		}
		key = ((key << 2) | code) & mask
		valid++
		if valid < w {
			continue
		}

		if owns == nil || owns(key) {
			v := t.Insert(key)
			v.SetCoverage(int(v.Coverage) + coverage)
			if hasPrev {
				v.AddIngoingEdge(key, prev, w)
			}
			if i+1 < len(seq) {
				if next, ok := kmer.BaseCode(seq[i+1]); ok {
					v.AddOutgoingEdge(key, kmer.Child(key, next, w), w)
				}
			}
			stored++
		}
		prev, hasPrev = key, true
	}
	return stored, nil
}
