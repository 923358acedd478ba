package cleanup

import (
	"context"
	"testing"

	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/fetch"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/kmer"
)

const (
	tipWordSize = 7
	// 24 k-mers, TACATAA (positions 12-18) is the junction
	mainSequence = "GCTAAAGACAATTACATAACATACACGTCA"
	// branches into the main sequence at TACATAA with three own k-mers
	tipSequence = "GCATACATAA"
)

type tipCluster struct {
	router   comm.Router
	tables   []*grid.GridTable
	loopback *comm.Loopback
}

func newTipCluster(t *testing.T, ranks, mainCoverage, tipCoverage int) *tipCluster {
	t.Helper()
	c := &tipCluster{router: comm.Router{Ranks: ranks, WordSize: tipWordSize}}
	handlers := map[comm.Rank]comm.Handler{}
	for r := 0; r < ranks; r++ {
		table := grid.NewGridTable(r, grid.Options{NumberOfBins: 64, ArenaRegionSize: 1024, ArenaMaxRegions: 8})
		table.SetWordSize(tipWordSize)
		owns := c.router.Owns(comm.Rank(r))
		if _, err := table.AddSequence(mainSequence, mainCoverage, owns); err != nil {
			t.Fatal(err)
		}
		if _, err := table.AddSequence(tipSequence, tipCoverage, owns); err != nil {
			t.Fatal(err)
		}
		c.tables = append(c.tables, table)
		handlers[comm.Rank(r)] = fetch.NewResponder(table)
	}
	c.loopback = comm.NewLoopback(handlers)
	return c
}

// run performs one full pass on every rank and returns the canonical keys marked for removal
func (c *tipCluster) run(t *testing.T) map[uint64]struct{} {
	t.Helper()
	var removers []*TipRemover
	pool := NewPool()
	for r, table := range c.tables {
		id := comm.WorkerID(r + 1)
		f := fetch.NewAttributeFetcher(id, comm.Rank(r), c.router, table, c.loopback)
		opts := DefaultTipOptions()
		opts.ID = id
		remover := NewTipRemover(table, f, opts)
		removers = append(removers, remover)
		pool.Add(remover)
	}

	if err := pool.Run(context.Background(), func() { c.loopback.Advance() }); err != nil {
		t.Fatal(err)
	}

	marked := map[uint64]struct{}{}
	for r, remover := range removers {
		if c.tables[r].Frozen() {
			t.Errorf("rank %d: table still frozen after the pass", r)
		}
		if remover.NumberOfRemovedVertices() != len(remover.VerticesToRemove()) {
			t.Errorf("rank %d: counter and removal list disagree", r)
		}
		for _, key := range remover.VerticesToRemove() {
			marked[kmer.Canonical(key, tipWordSize)] = struct{}{}
		}
	}
	return marked
}

func canonicalWords(t *testing.T, words ...string) map[uint64]struct{} {
	t.Helper()
	out := map[uint64]struct{}{}
	for _, word := range words {
		key, err := kmer.Encode(word)
		if err != nil {
			t.Fatal(err)
		}
		out[kmer.Canonical(key, tipWordSize)] = struct{}{}
	}
	return out
}

func TestTipRemoverMarksTip(t *testing.T) {
	for _, ranks := range []int{1, 2} {
		c := newTipCluster(t, ranks, 5, 2)
		marked := c.run(t)

		expected := canonicalWords(t, "GCATACA", "CATACAT", "ATACATA")
		if len(marked) != len(expected) {
			t.Fatalf("%d ranks: expected %d marked vertices, got %d", ranks, len(expected), len(marked))
		}
		for key := range expected {
			if _, ok := marked[key]; !ok {
				t.Errorf("%d ranks: tip vertex %s not marked", ranks, kmer.Decode(key, tipWordSize))
			}
		}
	}
}

func TestTipRemoverKeepsWellCoveredTip(t *testing.T) {
	// the other branch is weaker than the tip
	c := newTipCluster(t, 1, 1, 2)
	if marked := c.run(t); len(marked) != 0 {
		t.Errorf("expected no marked vertices, got %d", len(marked))
	}
}

func TestTipRemoverIgnoresHighCoverage(t *testing.T) {
	c := newTipCluster(t, 1, 9, 4)
	if marked := c.run(t); len(marked) != 0 {
		t.Errorf("dead ends above the coverage limit are no candidates, got %d marked", len(marked))
	}
}

func TestTipRemoverFreezesTable(t *testing.T) {
	c := newTipCluster(t, 1, 5, 2)
	table := c.tables[0]
	f := fetch.NewAttributeFetcher(1, 0, c.router, table, c.loopback)
	r := NewTipRemover(table, f, DefaultTipOptions())

	if r.Reduce() {
		t.Fatal("the first step only initializes the pass")
	}
	if !table.Frozen() {
		t.Error("table must be frozen during a pass")
	}
	steps := 1
	for !r.Reduce() {
		steps++
		if steps > 100000 {
			t.Fatal("pass did not finish")
		}
	}
	if table.Frozen() {
		t.Error("table must be unfrozen after the pass")
	}

	first := append([]uint64(nil), r.VerticesToRemove()...)
	if len(first) != 3 {
		t.Fatalf("expected 3 marked vertices, got %d", len(first))
	}

	// nothing was deleted, a second pass finds the same tip and appends it
	for !r.Reduce() {
	}
	if r.NumberOfRemovedVertices() != 6 || len(r.VerticesToRemove()) != 6 {
		t.Errorf("expected 6 entries after the second pass, got %d", r.NumberOfRemovedVertices())
	}
	for i, key := range first {
		if r.VerticesToRemove()[i] != key {
			t.Errorf("entry %d of the first pass was replaced", i)
		}
	}
}
