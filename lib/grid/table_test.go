package grid

import (
	"testing"

	"github.com/ValentinKolb/dKG/lib/kmer"
)

const testWordSize = 7

func newTestTable(bins int) *GridTable {
	t := NewGridTable(0, Options{NumberOfBins: bins, ArenaRegionSize: 4096, ArenaMaxRegions: 64})
	t.SetWordSize(testWordSize)
	return t
}

func encode(t *testing.T, word string) uint64 {
	t.Helper()
	key, err := kmer.Encode(word)
	if err != nil {
		t.Fatalf("Encode(%q) failed: %v", word, err)
	}
	return key
}

func TestInsertAndFindCanonical(t *testing.T) {
	table := newTestTable(64)
	key := encode(t, "TTTACGA")
	rc := kmer.Complement(key, testWordSize)

	v := table.Insert(key)
	if !table.Inserted() {
		t.Fatal("first insert should create the record")
	}
	if v.LowerKey != kmer.Canonical(key, testWordSize) {
		t.Errorf("record should be stored under the lower key")
	}

	if found := table.Find(key); found == nil || found.LowerKey != v.LowerKey {
		t.Error("Find(key) should return the inserted record")
	}
	if found := table.Find(rc); found == nil || found.LowerKey != v.LowerKey {
		t.Error("Find(complement) should return the same record")
	}

	if table.Find(encode(t, "AAAAAAC")) != nil {
		t.Error("Find should return nil for a missing key")
	}
}

func TestDuplicateInsertDoesNotGrow(t *testing.T) {
	table := newTestTable(64)
	key := encode(t, "GATTACA")

	first := table.Insert(key)
	first.SetCoverage(5)
	size := table.Size()

	second := table.Insert(kmer.Complement(key, testWordSize))
	if table.Inserted() {
		t.Error("inserting the complement of a stored key must not create a record")
	}
	if table.Size() != size {
		t.Errorf("size changed from %d to %d", size, table.Size())
	}
	if second.Coverage != 5 {
		t.Errorf("expected the existing record, got coverage %d", second.Coverage)
	}
}

func TestSizeAndBinCount(t *testing.T) {
	table := newTestTable(1)
	words := []string{"AAAAAAC", "AAAAAAG", "AAAAACA", "CCCCCCA", "ACGTACG", "GGGAAAC"}

	for _, word := range words {
		table.Insert(encode(t, word))
		if !table.Inserted() {
			t.Fatalf("%s should be new", word)
		}
	}

	if got := table.NumberOfElementsInBin(0); got != len(words) {
		t.Errorf("expected %d records in the single bin, got %d", len(words), got)
	}
	if got := table.Size(); got != uint64(2*len(words)) {
		t.Errorf("expected size %d, got %d", 2*len(words), got)
	}
	if table.NumberOfBins() != 1 {
		t.Errorf("expected 1 bin, got %d", table.NumberOfBins())
	}
}

func TestMoveToFront(t *testing.T) {
	table := newTestTable(1)
	keys := []uint64{encode(t, "AAAAAAC"), encode(t, "AAAAAAG"), encode(t, "AAAAACA")}
	for _, key := range keys {
		table.Insert(key)
	}

	// the last insert is in front
	if table.ElementInBin(0, 0).LowerKey != kmer.Canonical(keys[2], testWordSize) {
		t.Fatal("newly inserted record should be moved to the front")
	}

	table.Freeze()
	table.Find(keys[0])
	if table.ElementInBin(0, 0).LowerKey != kmer.Canonical(keys[2], testWordSize) {
		t.Error("a frozen table must not reorder on Find")
	}
	order := []uint64{table.ElementInBin(0, 0).LowerKey, table.ElementInBin(0, 1).LowerKey, table.ElementInBin(0, 2).LowerKey}

	table.Unfreeze()
	hit := table.Find(keys[0])
	if table.ElementInBin(0, 0) != hit || hit.LowerKey != kmer.Canonical(keys[0], testWordSize) {
		t.Error("an unfrozen table must move the hit to the front")
	}

	// the others keep their relative order behind the hit
	var rest []uint64
	for i := 1; i < 3; i++ {
		rest = append(rest, table.ElementInBin(0, i).LowerKey)
	}
	var expected []uint64
	for _, k := range order {
		if k != hit.LowerKey {
			expected = append(expected, k)
		}
	}
	for i := range expected {
		if rest[i] != expected[i] {
			t.Errorf("position %d: expected %d, got %d", i+1, expected[i], rest[i])
		}
	}
}

func TestInsertReleasesOldArrays(t *testing.T) {
	table := newTestTable(4)
	for i := uint64(0); i < 200; i++ {
		table.Insert(i)
	}
	stats := table.Allocator().Stats()
	if stats.Reused == 0 {
		t.Error("growing bins should reuse released arrays")
	}

	// at most the live records plus the released arrays of all sizes below them
	var live uint64
	for b := 0; b < table.NumberOfBins(); b++ {
		n := uint64(table.NumberOfElementsInBin(b))
		live += n * (n + 1) / 2
	}
	if stats.HighWater > live {
		t.Errorf("high water mark %d exceeds %d", stats.HighWater, live)
	}
}

func TestIterator(t *testing.T) {
	table := newTestTable(16)
	inserted := map[uint64]bool{}
	for i := uint64(0); i < 50; i++ {
		v := table.Insert(i * 7)
		inserted[v.LowerKey] = true
	}

	table.Freeze()
	defer table.Unfreeze()

	seen := map[uint64]bool{}
	it := NewIterator(table)
	for it.HasNext() {
		v := it.Next()
		if seen[v.LowerKey] {
			t.Errorf("record %d returned twice", v.LowerKey)
		}
		seen[v.LowerKey] = true
	}
	if len(seen) != len(inserted) {
		t.Errorf("expected %d records, iterated %d", len(inserted), len(seen))
	}
	if it.Next() != nil {
		t.Error("exhausted iterator should return nil")
	}

	if NewIterator(newTestTable(8)).HasNext() {
		t.Error("empty table should have nothing to iterate")
	}
}

func TestVertexEdges(t *testing.T) {
	table := newTestTable(8)
	w := testWordSize
	key := encode(t, "ACGTTGC")
	child := kmer.Child(key, 1, w)
	parent := kmer.Parent(key, 2, w)

	v := table.Insert(key)
	v.AddOutgoingEdge(key, child, w)
	v.AddIngoingEdge(key, parent, w)

	if p, c := v.Degree(key, w); p != 1 || c != 1 {
		t.Fatalf("expected degree (1, 1), got (%d, %d)", p, c)
	}
	if children := v.Children(key, w); len(children) != 1 || children[0] != child {
		t.Errorf("unexpected children %v", children)
	}

	// the complement sees the edges reversed
	rc := kmer.Complement(key, w)
	parents := v.Parents(rc, w)
	if len(parents) != 1 || parents[0] != kmer.Complement(child, w) {
		t.Errorf("complement should have the complemented child as parent, got %v", parents)
	}
	children := v.Children(rc, w)
	if len(children) != 1 || children[0] != kmer.Complement(parent, w) {
		t.Errorf("complement should have the complemented parent as child, got %v", children)
	}
}

func TestAddSequence(t *testing.T) {
	table := newTestTable(64)
	w := testWordSize
	seq := "ACGTTGCATGA"

	stored, err := table.AddSequence(seq, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stored != len(seq)-w+1 {
		t.Fatalf("expected %d k-mers, got %d", len(seq)-w+1, stored)
	}

	first := encode(t, seq[:w])
	second := encode(t, seq[1:w+1])
	last := encode(t, seq[len(seq)-w:])

	v := table.Find(first)
	if v == nil || v.Coverage != 2 {
		t.Fatal("first k-mer should be stored with coverage 2")
	}
	if p, c := v.Degree(first, w); p != 0 || c != 1 {
		t.Errorf("first k-mer should be a dead end with one child, got (%d, %d)", p, c)
	}
	if children := v.Children(first, w); len(children) != 1 || children[0] != second {
		t.Errorf("first k-mer should lead to the second")
	}

	lv := table.Find(last)
	if p, c := lv.Degree(last, w); p != 1 || c != 0 {
		t.Errorf("last k-mer should have one parent and no child, got (%d, %d)", p, c)
	}

	// ambiguous bases split the sequence
	other := newTestTable(64)
	stored, _ = other.AddSequence("ACGTTGCNATGACCA", 1, nil)
	if stored != 2 {
		t.Errorf("expected 2 k-mers around the N, got %d", stored)
	}

	// ownership filter
	filtered := newTestTable(64)
	stored, _ = filtered.AddSequence(seq, 1, func(key uint64) bool { return key == first })
	if stored != 1 || filtered.Size() != 2 {
		t.Errorf("expected only the owned k-mer, got %d stored", stored)
	}
	if _, err := filtered.AddSequence(seq, 0, nil); err == nil {
		t.Error("coverage 0 should be rejected")
	}
}

func TestInfo(t *testing.T) {
	table := newTestTable(8)
	if _, err := table.AddSequence("ACGTTGCATGACCATG", 3, nil); err != nil {
		t.Fatal(err)
	}
	info := table.Info()
	if info.Size != table.Size() || info.Bins != 8 {
		t.Errorf("unexpected info %+v", info)
	}
	if info.ArenaLimit != 4096*64 || info.Arena.HighWater > info.ArenaLimit {
		t.Errorf("arena limit %d, high water %d", info.ArenaLimit, info.Arena.HighWater)
	}
	if info.Occupancy.Mean*8 != float64(table.Size()/2) {
		t.Errorf("occupancy mean %f does not match %d records", info.Occupancy.Mean, table.Size()/2)
	}
	if info.String() == "" {
		t.Error("expected a rendering")
	}
}
