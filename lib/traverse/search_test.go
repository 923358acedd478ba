package traverse

import (
	"testing"

	"github.com/ValentinKolb/dKG/lib/fetch"
)

// graphFetcher serves attributes from an in-memory graph. Every vertex is
// pending for delay calls before it becomes available.
type graphFetcher struct {
	coverage map[uint64]int
	parents  map[uint64][]uint64
	children map[uint64][]uint64
	delay    int

	calls   int
	fetches int
	current fetch.Attributes
}

func newGraphFetcher(delay int) *graphFetcher {
	return &graphFetcher{
		coverage: map[uint64]int{},
		parents:  map[uint64][]uint64{},
		children: map[uint64][]uint64{},
		delay:    delay,
	}
}

func (g *graphFetcher) addEdge(parent, child uint64) {
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
	for _, v := range []uint64{parent, child} {
		if _, ok := g.coverage[v]; !ok {
			g.coverage[v] = 1
		}
	}
}

func (g *graphFetcher) Fetch(key uint64) bool {
	if g.calls < g.delay {
		g.calls++
		return false
	}
	g.fetches++
	g.current = fetch.Attributes{
		Key:      key,
		Found:    true,
		Coverage: g.coverage[key],
		Parents:  g.parents[key],
		Children: g.children[key],
	}
	return true
}

func (g *graphFetcher) Attributes() fetch.Attributes { return g.current }

func (g *graphFetcher) Reset() { g.calls = 0 }

// pathGraph builds 0 -> 1 -> ... -> length
func pathGraph(length int, delay int) *graphFetcher {
	g := newGraphFetcher(delay)
	for i := 0; i < length; i++ {
		g.addEdge(uint64(i), uint64(i+1))
	}
	return g
}

func run(t *testing.T, s *Search, limit int) int {
	t.Helper()
	steps := 0
	for !s.Step() {
		steps++
		if steps > limit {
			t.Fatalf("search did not finish within %d steps", limit)
		}
	}
	return steps
}

func TestPathGraphDepth(t *testing.T) {
	const length = 6
	g := pathGraph(length, 0)
	s := NewSearch(g, 128)

	s.Start(0, Children)
	if s.State() != NotStarted {
		t.Fatalf("expected NOT_STARTED, got %s", s.State())
	}
	run(t, s, 1000)

	if s.State() != Finished {
		t.Errorf("expected FINISHED, got %s", s.State())
	}
	if s.ActualMaximumDepth() != length {
		t.Errorf("expected maximum depth %d, got %d", length, s.ActualMaximumDepth())
	}
	if s.VisitedVertices() != length+1 {
		t.Errorf("expected %d visited vertices, got %d", length+1, s.VisitedVertices())
	}
	if len(s.Edges()) != length {
		t.Errorf("expected %d edges, got %d", length, len(s.Edges()))
	}
	for _, e := range s.Edges() {
		if e.Child != e.Parent+1 {
			t.Errorf("unexpected edge %+v", e)
		}
	}
}

func TestDepthBound(t *testing.T) {
	g := pathGraph(50, 0)
	s := NewSearch(g, 10)
	s.Start(0, Children)
	run(t, s, 1000)

	if s.ActualMaximumDepth() != 10 {
		t.Errorf("expected the depth to stop at the bound 10, got %d", s.ActualMaximumDepth())
	}
	// depths 0..9 are expanded, the vertex at depth 10 is dropped
	if s.VisitedVertices() != 10 || len(s.Coverages()) != 10 {
		t.Errorf("expected 10 expanded vertices, got %d", s.VisitedVertices())
	}
	if g.fetches != 10 {
		t.Errorf("dropped vertices must not be fetched, got %d fetches", g.fetches)
	}
}

func TestPendingFetchIsNoop(t *testing.T) {
	const length = 4
	immediate := pathGraph(length, 0)
	delayed := pathGraph(length, 3)

	s1 := NewSearch(immediate, 128)
	s1.Start(0, Children)
	fast := run(t, s1, 1000)

	s2 := NewSearch(delayed, 128)
	s2.Start(0, Children)
	slow := run(t, s2, 1000)

	if slow != fast+3*(length+1) {
		t.Errorf("expected %d extra no-op steps, got %d", 3*(length+1), slow-fast)
	}
	if s2.ActualMaximumDepth() != s1.ActualMaximumDepth() || s2.VisitedVertices() != s1.VisitedVertices() {
		t.Error("pending fetches must not change the result")
	}
	if delayed.fetches != length+1 {
		t.Errorf("every vertex should be fetched once, got %d", delayed.fetches)
	}
}

func TestBothDirectionsWithCycle(t *testing.T) {
	g := newGraphFetcher(0)
	// 1 -> 2 -> 3 -> 1 and 0 -> 2, 3 -> 4
	g.addEdge(1, 2)
	g.addEdge(2, 3)
	g.addEdge(3, 1)
	g.addEdge(0, 2)
	g.addEdge(3, 4)
	g.coverage[4] = 9

	s := NewSearch(g, 128)
	s.Start(2, Both)
	run(t, s, 1000)

	if s.VisitedVertices() != 5 {
		t.Errorf("expected all 5 vertices, got %d", s.VisitedVertices())
	}
	if len(s.Edges()) != 5 {
		t.Errorf("expected 5 distinct edges, got %d: %v", len(s.Edges()), s.Edges())
	}
	if s.Coverages()[4] != 9 {
		t.Errorf("expected coverage 9 for vertex 4, got %d", s.Coverages()[4])
	}
}

func TestParentsDirection(t *testing.T) {
	g := pathGraph(5, 0)
	s := NewSearch(g, 128)
	s.Start(5, Parents)
	run(t, s, 1000)

	if s.ActualMaximumDepth() != 5 {
		t.Errorf("expected depth 5 walking parents, got %d", s.ActualMaximumDepth())
	}

	// a search can be restarted
	s.Start(5, Children)
	run(t, s, 1000)
	if s.ActualMaximumDepth() != 0 || s.VisitedVertices() != 1 {
		t.Errorf("the last vertex has no children, got depth %d", s.ActualMaximumDepth())
	}
}

func TestUnstartedSearchIsFinished(t *testing.T) {
	s := NewSearch(newGraphFetcher(0), 10)
	if !s.Step() {
		t.Error("a search that was never started is finished")
	}
}
