// Package traverse implements a depth-bounded depth first search that advances
// one vertex per step and never blocks on remote vertices.
//
// A Search is driven by repeated calls to Step. A step whose vertex is not
// available yet returns without progress; the vertex stays on the stack and
// the next step asks the fetcher again.
package traverse

import (
	"github.com/ValentinKolb/dKG/lib/fetch"
)

// Direction selects which neighbours are explored
type Direction int

const (
	Parents Direction = iota
	Children
	Both
)

// State of a search
type State int

const (
	NotStarted State = iota
	Exploring
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Exploring:
		return "EXPLORING"
	case Finished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

// Edge is a directed edge Parent -> Child seen during a search
type Edge struct {
	Parent uint64
	Child  uint64
}

type frame struct {
	vertex uint64
	depth  int
}

// Search is a resumable depth first search
type Search struct {
	fetcher  fetch.VertexFetcher
	maxDepth int

	state     State
	start     uint64
	direction Direction

	stack     []frame
	visited   map[uint64]struct{}
	coverages map[uint64]int
	edges     []Edge
	seenEdges map[Edge]struct{}

	actualMaximumDepth int
}

// NewSearch creates a search that drops vertices at maxDepth unexpanded
func NewSearch(fetcher fetch.VertexFetcher, maxDepth int) *Search {
	return &Search{
		fetcher:  fetcher,
		maxDepth: maxDepth,
		state:    Finished,
	}
}

// Start schedules a new search from vertex. The first Step seeds the stack.
func (s *Search) Start(vertex uint64, direction Direction) {
	s.start = vertex
	s.direction = direction
	s.state = NotStarted
}

// Step advances the search by at most one vertex. Returns true once finished.
func (s *Search) Step() bool {
	switch s.state {
	case NotStarted:
		s.stack = append(s.stack[:0], frame{vertex: s.start})
		s.visited = make(map[uint64]struct{})
		s.coverages = make(map[uint64]int)
		s.edges = nil
		s.seenEdges = make(map[Edge]struct{})
		s.actualMaximumDepth = 0
		s.fetcher.Reset()
		s.state = Exploring
		return false

	case Exploring:
		if len(s.stack) == 0 {
			s.state = Finished
			return true
		}

		top := s.stack[len(s.stack)-1]
		if top.depth > s.actualMaximumDepth {
			s.actualMaximumDepth = top.depth
		}

		if top.depth >= s.maxDepth {
			s.stack = s.stack[:len(s.stack)-1]
			return false
		}
		if _, ok := s.visited[top.vertex]; ok {
			s.stack = s.stack[:len(s.stack)-1]
			return false
		}

		if !s.fetcher.Fetch(top.vertex) {
			return false
		}
		attrs := s.fetcher.Attributes()
		s.fetcher.Reset()

		s.stack = s.stack[:len(s.stack)-1]
		s.visited[top.vertex] = struct{}{}
		s.coverages[top.vertex] = attrs.Coverage

		if s.direction == Parents || s.direction == Both {
			for _, parent := range attrs.Parents {
				s.addEdge(Edge{Parent: parent, Child: top.vertex})
				s.push(parent, top.depth+1)
			}
		}
		if s.direction == Children || s.direction == Both {
			for _, child := range attrs.Children {
				s.addEdge(Edge{Parent: top.vertex, Child: child})
				s.push(child, top.depth+1)
			}
		}
		return false
	}

	return true
}

func (s *Search) push(vertex uint64, depth int) {
	if _, ok := s.visited[vertex]; ok {
		return
	}
	s.stack = append(s.stack, frame{vertex: vertex, depth: depth})
}

func (s *Search) addEdge(e Edge) {
	if _, ok := s.seenEdges[e]; ok {
		return
	}
	s.seenEdges[e] = struct{}{}
	s.edges = append(s.edges, e)
}

// State returns the current state
func (s *Search) State() State {
	return s.state
}

// ActualMaximumDepth is the largest depth reached, dropped vertices included
func (s *Search) ActualMaximumDepth() int {
	return s.actualMaximumDepth
}

// Coverages returns the coverage of every expanded vertex
func (s *Search) Coverages() map[uint64]int {
	return s.coverages
}

// Edges returns the edges discovered from expanded vertices, without duplicates
func (s *Search) Edges() []Edge {
	return s.edges
}

// VisitedVertices returns the number of expanded vertices
func (s *Search) VisitedVertices() int {
	return len(s.visited)
}
