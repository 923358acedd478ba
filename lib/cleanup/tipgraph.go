package cleanup

import (
	"github.com/ValentinKolb/dKG/lib/traverse"
)

// tipGraph is the neighbourhood of a tip candidate as discovered by a search.
// Only edges between expanded vertices are kept, vertices cut off by the
// depth bound have no coverage.
type tipGraph struct {
	parents   map[uint64][]uint64
	children  map[uint64][]uint64
	coverages map[uint64]int
}

func newTipGraph(edges []traverse.Edge, coverages map[uint64]int) *tipGraph {
	g := &tipGraph{
		parents:   make(map[uint64][]uint64),
		children:  make(map[uint64][]uint64),
		coverages: coverages,
	}
	for _, e := range edges {
		if _, ok := coverages[e.Parent]; !ok {
			continue
		}
		if _, ok := coverages[e.Child]; !ok {
			continue
		}
		g.children[e.Parent] = append(g.children[e.Parent], e.Child)
		g.parents[e.Child] = append(g.parents[e.Child], e.Parent)
	}
	return g
}

// tipVerdict is the outcome of evaluating one candidate
type tipVerdict struct {
	Path           []uint64 // dead end first
	Junction       uint64
	FoundJunction  bool
	MaxCoverage    int // A, highest coverage on Path
	AltMinCoverage int // B, lowest coverage on the best alternate path
	AltDepth       int // depth of the deepest vertex behind the junction
	AltPath        []uint64
	Remove         bool
}

// evaluate walks from the dead end root (towards its children if
// walkChildren) to the first junction and compares the walked path with the
// best alternate branch behind the junction.
func (g *tipGraph) evaluate(root uint64, walkChildren bool, wordSize, junctionDepth int) tipVerdict {
	next, other := g.parents, g.children
	if walkChildren {
		next, other = g.children, g.parents
	}

	var v tipVerdict
	visited := make(map[uint64]struct{})
	current := root
	for {
		if _, ok := visited[current]; ok {
			return v
		}
		if g.isJunction(current, other, junctionDepth) {
			v.Junction = current
			v.FoundJunction = true
			break
		}
		visited[current] = struct{}{}

		successors := next[current]
		if len(successors) != 1 {
			return v
		}
		v.Path = append(v.Path, current)
		if c := g.coverages[current]; c > v.MaxCoverage {
			v.MaxCoverage = c
		}
		current = successors[0]
	}

	deepest, depth := g.deepest(v.Junction, other, visited)
	v.AltDepth = depth
	v.AltPath = g.computePath(v.Junction, deepest, other, make(map[uint64]struct{}))

	v.AltMinCoverage = -1
	for _, vertex := range v.AltPath {
		if c := g.coverages[vertex]; v.AltMinCoverage < 0 || c < v.AltMinCoverage {
			v.AltMinCoverage = c
		}
	}

	v.Remove = len(v.Path) <= wordSize &&
		v.AltDepth > wordSize &&
		v.MaxCoverage <= v.AltMinCoverage
	return v
}

// isJunction reports whether vertex has at least two neighbours in edges and
// one of them reaches more than depthBound steps further
func (g *tipGraph) isJunction(vertex uint64, edges map[uint64][]uint64, depthBound int) bool {
	neighbours := edges[vertex]
	if len(neighbours) < 2 {
		return false
	}

	type frame struct {
		vertex uint64
		depth  int
	}
	for _, start := range neighbours {
		visited := make(map[uint64]struct{})
		stack := []frame{{vertex: start, depth: 1}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := visited[top.vertex]; ok {
				continue
			}
			visited[top.vertex] = struct{}{}

			if top.depth > depthBound {
				return true
			}
			for _, n := range edges[top.vertex] {
				stack = append(stack, frame{vertex: n, depth: top.depth + 1})
			}
		}
	}
	return false
}

// deepest runs a breadth first search from start and returns the vertex with
// the largest depth, preferring higher coverage between vertices of equal depth.
// Vertices in exclude are not entered.
func (g *tipGraph) deepest(start uint64, edges map[uint64][]uint64, exclude map[uint64]struct{}) (uint64, int) {
	seen := make(map[uint64]struct{}, len(exclude)+1)
	for v := range exclude {
		seen[v] = struct{}{}
	}
	seen[start] = struct{}{}

	best, bestDepth, bestCoverage := start, 0, g.coverages[start]
	queue := []uint64{start}
	depths := []int{0}
	for len(queue) > 0 {
		vertex, depth := queue[0], depths[0]
		queue, depths = queue[1:], depths[1:]

		coverage := g.coverages[vertex]
		if depth > bestDepth || (depth == bestDepth && coverage > bestCoverage) {
			best, bestDepth, bestCoverage = vertex, depth, coverage
		}

		for _, n := range edges[vertex] {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
			depths = append(depths, depth+1)
		}
	}
	return best, bestDepth
}

// computePath returns the first path found from start to end, nil if there is none
func (g *tipGraph) computePath(start, end uint64, edges map[uint64][]uint64, visited map[uint64]struct{}) []uint64 {
	if _, ok := visited[start]; ok {
		return nil
	}
	visited[start] = struct{}{}
	if start == end {
		return []uint64{start}
	}
	for _, n := range edges[start] {
		if rest := g.computePath(n, end, edges, visited); rest != nil {
			return append([]uint64{start}, rest...)
		}
	}
	return nil
}
