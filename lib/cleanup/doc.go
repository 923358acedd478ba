/*
Package cleanup contains the graph cleaning engines of dKG.

Both engines are state machines that make a small amount of progress per call
and never block. Whenever a step needs a vertex owned by another rank it asks its
fetcher, which sends a request and reports "not yet"; the step returns and is
retried on the next call.

TipRemover

A tip is a short dead end path caused by a sequencing error near the end of a
read. The remover visits every local vertex; a vertex with one neighbour on one
side, none on the other and coverage <= 3 is a candidate. Around it a search of
depth 2w+2 collects the neighbourhood. From the dead end the remover follows the
unique successors up to the first junction, i.e. a vertex with two or more
neighbours in the opposite direction of which one reaches further than w steps.
The walked path is marked for removal if

	len(path) <= w, depth of the other branch > w, A <= B

where A is the highest coverage on the path and B the lowest coverage on the
path from the junction to the deepest vertex of the other branch.

BubbleDetector

Checks seed paths that may be one arm of a bubble: both ends must lead at
least 128 vertices into the graph, the first vertex must have a unique parent
and grandparent. Finally the directions recorded at the grandparent are
fetched so the caller can resolve the bubble.

Pool

Drives any number of workers round robin and advances the messaging layer
after every round.
*/
package cleanup
