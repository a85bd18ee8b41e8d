package engine

import "container/heap"

// pathNode is one open-set entry of the A* search.
type pathNode struct {
	idx int // row-major cell index
	g   int // steps from start
	h   int // Manhattan distance to goal
	seq int // insertion order, for deterministic tie-breaks
}

// openSet is a min-heap on f = g + h, then h, then insertion order.
type openSet []pathNode

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	fi, fj := o[i].g+o[i].h, o[j].g+o[j].h
	if fi != fj {
		return fi < fj
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(pathNode)) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// FindPath returns the shortest 4-connected water route from start to goal,
// excluding start and including goal. When respectVisited is set, cells the
// agent already travelled are impassable (start itself is always allowed).
//
// An empty result means "no route": start == goal, goal off-grid or on land,
// or the open set was exhausted. Callers fall back to local movement.
func FindPath(g *Grid, start, goal Position, respectVisited bool) []Position {
	if start == goal || !g.InBounds(start.X, start.Y) || !g.CanEnter(goal, respectVisited) {
		return nil
	}

	n := g.Width * g.Height
	startIdx := start.Y*g.Width + start.X
	goalIdx := goal.Y*g.Width + goal.X

	best := make([]int, n)
	for i := range best {
		best[i] = -1
	}
	parent := make([]int, n)
	closed := make([]bool, n)

	open := &openSet{}
	seq := 0
	heap.Push(open, pathNode{idx: startIdx, g: 0, h: start.Distance(goal), seq: seq})
	best[startIdx] = 0
	parent[startIdx] = -1

	for open.Len() > 0 {
		cur := heap.Pop(open).(pathNode)
		if closed[cur.idx] {
			continue
		}
		closed[cur.idx] = true
		if cur.idx == goalIdx {
			return rebuildPath(g, parent, goalIdx)
		}

		p := Position{X: cur.idx % g.Width, Y: cur.idx / g.Width}
		for _, next := range g.WalkableNeighbors(p, respectVisited) {
			ni := next.Y*g.Width + next.X
			if closed[ni] {
				continue
			}
			ng := cur.g + 1
			if best[ni] != -1 && ng >= best[ni] {
				continue
			}
			best[ni] = ng
			parent[ni] = cur.idx
			seq++
			heap.Push(open, pathNode{idx: ni, g: ng, h: next.Distance(goal), seq: seq})
		}
	}
	return nil
}

// PathLength returns the number of steps of the shortest route, 0 when
// start == goal and -1 when unreachable.
func PathLength(g *Grid, start, goal Position, respectVisited bool) int {
	if start == goal {
		return 0
	}
	path := FindPath(g, start, goal, respectVisited)
	if len(path) == 0 {
		return -1
	}
	return len(path)
}

func rebuildPath(g *Grid, parent []int, goalIdx int) []Position {
	var rev []Position
	for i := goalIdx; parent[i] != -1; i = parent[i] {
		rev = append(rev, Position{X: i % g.Width, Y: i / g.Width})
	}
	out := make([]Position, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}
