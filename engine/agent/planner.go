package agent

import (
	"container/heap"

	engine "github.com/JDasic01/AgentTournament/engine"
)

// Plan runs A* over g from start to goal. An edge costs the step cost of its
// destination tile and cells whose cost reaches engine.BlockedStepCost are
// never entered. The heuristic is the Euclidean distance to goal.
//
// The result runs from start to goal inclusive; it is [start] when the two
// are equal and nil when goal cannot be reached.
func Plan(g *engine.Grid, start, goal engine.Cell) []engine.Cell {
	if !g.InBounds(start) || !g.InBounds(goal) {
		return nil
	}
	if start == goal {
		return []engine.Cell{start}
	}
	if engine.Blocked(g.At(goal)) {
		return nil
	}

	gScore := map[engine.Cell]float64{start: 0}
	cameFrom := make(map[engine.Cell]engine.Cell)
	closed := make(map[engine.Cell]bool)

	open := &openSet{}
	open.push(start, start.Euclidean(goal))

	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem).cell
		if closed[cur] {
			continue // stale entry superseded by a cheaper push
		}
		if cur == goal {
			return reconstruct(cameFrom, start, goal)
		}
		closed[cur] = true

		for _, next := range g.Neighbors(cur) {
			if closed[next] {
				continue
			}
			cost := engine.StepCost(g.At(next))
			if cost >= engine.BlockedStepCost {
				continue
			}
			tentative := gScore[cur] + cost
			if old, ok := gScore[next]; ok && tentative >= old {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur
			open.push(next, tentative+next.Euclidean(goal))
		}
	}
	return nil
}

// PathCost sums the step costs of every edge along path.
func PathCost(g *engine.Grid, path []engine.Cell) float64 {
	total := 0.0
	for _, c := range path[min(1, len(path)):] {
		total += engine.StepCost(g.At(c))
	}
	return total
}

func reconstruct(cameFrom map[engine.Cell]engine.Cell, start, goal engine.Cell) []engine.Cell {
	path := []engine.Cell{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openItem is one entry of the A* frontier. seq records insertion order so
// equal priorities pop first-in first-out.
type openItem struct {
	cell     engine.Cell
	priority float64
	seq      uint64
}

type openSet struct {
	items []*openItem
	next  uint64
}

func (q *openSet) Len() int { return len(q.items) }

func (q *openSet) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q *openSet) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *openSet) Push(x any) { q.items = append(q.items, x.(*openItem)) }

func (q *openSet) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

func (q *openSet) push(c engine.Cell, priority float64) {
	heap.Push(q, &openItem{cell: c, priority: priority, seq: q.next})
	q.next++
}
