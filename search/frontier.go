package search

import (
	"container/heap"

	"github.com/brensch/vacuum/game"
)

type frontierItem struct {
	state *game.State
	f     int
	seq   uint64
}

// frontier is a min-heap on f. Equal f values pop in insertion order.
type frontier struct {
	items []frontierItem
	seq   uint64
}

func (q *frontier) Len() int { return len(q.items) }

func (q *frontier) Less(i, j int) bool {
	if q.items[i].f != q.items[j].f {
		return q.items[i].f < q.items[j].f
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *frontier) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *frontier) Push(x any) { q.items = append(q.items, x.(frontierItem)) }

func (q *frontier) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = frontierItem{}
	q.items = old[:n-1]
	return item
}

func (q *frontier) push(s *game.State, f int) {
	q.seq++
	heap.Push(q, frontierItem{state: s, f: f, seq: q.seq})
}

func (q *frontier) pop() frontierItem {
	return heap.Pop(q).(frontierItem)
}
