package routing

import "fmt"

// IndexedPriorityQueue is a binary min-heap over node indices in
// [0, capacity), ordered by a key slice it reads but does not own. Lowering
// keys[i] for a queued i must be followed by ChangePriority(i).
//
// Heap slots are 1-based; slot 0 is unused.
type IndexedPriorityQueue struct {
	keys    []float64
	heap    []int // heap slot -> node index
	invHeap []int // node index -> heap slot
	size    int
}

// NewIndexedPriorityQueue creates an empty queue keyed by keys. capacity is
// the number of distinct node indices the queue can hold.
func NewIndexedPriorityQueue(keys []float64, capacity int) *IndexedPriorityQueue {
	return &IndexedPriorityQueue{
		keys:    keys,
		heap:    make([]int, capacity+1),
		invHeap: make([]int, capacity),
	}
}

// Empty reports whether the queue holds no elements.
func (pq *IndexedPriorityQueue) Empty() bool { return pq.size == 0 }

// Len returns the number of queued elements.
func (pq *IndexedPriorityQueue) Len() int { return pq.size }

// Contains reports whether idx is currently queued.
func (pq *IndexedPriorityQueue) Contains(idx int) bool {
	if idx < 0 || idx >= len(pq.invHeap) {
		return false
	}
	pos := pq.invHeap[idx]
	return pos >= 1 && pos <= pq.size && pq.heap[pos] == idx
}

// Insert adds idx at the bottom of the heap and sifts it up.
func (pq *IndexedPriorityQueue) Insert(idx int) {
	if pq.size+1 >= len(pq.heap) {
		panic(fmt.Sprintf("routing: IndexedPriorityQueue.Insert: queue full (capacity %d)", len(pq.heap)-1))
	}
	pq.size++
	pq.heap[pq.size] = idx
	pq.invHeap[idx] = pq.size
	pq.reorderUpwards(pq.size)
}

// Pop removes and returns the index with the smallest key.
func (pq *IndexedPriorityQueue) Pop() int {
	if pq.size == 0 {
		panic("routing: IndexedPriorityQueue.Pop: queue empty")
	}
	pq.swap(1, pq.size)
	pq.reorderDownwards(1, pq.size-1)
	idx := pq.heap[pq.size]
	pq.size--
	return idx
}

// ChangePriority restores heap order after keys[idx] was decreased.
func (pq *IndexedPriorityQueue) ChangePriority(idx int) {
	pq.reorderUpwards(pq.invHeap[idx])
}

func (pq *IndexedPriorityQueue) swap(a, b int) {
	pq.heap[a], pq.heap[b] = pq.heap[b], pq.heap[a]
	pq.invHeap[pq.heap[a]] = a
	pq.invHeap[pq.heap[b]] = b
}

func (pq *IndexedPriorityQueue) reorderUpwards(pos int) {
	for pos > 1 && pq.keys[pq.heap[pos/2]] > pq.keys[pq.heap[pos]] {
		pq.swap(pos/2, pos)
		pos /= 2
	}
}

// reorderDownwards sifts pos down within the first size slots. Ties between
// children go to the left child.
func (pq *IndexedPriorityQueue) reorderDownwards(pos, size int) {
	for 2*pos <= size {
		child := 2 * pos
		if child < size && pq.keys[pq.heap[child]] > pq.keys[pq.heap[child+1]] {
			child++
		}
		if pq.keys[pq.heap[pos]] <= pq.keys[pq.heap[child]] {
			return
		}
		pq.swap(child, pos)
		pos = child
	}
}
