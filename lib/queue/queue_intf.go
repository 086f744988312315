package queue

// RandomAccess is any index-addressable sequence the heap algorithms can
// work in place.
type RandomAccess[E any] interface {
	Len() int
	At(i int) E
	Swap(i, j int)
}

// Sequence is the backing container of the priority queue.
type Sequence[E any] interface {
	RandomAccess[E]
	PushBack(e E)
	PopBack() E
}

// LessThan is a strict weak order. The heap keeps the element no other
// element is greater than at index 0, so "i < j" builds a max-heap and
// "i > j" a min-heap.
type LessThan[E any] func(i, j E) bool

type PriorityQueue[E any] interface {
	Len() int64
	Empty() bool
	Push(e E)
	// Pop removes and returns the top element, panics if empty.
	Pop() E
	// Top returns the top element, panics if empty.
	Top() E
}
