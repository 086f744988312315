package queue

import (
	"github.com/benz9527/xalgo/lib/infra"
)

var (
	_ PriorityQueue[int] = (*ArrayPriorityQueue[int])(nil)
)

// ArrayPriorityQueue adapts a sequence into a binary heap ordered by less.
// It is not thread safe.
type ArrayPriorityQueue[E any] struct {
	capacity int
	seq      Sequence[E]
	less     LessThan[E]
}

func (pq *ArrayPriorityQueue[E]) Len() int64 {
	return int64(pq.seq.Len())
}

func (pq *ArrayPriorityQueue[E]) Empty() bool {
	return pq.seq.Len() == 0
}

func (pq *ArrayPriorityQueue[E]) Push(e E) {
	pq.seq.PushBack(e)
	PushHeap[E](pq.seq, pq.less)
}

func (pq *ArrayPriorityQueue[E]) Pop() E {
	if pq.seq.Len() == 0 {
		panic( /* debug assertion */ "[queue] pop from empty priority queue")
	}
	PopHeap[E](pq.seq, pq.less)
	return pq.seq.PopBack()
}

func (pq *ArrayPriorityQueue[E]) Top() E {
	if pq.seq.Len() == 0 {
		panic( /* debug assertion */ "[queue] top of empty priority queue")
	}
	return pq.seq.At(0)
}

type ArrayPriorityQueueOption[E any] func(*ArrayPriorityQueue[E])

// NewPriorityQueue orders by the natural "<", the greatest element on top.
func NewPriorityQueue[E infra.OrderedKey](opts ...ArrayPriorityQueueOption[E]) PriorityQueue[E] {
	return NewPriorityQueueWithLess[E](func(i, j E) bool {
		return i < j
	}, opts...)
}

func NewPriorityQueueWithLess[E any](less LessThan[E], opts ...ArrayPriorityQueueOption[E]) PriorityQueue[E] {
	if less == nil {
		panic( /* debug assertion */ "[queue] nil less comparator")
	}
	pq := &ArrayPriorityQueue[E]{
		less: less,
	}
	for _, o := range opts {
		if o != nil {
			o(pq)
		}
	}
	if pq.capacity <= 0 {
		pq.capacity = 64
	}
	if pq.seq == nil {
		pq.seq = NewSliceSequence[E](pq.capacity)
	} else {
		// Heapify once instead of n sift-ups.
		MakeHeap[E](pq.seq, pq.less)
	}
	return pq
}

func WithPriorityQueueCapacity[E any](capacity int) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if capacity <= 0 {
			capacity = 64
		}
		pq.capacity = capacity
	}
}

// WithPriorityQueueSequence takes over an existing container, which must
// not be touched by the caller afterwards.
func WithPriorityQueueSequence[E any](seq Sequence[E]) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if seq != nil {
			pq.seq = seq
		}
	}
}

// WithPriorityQueueElements copies the elements into a new slice sequence.
func WithPriorityQueueElements[E any](elements ...E) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		seq := make(SliceSequence[E], len(elements), max(len(elements), pq.capacity))
		copy(seq, elements)
		pq.seq = &seq
	}
}
