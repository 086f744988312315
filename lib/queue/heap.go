package queue

// References:
// https://en.wikipedia.org/wiki/Binary_heap
// https://en.cppreference.com/w/cpp/algorithm/push_heap
// heap property:
// For every non-root index i, !less(seq[(i-1)/2], seq[i]).
// The children of i are 2i+1 and 2i+2, no node objects, the position in
// the sequence is the identity.

// PushHeap sifts the last element up. All the elements before it must
// already be a heap.
func PushHeap[E any](seq RandomAccess[E], less LessThan[E]) {
	siftUp[E](seq, seq.Len()-1, less)
}

// PopHeap moves the top element to the last position and restores the
// heap over the remaining [0, n-1) elements. The caller removes the last
// element afterwards.
func PopHeap[E any](seq RandomAccess[E], less LessThan[E]) {
	popHeap[E](seq, seq.Len(), less)
}

// MakeHeap heapifies the whole sequence bottom-up in O(n).
func MakeHeap[E any](seq RandomAccess[E], less LessThan[E]) {
	n := seq.Len()
	if n <= 1 {
		return
	}
	// Start from the last internal node.
	for i := (n - 2) / 2; i >= 0; i-- {
		siftDown[E](seq, i, n, less)
	}
}

// IsHeapUntil returns the first index breaking the heap property, or
// the sequence length if there is none.
func IsHeapUntil[E any](seq RandomAccess[E], less LessThan[E]) int {
	n := seq.Len()
	for child := 1; child < n; child++ {
		if less(seq.At((child-1)/2), seq.At(child)) {
			return child
		}
	}
	return n
}

func IsHeap[E any](seq RandomAccess[E], less LessThan[E]) bool {
	return IsHeapUntil[E](seq, less) == seq.Len()
}

// SortHeap turns a heap into a sequence sorted ascending by less.
func SortHeap[E any](seq RandomAccess[E], less LessThan[E]) {
	for n := seq.Len(); n > 1; n-- {
		popHeap[E](seq, n, less)
	}
}

func popHeap[E any](seq RandomAccess[E], n int, less LessThan[E]) {
	if n <= 1 {
		return
	}
	seq.Swap(0, n-1)
	siftDown[E](seq, 0, n-1, less)
}

func siftUp[E any](seq RandomAccess[E], child int, less LessThan[E]) {
	for child > 0 {
		parent := (child - 1) / 2
		if !less(seq.At(parent), seq.At(child)) {
			return
		}
		seq.Swap(parent, child)
		child = parent
	}
}

// siftDown pushes seq[i] down within [0, n).
func siftDown[E any](seq RandomAccess[E], i, n int, less LessThan[E]) {
	for parent, child := i, 2*i+1; child < n; parent, child = child, 2*child+1 {
		// Prefer the right child only if it strictly outranks the left.
		if right := child + 1; right < n && less(seq.At(child), seq.At(right)) {
			child = right
		}
		if !less(seq.At(parent), seq.At(child)) {
			return
		}
		seq.Swap(parent, child)
	}
}
