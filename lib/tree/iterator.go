package tree

// Iterator is a cursor over the tree nodes. The zero value is the end
// iterator. It walks the parent/child links directly, so inserting other
// keys or rebalancing never moves it, but erasing the element it points
// to invalidates it.
type Iterator[K any, V any] struct {
	node *bstNode[K, V]
}

func (it Iterator[K, V]) mustValid(op string) {
	if it.node == nil {
		panic( /* debug assertion */ "[tree] " + op + " on end iterator")
	}
}

func (it Iterator[K, V]) Valid() bool {
	return it.node != nil
}

func (it Iterator[K, V]) Key() K {
	it.mustValid("key")
	return it.node.key
}

func (it Iterator[K, V]) Val() V {
	it.mustValid("val")
	return it.node.val
}

// SetVal replaces the stored value in place. The key is immutable.
func (it Iterator[K, V]) SetVal(val V) {
	it.mustValid("set val")
	it.node.val = val
}

func (it Iterator[K, V]) Next() Iterator[K, V] {
	it.mustValid("next")
	return Iterator[K, V]{node: it.node.succ()}
}

func (it Iterator[K, V]) Prev() Iterator[K, V] {
	it.mustValid("prev")
	return Iterator[K, V]{node: it.node.pred()}
}

func (it Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return it.node == other.node
}

func (it Iterator[K, V]) Node() Node[K, V] {
	if it.node == nil {
		return nil
	}
	return it.node
}
