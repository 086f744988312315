package tree

import "github.com/benz9527/xalgo/lib/infra"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// Node is the read-only view of one stored element.
// Height is only maintained by the AVL tree and Color only by the rbtree.
type Node[K any, V any] interface {
	Key() K
	Val() V
	Height() int32
	Color() RBColor
	Left() Node[K, V]
	Right() Node[K, V]
	Parent() Node[K, V]
}

type Tree[K any, V any] interface {
	Len() int64
	Empty() bool
	Root() Node[K, V]
	Comparator() infra.Comparator[K]
	// Insert keeps the first inserted value of a key. The returned iterator
	// points to the stored element whether inserted or not.
	Insert(key K, val V) (Iterator[K, V], bool)
	Erase(key K) bool
	// EraseAt returns the iterator following the erased element.
	// Iterators pointing to the erased element are invalidated.
	EraseAt(it Iterator[K, V]) (Iterator[K, V], bool)
	Find(key K) Iterator[K, V]
	Begin() Iterator[K, V]
	Last() Iterator[K, V]
	End() Iterator[K, V]
	Foreach(action func(idx int64, key K, val V) bool)
	Clear()
}
