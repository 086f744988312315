package tree

import "github.com/benz9527/xalgo/lib/infra"

// References:
// https://en.wikipedia.org/wiki/AVL_tree
// avl properties:
// p1. height(nil) = -1, height(leaf) = 0,
//   height(x) = 1 + max(height(x.left), height(x.right)).
// p2. Every node balance factor, height(x.left) - height(x.right),
//   is one of -1, 0, 1.
// (Conclusion) The height is at most ~1.44 * log2(n+2), the lookups are
// slightly faster than the rbtree but the updates rotate more often.

type avlBalancer[K any, V any] struct{}

func avlHeight[K any, V any](node *bstNode[K, V]) int32 {
	if node == nil {
		return -1
	}
	return node.height
}

func avlUpdateHeight[K any, V any](node *bstNode[K, V]) {
	node.height = 1 + max(avlHeight(node.left), avlHeight(node.right))
}

func avlBalanceFactor[K any, V any](node *bstNode[K, V]) int32 {
	if node == nil {
		return 0
	}
	return avlHeight(node.left) - avlHeight(node.right)
}

func (avlBalancer[K, V]) afterInsert(tree *bsTree[K, V], x *bstNode[K, V]) {
	x.height = 0
	avlRetrace(tree, x.parent)
}

func (avlBalancer[K, V]) beforeDetach(*bsTree[K, V], *bstNode[K, V], *bstNode[K, V]) {}

func (avlBalancer[K, V]) afterDetach(tree *bsTree[K, V], parent *bstNode[K, V]) {
	avlRetrace(tree, parent)
}

func (avlBalancer[K, V]) afterRotate(x, y *bstNode[K, V]) {
	// x is y's child now, refresh bottom-up.
	avlUpdateHeight(x)
	avlUpdateHeight(y)
}

// avlRetrace walks from x up to the root, refreshing the heights and
// rotating every subtree whose balance factor runs out of [-1, 1].
func avlRetrace[K any, V any](tree *bsTree[K, V], x *bstNode[K, V]) {
	for aux := x; aux != nil; aux = aux.parent {
		avlUpdateHeight(aux)
		aux = avlRebalance(tree, aux)
	}
}

/*
ll: X is left-heavy and its left child L is not right leaning.

	      [X]                 [L]
	      / \                 / \
	    [L]  c  r-rotate(X) [a] [X]
	    / \     =========>      / \
	  [a]  b                   b   c

lr: X is left-heavy but its left child L leans right.
Left rotate L first to turn it into ll.

	    [X]                [X]                [B]
	    / \                / \                / \
	  [L]  c  l-rotate(L) [B]  c  r-rotate(X) [L] [X]
	  / \    ==========> / \     ==========>  / \ / \
	 a  [B]            [L]  y                a  x y  c
	    / \            / \
	   x   y          a   x

rr and rl are the mirrors.
*/
func avlRebalance[K any, V any](tree *bsTree[K, V], x *bstNode[K, V]) *bstNode[K, V] {
	bf := avlBalanceFactor(x)
	if /* left heavy */ bf > 1 {
		if /* lr */ avlBalanceFactor(x.left) < 0 {
			tree.leftRotate(x.left)
		}
		tree.rightRotate(x)
		return x.parent
	} else if /* right heavy */ bf < -1 {
		if /* rl */ avlBalanceFactor(x.right) > 0 {
			tree.rightRotate(x.right)
		}
		tree.leftRotate(x)
		return x.parent
	}
	return x
}

func NewAVLTree[K infra.OrderedKey, V any](opts ...TreeOpt[K, V]) Tree[K, V] {
	return NewAVLTreeWithComparator[K, V](infra.NaturalComparator[K](), opts...)
}

func NewAVLTreeWithComparator[K any, V any](cmp infra.Comparator[K], opts ...TreeOpt[K, V]) Tree[K, V] {
	return newTree[K, V](cmp, avlBalancer[K, V]{}, opts...)
}
