package tree

import (
	"github.com/benz9527/xalgo/lib/infra"
)

// balancer is the rebalancing policy plugged into the shared tree core.
// The core owns the node links and the rotations, the policy only keeps its
// own node metadata (height or color) and decides where to rotate.
type balancer[K any, V any] interface {
	// afterInsert runs after the new leaf x has been linked.
	afterInsert(tree *bsTree[K, V], x *bstNode[K, V])
	// beforeDetach runs while y, the node to be physically removed, is
	// still linked. y has at most one child.
	beforeDetach(tree *bsTree[K, V], y, child *bstNode[K, V])
	// afterDetach runs with the structural parent of the emptied slot,
	// nil if the removed node was the root.
	afterDetach(tree *bsTree[K, V], parent *bstNode[K, V])
	// afterRotate runs after x has been rotated down below y.
	afterRotate(x, y *bstNode[K, V])
}

var (
	_ Tree[int, int] = (*bsTree[int, int])(nil)
)

type bsTree[K any, V any] struct {
	root              *bstNode[K, V]
	count             int64
	cmp               infra.Comparator[K]
	policy            balancer[K, V]
	isDesc            bool
	isEraseBorrowPred bool
}

func (tree *bsTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *bsTree[K, V]) Empty() bool {
	return tree.root == nil
}

func (tree *bsTree[K, V]) Root() Node[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *bsTree[K, V]) Comparator() infra.Comparator[K] {
	return tree.cmp
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *bsTree[K, V]) leftRotate(x *bstNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.policy.afterRotate(x, y)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *bsTree[K, V]) rightRotate(x *bstNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.policy.afterRotate(x, y)
}

// transplant hands y's slot (parent child pointer or the root handle) over to child.
func (tree *bsTree[K, V]) transplant(y, child *bstNode[K, V]) {
	switch y.direction() {
	case Root:
		tree.root = child
	case Left:
		y.parent.left = child
	case Right:
		y.parent.right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] unknown node direction to transplant")
	}
	if child != nil {
		child.parent = y.parent
	}
}

func (tree *bsTree[K, V]) Insert(key K, val V) (Iterator[K, V], bool) {
	var (
		y   *bstNode[K, V]
		res int64
	)
	for x := tree.root; x != nil; {
		y = x
		if res = tree.cmp(key, x.key); /* equal */ res == 0 {
			return Iterator[K, V]{node: x}, false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &bstNode[K, V]{
		key:    key,
		val:    val,
		parent: y,
	}
	if y == nil {
		tree.root = z
	} else if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.count++
	tree.policy.afterInsert(tree, z)
	return Iterator[K, V]{node: z}, true
}

func (tree *bsTree[K, V]) search(key K) *bstNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *bsTree[K, V]) Find(key K) Iterator[K, V] {
	return Iterator[K, V]{node: tree.search(key)}
}

func (tree *bsTree[K, V]) Erase(key K) bool {
	z := tree.search(key)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *bsTree[K, V]) EraseAt(it Iterator[K, V]) (Iterator[K, V], bool) {
	if !tree.owns(it.node) {
		return Iterator[K, V]{}, false
	}
	return Iterator[K, V]{node: tree.removeNode(it.node)}, true
}

// owns reports whether x is still linked into this tree. Detached nodes
// have neither a parent nor the root slot.
func (tree *bsTree[K, V]) owns(x *bstNode[K, V]) bool {
	if x == nil || tree.root == nil {
		return false
	}
	aux := x
	for ; aux.parent != nil; aux = aux.parent {
	}
	return aux == tree.root
}

/*
Removing node Z.

r1: Z has no child, detach it directly.

r2: Z has exactly one child C, promote C into Z's slot.

r3: Z has left and right node.
Borrow the succ S (or pred), which has at most one child, copy its
key & value into Z, then physically remove S by r1 or r2.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   copy(S, Z)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

The node actually unlinked is always handed to the policy to restore the
balance along its ancestors.
*/
func (tree *bsTree[K, V]) removeNode(z *bstNode[K, V]) (next *bstNode[K, V]) {
	y := z
	if /* r3 */ z.left != nil && z.right != nil {
		if tree.isEraseBorrowPred {
			y = z.left.maximum()
			next = z.succ()
		} else {
			y = z.right.minimum()
			next = z // Z now carries the succ element.
		}
		z.key, z.val = y.key, y.val
	} else {
		next = z.succ()
	}

	child := y.left
	if child == nil {
		child = y.right
	}
	tree.policy.beforeDetach(tree, y, child)

	// The policy may rotate around y, so load its parent afterwards.
	parent := y.parent
	tree.transplant(y, child)
	y.parent, y.left, y.right = nil, nil, nil
	tree.count--
	tree.policy.afterDetach(tree, parent)
	return next
}

func (tree *bsTree[K, V]) Begin() Iterator[K, V] {
	return Iterator[K, V]{node: tree.root.minimum()}
}

func (tree *bsTree[K, V]) Last() Iterator[K, V] {
	return Iterator[K, V]{node: tree.root.maximum()}
}

func (tree *bsTree[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{}
}

// Foreach walks in order through the iterator.
func (tree *bsTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for it := tree.Begin(); it.Valid(); it = it.Next() {
		if !action(idx, it.node.key, it.node.val) {
			return
		}
		idx++
	}
}

func (tree *bsTree[K, V]) Clear() {
	size := tree.count
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*bstNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		r := aux.right
		aux.left, aux.right, aux.parent = nil, nil, nil
		stack = stack[:size-1]
		for aux = r; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

type TreeOpt[K any, V any] func(*bsTree[K, V])

func WithTreeDesc[K any, V any]() TreeOpt[K, V] {
	return func(tree *bsTree[K, V]) {
		tree.isDesc = true
	}
}

// WithTreeEraseBorrowPred makes erasing a node with two children borrow the
// in-order predecessor instead of the successor.
func WithTreeEraseBorrowPred[K any, V any]() TreeOpt[K, V] {
	return func(tree *bsTree[K, V]) {
		tree.isEraseBorrowPred = true
	}
}

func newTree[K any, V any](cmp infra.Comparator[K], policy balancer[K, V], opts ...TreeOpt[K, V]) *bsTree[K, V] {
	if cmp == nil {
		panic( /* debug assertion */ "[tree] nil key comparator")
	}
	tree := &bsTree[K, V]{
		cmp:    cmp,
		policy: policy,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.isDesc {
		tree.cmp = infra.ReverseComparator(tree.cmp)
	}
	return tree
}
