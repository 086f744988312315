package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrOrderViolation  = errors.New("tree order violation")
	ErrHeightViolation = errors.New("avl height violation")
	ErrRedViolation    = errors.New("rbtree red violation")
	ErrBlackViolation  = errors.New("rbtree black violation")
	ErrSizeViolation   = errors.New("tree size violation")
)

// Tree rule validation utilities.
// Each validator reports every violation it meets instead of the first one.

// inorder walks the tree by an explicit stack, so it does not rely on the
// parent links being valid.
func inorder[K any, V any](tree Tree[K, V], action func(node Node[K, V])) {
	var aux Node[K, V] = tree.Root()
	if aux == nil {
		return
	}

	stack := make([]Node[K, V], 0, tree.Len()>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		action(aux)
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
}

// OrderViolationValidate checks the keys strictly increase in order and
// every parent link mirrors the structure.
func OrderViolationValidate[K any, V any](tree Tree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	var merr error
	if root.Parent() != nil {
		merr = multierr.Append(merr, fmt.Errorf("%w: root %v has a parent", ErrOrderViolation, root.Key()))
	}

	cmp := tree.Comparator()
	var prev Node[K, V]
	inorder[K, V](tree, func(node Node[K, V]) {
		if l := node.Left(); l != nil && l.Parent() != node {
			merr = multierr.Append(merr, fmt.Errorf("%w: left child %v of %v has a stale parent", ErrOrderViolation, l.Key(), node.Key()))
		}
		if r := node.Right(); r != nil && r.Parent() != node {
			merr = multierr.Append(merr, fmt.Errorf("%w: right child %v of %v has a stale parent", ErrOrderViolation, r.Key(), node.Key()))
		}
		if prev != nil && cmp(prev.Key(), node.Key()) >= 0 {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %v is not before %v", ErrOrderViolation, prev.Key(), node.Key()))
		}
		prev = node
	})
	return merr
}

// HeightViolationValidate recomputes each subtree height, then compares it
// with the stored height and checks the balance factor.
func HeightViolationValidate[K any, V any](tree Tree[K, V]) error {
	var (
		merr  error
		check func(node Node[K, V]) int32
	)
	check = func(node Node[K, V]) int32 {
		if node == nil {
			return -1
		}
		lh, rh := check(node.Left()), check(node.Right())
		h := 1 + max(lh, rh)
		if node.Height() != h {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %v stored height %d, actual %d", ErrHeightViolation, node.Key(), node.Height(), h))
		}
		if bf := lh - rh; bf > 1 || bf < -1 {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %v balance factor %d", ErrHeightViolation, node.Key(), bf))
		}
		return h
	}
	check(tree.Root())
	return merr
}

// RedViolationValidate checks the root is black and no red node has a red child.
func RedViolationValidate[K any, V any](tree Tree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	var merr error
	if root.Color() != Black {
		merr = multierr.Append(merr, fmt.Errorf("%w: root %v is red", ErrRedViolation, root.Key()))
	}
	inorder[K, V](tree, func(node Node[K, V]) {
		if node.Color() != Red {
			return
		}
		if l, r := node.Left(), node.Right(); (l != nil && l.Color() == Red) || (r != nil && r.Color() == Red) {
			merr = multierr.Append(merr, fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, node.Key()))
		}
	})
	return merr
}

func blackDepthTo[K any, V any](target Node[K, V]) int {
	depth := 0
	for aux := target; aux != nil; aux = aux.Parent() {
		if aux.Color() == Black {
			depth++
		}
	}
	return depth
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
Nodes owning at least one NIL child end a path, so they are the leaves here.
*/
func BlackViolationValidate[K any, V any](tree Tree[K, V]) error {
	var (
		merr       error
		blackDepth = -1
	)
	inorder[K, V](tree, func(node Node[K, V]) {
		if node.Left() != nil && node.Right() != nil {
			return
		}
		depth := blackDepthTo(node)
		if blackDepth < 0 {
			blackDepth = depth
		} else if depth != blackDepth {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %v black depth %d, expected %d", ErrBlackViolation, node.Key(), depth, blackDepth))
		}
	})
	return merr
}

// SizeViolationValidate checks the element count equals the reachable nodes.
func SizeViolationValidate[K any, V any](tree Tree[K, V]) error {
	reachable := int64(0)
	inorder[K, V](tree, func(Node[K, V]) {
		reachable++
	})
	if reachable != tree.Len() {
		return fmt.Errorf("%w: len %d, reachable %d", ErrSizeViolation, tree.Len(), reachable)
	}
	if (reachable == 0) != tree.Empty() {
		return fmt.Errorf("%w: empty %t with %d reachable", ErrSizeViolation, tree.Empty(), reachable)
	}
	return nil
}

// AVLViolationValidate runs every validator an AVL tree must satisfy.
func AVLViolationValidate[K any, V any](tree Tree[K, V]) error {
	return multierr.Combine(
		OrderViolationValidate(tree),
		SizeViolationValidate(tree),
		HeightViolationValidate(tree),
	)
}

// RBViolationValidate runs every validator an rbtree must satisfy.
func RBViolationValidate[K any, V any](tree Tree[K, V]) error {
	return multierr.Combine(
		OrderViolationValidate(tree),
		SizeViolationValidate(tree),
		RedViolationValidate(tree),
		BlackViolationValidate(tree),
	)
}
