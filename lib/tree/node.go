package tree

type bstNode[K any, V any] struct {
	parent *bstNode[K, V]
	left   *bstNode[K, V]
	right  *bstNode[K, V]
	key    K
	val    V
	height int32
	color  RBColor
}

func (node *bstNode[K, V]) Key() K {
	return node.key
}

func (node *bstNode[K, V]) Val() V {
	return node.val
}

func (node *bstNode[K, V]) Height() int32 {
	return node.height
}

func (node *bstNode[K, V]) Color() RBColor {
	return node.color
}

func (node *bstNode[K, V]) Left() Node[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bstNode[K, V]) Right() Node[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *bstNode[K, V]) Parent() Node[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *bstNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *bstNode[K, V]) direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] nil node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *bstNode[K, V]) sibling() *bstNode[K, V] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *bstNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *bstNode[K, V]) minimum() *bstNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *bstNode[K, V]) maximum() *bstNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *bstNode[K, V]) pred() *bstNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack until arriving from a right child.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *bstNode[K, V]) succ() *bstNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack until arriving from a left child.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

func isRed[K any, V any](node *bstNode[K, V]) bool {
	return node != nil && node.color == Red
}

func isBlack[K any, V any](node *bstNode[K, V]) bool {
	return node == nil || node.color == Black
}
