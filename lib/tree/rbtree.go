package tree

import "github.com/benz9527/xalgo/lib/infra"

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// So the shortest path nodes are black nodes. Otherwise,
// the path must contain red node.
// The longest path nodes' number is 2 * shortest path nodes' number.

type rbBalancer[K any, V any] struct{}

func (rbBalancer[K, V]) afterRotate(*bstNode[K, V], *bstNode[K, V]) {}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X is root, paint it into black.

im2: Current node X's parent P is black, hold p3 and p4.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation may be still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (rbBalancer[K, V]) afterInsert(tree *bsTree[K, V], x *bstNode[K, V]) {
	x.color = Red
	for /* im1 */ !x.isRoot() && /* im2 */ isRed(x.parent) {
		// A red parent is never the root, so the grandpa exists.
		p := x.parent
		gp := p.parent
		if uncle := p.sibling(); /* im3 */ isRed(uncle) {
			p.color = Black
			uncle.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im4 */ dir := x.direction(); dir != p.direction() {
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[tree] rbtree insert violate (im4)")
			}
			p = x // X is above P now, enter im5 to fix
		}

		switch /* im5 */ p.direction() {
		case Left:
			tree.rightRotate(gp)
		case Right:
			tree.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[tree] rbtree insert violate (im5)")
		}
		p.color = Black
		gp.color = Red
		break
	}
	tree.root.color = Black
}

/*
r1: Node Y to be removed is red, it must be a leaf, remove directly.

r2: Y is black and has a child C.
C must be a red leaf (See conclusion), repaint C into black.

r3: Y is a black leaf (not root), removing it breaks p4, so rebalance
before unlinking while Y still holds its slot.
*/
func (rbBalancer[K, V]) beforeDetach(tree *bsTree[K, V], y, child *bstNode[K, V]) {
	if /* r1 */ y.color == Red {
		return
	}
	if /* r2 */ child != nil {
		child.color = Black
		return
	}
	if /* r3 */ !y.isRoot() {
		rbRemoveRebalance(tree, y)
	}
}

func (rbBalancer[K, V]) afterDetach(tree *bsTree[K, V], _ *bstNode[K, V]) {
	if tree.root != nil {
		tree.root.color = Black
	}
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p3 and p4. We have to paint the S into red to satisfy
p4 locally. Then recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
Unable to satisfy p3 and p4.
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay)
Unable to satisfy p4 (black-violation)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) Swap P and S's color (red-violation)
(4) Repaint Sd into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func rbRemoveRebalance[K any, V any](tree *bsTree[K, V], x *bstNode[K, V]) {
	for !x.isRoot() {
		dir := x.direction()
		// The black height of X's side is at least one, so S exists.
		sibling := x.sibling()
		if /* rm1 */ isRed(sibling) {
			switch dir {
			case Left:
				tree.leftRotate(x.parent)
			case Right:
				tree.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[tree] rbtree remove violate (rm1)")
			}
			sibling.color = Black
			x.parent.color = Red // ready to enter rm2, rm4 or rm5
			sibling = x.sibling()
		}

		var sc, sd *bstNode[K, V]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[tree] rbtree remove violate (rm2)")
		}

		if isBlack(sc) && isBlack(sd) {
			sibling.color = Red
			if /* rm2 */ isRed(x.parent) {
				x.parent.color = Black
				return
			}
			/* rm3 */
			x = x.parent
			continue
		}

		if /* rm4 */ isBlack(sd) {
			switch dir {
			case Left:
				tree.rightRotate(sibling)
			case Right:
				tree.leftRotate(sibling)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[tree] rbtree remove violate (rm4)")
			}
			sc.color = Black
			sibling.color = Red
			sibling, sd = sc, sibling
		}

		/* rm5 */
		p := x.parent
		switch dir {
		case Left:
			tree.leftRotate(p)
		case Right:
			tree.rightRotate(p)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[tree] rbtree remove violate (rm5)")
		}
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		return
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...TreeOpt[K, V]) Tree[K, V] {
	return NewRBTreeWithComparator[K, V](infra.NaturalComparator[K](), opts...)
}

func NewRBTreeWithComparator[K any, V any](cmp infra.Comparator[K], opts ...TreeOpt[K, V]) Tree[K, V] {
	return newTree[K, V](cmp, rbBalancer[K, V]{}, opts...)
}
