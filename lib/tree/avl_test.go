package tree

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestAVLTree_Heights(t *testing.T) {
	tree := NewAVLTree[int, string]()
	require.Nil(t, tree.Root())

	tree.Insert(30, "30")
	require.Equal(t, int32(0), tree.Root().Height())

	tree.Insert(20, "20")
	require.Equal(t, int32(1), tree.Root().Height())
	require.Equal(t, int32(0), tree.Root().Left().Height())

	// ll, rotate right at 30.
	tree.Insert(10, "10")
	require.Equal(t, 20, tree.Root().Key())
	require.Equal(t, int32(1), tree.Root().Height())
	require.Equal(t, int32(0), tree.Root().Left().Height())
	require.Equal(t, int32(0), tree.Root().Right().Height())
	require.NoError(t, AVLViolationValidate(tree))
}

func TestAVLTree_SequentialInsertStaysLogHeight(t *testing.T) {
	tree := NewAVLTree[int, int]()
	total := 1<<16 - 1
	for i := 0; i < total; i++ {
		tree.Insert(i, i)
	}
	require.NoError(t, AVLViolationValidate(tree))
	// A perfect tree of 2^16-1 nodes has height 15, avl stays below 1.44*log2(n+2).
	require.LessOrEqual(t, tree.Root().Height(), int32(23))
	require.GreaterOrEqual(t, tree.Root().Height(), int32(15))
}

func TestAVLTree_EraseRebalance(t *testing.T) {
	tree := NewAVLTree[int, int]()
	for _, k := range []int{20, 10, 30, 25} {
		tree.Insert(k, k)
	}
	// Removing 10 makes 20 right-heavy with a left leaning right child, rl.
	require.True(t, tree.Erase(10))
	require.Equal(t, 25, tree.Root().Key())
	require.Equal(t, 20, tree.Root().Left().Key())
	require.Equal(t, 30, tree.Root().Right().Key())
	require.NoError(t, AVLViolationValidate(tree))

	for _, k := range lo.Range(1000) {
		tree.Insert(k+100, k)
	}
	for _, k := range lo.Shuffle(lo.Range(1000)) {
		require.True(t, tree.Erase(k+100))
		require.NoError(t, HeightViolationValidate(tree))
	}
	require.Equal(t, []int{20, 25, 30}, keysOf(tree))
}

func TestAVLTree_ValidatorsReportAll(t *testing.T) {
	tree := NewAVLTree[int, int]()
	for i := 0; i < 7; i++ {
		tree.Insert(i, i)
	}
	impl := tree.(*bsTree[int, int])

	// Corrupt the stored heights and a parent link on purpose.
	impl.root.height = 10
	impl.root.left.height = 10
	impl.root.right.left.parent = impl.root

	err := HeightViolationValidate(tree)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrHeightViolation))
	require.GreaterOrEqual(t, len(multierr.Errors(err)), 2)

	err = OrderViolationValidate(tree)
	require.True(t, errors.Is(err, ErrOrderViolation))

	impl.count++
	err = AVLViolationValidate(tree)
	require.True(t, errors.Is(err, ErrSizeViolation))
	require.True(t, errors.Is(err, ErrHeightViolation))
}
