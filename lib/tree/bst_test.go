package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xalgo/lib/infra"
)

type policyTestcase struct {
	name     string
	newTree  func(opts ...TreeOpt[int, int]) Tree[int, int]
	validate func(tree Tree[int, int]) error
}

func policyTestcases() []policyTestcase {
	return []policyTestcase{
		{
			name:     "avl",
			newTree:  NewAVLTree[int, int],
			validate: AVLViolationValidate[int, int],
		},
		{
			name:     "rbtree",
			newTree:  NewRBTree[int, int],
			validate: RBViolationValidate[int, int],
		},
	}
}

func keysOf[K any, V any](tree Tree[K, V]) []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(idx int64, key K, val V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func TestNilNode(t *testing.T) {
	var nilNode Node[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *bstNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)

	tree := NewAVLTree[uint64, uint64]()
	require.True(t, tree.Root() == nil)
	require.True(t, tree.Begin().Node() == nil)
}

func TestTree_InsertFind(t *testing.T) {
	for _, tc := range policyTestcases() {
		t.Run(tc.name, func(tt *testing.T) {
			tree := tc.newTree()
			require.True(tt, tree.Empty())

			it, ok := tree.Insert(30, 300)
			require.True(tt, ok)
			require.Equal(tt, 30, it.Key())
			require.Equal(tt, 300, it.Val())

			found := tree.Find(30)
			require.True(tt, found.Valid())
			require.True(tt, found.Equal(it))
			require.Equal(tt, 300, found.Val())

			// First insert wins.
			dup, ok := tree.Insert(30, 999)
			require.False(tt, ok)
			require.True(tt, dup.Equal(it))
			require.Equal(tt, 300, tree.Find(30).Val())
			require.Equal(tt, int64(1), tree.Len())

			require.False(tt, tree.Find(31).Valid())
			require.True(tt, tree.Find(31).Equal(tree.End()))
			require.NoError(tt, tc.validate(tree))
		})
	}
}

func TestTree_SingleAndDoubleRotation(t *testing.T) {
	testcases := []struct {
		name string
		keys []int
	}{
		{name: "ll single rotation", keys: []int{30, 20, 10}},
		{name: "rr single rotation", keys: []int{10, 20, 30}},
		{name: "lr double rotation", keys: []int{30, 10, 20}},
		{name: "rl double rotation", keys: []int{10, 30, 20}},
	}
	for _, ptc := range policyTestcases() {
		for _, tc := range testcases {
			t.Run(ptc.name+" "+tc.name, func(tt *testing.T) {
				tree := ptc.newTree()
				for _, k := range tc.keys {
					_, ok := tree.Insert(k, k)
					require.True(tt, ok)
				}
				require.Equal(tt, []int{10, 20, 30}, keysOf(tree))
				require.Equal(tt, 20, tree.Root().Key())
				require.Equal(tt, 10, tree.Root().Left().Key())
				require.Equal(tt, 30, tree.Root().Right().Key())
				require.NoError(tt, ptc.validate(tree))
			})
		}
	}
}

func TestTree_EraseTwoChildren(t *testing.T) {
	for _, tc := range policyTestcases() {
		for _, borrowPred := range []bool{false, true} {
			name := tc.name + " borrow succ"
			opts := []TreeOpt[int, int]{}
			if borrowPred {
				name = tc.name + " borrow pred"
				opts = append(opts, WithTreeEraseBorrowPred[int, int]())
			}
			t.Run(name, func(tt *testing.T) {
				tree := tc.newTree(opts...)
				for _, k := range []int{20, 10, 30, 5, 15, 25, 35} {
					_, ok := tree.Insert(k, k*10)
					require.True(tt, ok)
				}
				require.True(tt, tree.Erase(20))
				require.False(tt, tree.Find(20).Valid())
				for _, k := range []int{5, 10, 15, 25, 30, 35} {
					it := tree.Find(k)
					require.True(tt, it.Valid())
					require.Equal(tt, k*10, it.Val())
				}
				require.Equal(tt, []int{5, 10, 15, 25, 30, 35}, keysOf(tree))
				require.Equal(tt, int64(6), tree.Len())
				require.NoError(tt, tc.validate(tree))

				require.False(tt, tree.Erase(20))
				require.Equal(tt, int64(6), tree.Len())
			})
		}
	}
}

func TestTree_EraseAt(t *testing.T) {
	for _, tc := range policyTestcases() {
		t.Run(tc.name, func(tt *testing.T) {
			tree := tc.newTree()
			for i := 0; i < 64; i++ {
				tree.Insert(i, i)
			}

			// Erase every odd key while walking.
			for it := tree.Begin(); it.Valid(); {
				if it.Key()%2 == 1 {
					var ok bool
					it, ok = tree.EraseAt(it)
					require.True(tt, ok)
					require.NoError(tt, tc.validate(tree))
					continue
				}
				it = it.Next()
			}
			require.Equal(tt, lo.Filter(lo.Range(64), func(k int, _ int) bool {
				return k%2 == 0
			}), keysOf(tree))

			// Detached or foreign nodes are refused.
			last := tree.Last()
			require.Equal(tt, 62, last.Key())
			next, ok := tree.EraseAt(last)
			require.True(tt, ok)
			require.False(tt, next.Valid())
			_, ok = tree.EraseAt(last)
			require.False(tt, ok)
			_, ok = tree.EraseAt(tree.End())
			require.False(tt, ok)

			other := tc.newTree()
			foreign, _ := other.Insert(0, 0)
			_, ok = tree.EraseAt(foreign)
			require.False(tt, ok)
			require.Equal(tt, int64(1), other.Len())
		})
	}
}

func TestTree_IteratorBidirectional(t *testing.T) {
	for _, tc := range policyTestcases() {
		t.Run(tc.name, func(tt *testing.T) {
			tree := tc.newTree()
			keys := lo.Shuffle(lo.Range(100))
			for _, k := range keys {
				tree.Insert(k, -k)
			}

			expected := 0
			for it := tree.Begin(); !it.Equal(tree.End()); it = it.Next() {
				require.Equal(tt, expected, it.Key())
				require.Equal(tt, -expected, it.Val())
				expected++
			}
			require.Equal(tt, 100, expected)

			for it := tree.Last(); it.Valid(); it = it.Prev() {
				expected--
				require.Equal(tt, expected, it.Key())
			}
			require.Equal(tt, 0, expected)

			// Rotations caused by later inserts never move an iterator.
			pinned := tree.Find(50)
			for k := 100; k < 1000; k++ {
				tree.Insert(k, -k)
			}
			require.Equal(tt, 50, pinned.Key())
			require.Equal(tt, 51, pinned.Next().Key())
			require.Equal(tt, 49, pinned.Prev().Key())

			pinned.SetVal(5000)
			require.Equal(tt, 5000, tree.Find(50).Val())

			require.Panics(tt, func() {
				tree.End().Key()
			})
			require.Panics(tt, func() {
				tree.End().Next()
			})
		})
	}
}

func TestTree_Foreach_Stop(t *testing.T) {
	tree := NewRBTree[int, int]()
	for i := 0; i < 10; i++ {
		tree.Insert(i, i)
	}
	visited := 0
	tree.Foreach(func(idx int64, key int, val int) bool {
		require.Equal(t, int64(key), idx)
		visited++
		return idx < 4
	})
	require.Equal(t, 5, visited)
}

func TestTree_Desc(t *testing.T) {
	for _, tc := range policyTestcases() {
		t.Run(tc.name, func(tt *testing.T) {
			tree := tc.newTree(WithTreeDesc[int, int]())
			for _, k := range lo.Shuffle(lo.Range(1000)) {
				tree.Insert(k, k)
			}
			tree.Foreach(func(idx int64, key int, val int) bool {
				require.Equal(tt, int(999-idx), key)
				return true
			})
			require.NoError(tt, tc.validate(tree))
		})
	}
}

func TestTree_CustomComparator(t *testing.T) {
	cmp := infra.LessComparator(func(i, j string) bool {
		return strings.ToLower(i) < strings.ToLower(j)
	})
	for _, tree := range []Tree[string, int]{
		NewAVLTreeWithComparator[string, int](cmp),
		NewRBTreeWithComparator[string, int](cmp),
	} {
		_, ok := tree.Insert("Joe", 25)
		require.True(t, ok)
		_, ok = tree.Insert("ben", 99)
		require.True(t, ok)
		it, ok := tree.Insert("JOE", 30)
		require.False(t, ok)
		require.Equal(t, "Joe", it.Key())
		require.Equal(t, 25, it.Val())
		require.Equal(t, []string{"ben", "Joe"}, keysOf(tree))
		require.True(t, tree.Erase("BEN"))
		require.Equal(t, int64(1), tree.Len())
		require.NoError(t, OrderViolationValidate(tree))
	}
	require.Panics(t, func() {
		NewAVLTreeWithComparator[string, int](nil)
	})
}

func TestTree_Clear(t *testing.T) {
	for _, tc := range policyTestcases() {
		t.Run(tc.name, func(tt *testing.T) {
			tree := tc.newTree()
			for i := 0; i < 10_000; i++ {
				tree.Insert(i, i)
			}
			first := tree.Begin()
			tree.Clear()
			require.True(tt, tree.Empty())
			require.Equal(tt, int64(0), tree.Len())
			require.Nil(tt, tree.Root())
			require.False(tt, tree.Begin().Valid())
			require.Nil(tt, first.Node().Parent())
			_, ok := tree.EraseAt(first)
			require.False(tt, ok)

			_, ok = tree.Insert(1, 1)
			require.True(tt, ok)
			require.NoError(tt, tc.validate(tree))
		})
	}
}

func treeRandomInsertAndEraseRunCore(t *testing.T, tc policyTestcase, total int, violationCheck bool) {
	tree := tc.newTree()
	present := make(map[int]int, total)
	inserted, erased := 0, 0

	for i := 0; i < total; i++ {
		key := randv2.IntN(total >> 1)
		if randv2.IntN(3) > 0 {
			it, ok := tree.Insert(key, i)
			_, exists := present[key]
			require.Equal(t, !exists, ok)
			if ok {
				present[key] = i
				inserted++
			}
			require.Equal(t, present[key], it.Val())
		} else {
			_, exists := present[key]
			require.Equal(t, exists, tree.Erase(key))
			if exists {
				delete(present, key)
				erased++
			}
			require.False(t, tree.Find(key).Valid())
		}
		if violationCheck {
			require.NoError(t, tc.validate(tree))
		}
	}
	require.NoError(t, tc.validate(tree))
	require.Equal(t, int64(inserted-erased), tree.Len())

	keys := lo.Keys(present)
	sort.Ints(keys)
	require.Equal(t, keys, keysOf(tree))

	// Erase the rest in random order.
	for _, key := range lo.Shuffle(keys) {
		require.True(t, tree.Erase(key))
		require.False(t, tree.Find(key).Valid())
	}
	require.True(t, tree.Empty())
	require.Equal(t, int64(0), tree.Len())
	for _, key := range keys {
		require.False(t, tree.Find(key).Valid())
	}
}

func TestTreeRandomInsertAndErase(t *testing.T) {
	type testcase struct {
		name           string
		total          int
		violationCheck bool
	}
	testcases := []testcase{
		{name: "100000", total: 100_000},
		{name: "violation check 2000", total: 2000, violationCheck: true},
		{name: "violation check 5000", total: 5000, violationCheck: true},
	}
	for _, ptc := range policyTestcases() {
		for _, tc := range testcases {
			t.Run(ptc.name+" "+tc.name, func(tt *testing.T) {
				treeRandomInsertAndEraseRunCore(tt, ptc, tc.total, tc.violationCheck)
			})
		}
	}
}

func BenchmarkAVLTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewAVLTree[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i], testByBytes)
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i], testByBytes)
	}
}

func BenchmarkAVLTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewAVLTree[int, []byte]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(i, testByBytes)
	}
}
