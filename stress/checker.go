package stress

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xalgo/lib/queue"
	"github.com/benz9527/xalgo/lib/tree"
)

var (
	ErrModelMismatch = errors.New("container diverged from the reference model")
	ErrHeapOrder     = errors.New("priority queue popped out of order")
)

// checker drives one randomized trial against a reference model.
type checker interface {
	run(ctx context.Context) error
	operations() int64
	size() int64
	counts() map[string]int64
}

const (
	opInsert  = "insert"
	opErase   = "erase"
	opEraseAt = "erase_at"
	opFind    = "find"
	opPush    = "push"
	opPop     = "pop"
)

type treeChecker struct {
	policy        Policy
	rnd           *randv2.Rand
	tree          tree.Tree[int, int]
	validator     func(tree.Tree[int, int]) error
	model         map[int]int
	ops           map[string]int64
	total         int64
	limit         int
	keySpace      int
	validateEvery int
}

func newTreeChecker(policy Policy, cfg StressConfig, rnd *randv2.Rand) *treeChecker {
	opts := make([]tree.TreeOpt[int, int], 0, 2)
	if rnd.IntN(2) == 0 {
		opts = append(opts, tree.WithTreeEraseBorrowPred[int, int]())
	}
	if rnd.IntN(4) == 0 {
		opts = append(opts, tree.WithTreeDesc[int, int]())
	}
	c := &treeChecker{
		policy:        policy,
		rnd:           rnd,
		model:         make(map[int]int, cfg.KeySpace),
		ops:           make(map[string]int64, 4),
		limit:         cfg.Operations,
		keySpace:      cfg.KeySpace,
		validateEvery: cfg.ValidateEvery,
	}
	if policy == PolicyAVL {
		c.tree = tree.NewAVLTree[int, int](opts...)
		c.validator = tree.AVLViolationValidate[int, int]
	} else {
		c.tree = tree.NewRBTree[int, int](opts...)
		c.validator = tree.RBViolationValidate[int, int]
	}
	return c
}

func (c *treeChecker) operations() int64        { return c.total }
func (c *treeChecker) size() int64              { return c.tree.Len() }
func (c *treeChecker) counts() map[string]int64 { return c.ops }

func (c *treeChecker) run(ctx context.Context) error {
	for i := 0; i < c.limit; i++ {
		if i&63 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key := c.rnd.IntN(c.keySpace)
		var err error
		switch dice := c.rnd.IntN(10); {
		case dice < 5:
			err = c.insert(key, i)
		case dice < 7:
			err = c.erase(key)
		case dice < 8:
			err = c.eraseAt(key)
		default:
			err = c.find(key, i)
		}
		c.total++
		if err != nil {
			return fmt.Errorf("operation %d on key %d: %w", i, key, err)
		}
		if (i+1)%c.validateEvery == 0 {
			if err = c.validate(); err != nil {
				return fmt.Errorf("after operation %d: %w", i, err)
			}
		}
	}
	return c.validate()
}

func (c *treeChecker) insert(key, val int) error {
	c.ops[opInsert]++
	it, inserted := c.tree.Insert(key, val)
	prev, exists := c.model[key]
	if inserted == exists {
		return fmt.Errorf("%w: insert reported %t, model has key %t", ErrModelMismatch, inserted, exists)
	}
	if !it.Valid() || it.Key() != key {
		return fmt.Errorf("%w: insert returned a wrong position", ErrModelMismatch)
	}
	if exists {
		// First insert wins.
		if it.Val() != prev {
			return fmt.Errorf("%w: duplicate insert overwrote %d with %d", ErrModelMismatch, prev, it.Val())
		}
		return nil
	}
	c.model[key] = val
	return nil
}

func (c *treeChecker) erase(key int) error {
	c.ops[opErase]++
	erased := c.tree.Erase(key)
	if _, exists := c.model[key]; erased != exists {
		return fmt.Errorf("%w: erase reported %t, model has key %t", ErrModelMismatch, erased, exists)
	}
	delete(c.model, key)
	return nil
}

// eraseAt removes through the iterator and checks the returned position
// is the element that followed the erased one.
func (c *treeChecker) eraseAt(key int) error {
	c.ops[opEraseAt]++
	it := c.tree.Find(key)
	if _, exists := c.model[key]; it.Valid() != exists {
		return fmt.Errorf("%w: find reported %t, model has key %t", ErrModelMismatch, it.Valid(), exists)
	}
	if !it.Valid() {
		if _, erased := c.tree.EraseAt(it); erased {
			return fmt.Errorf("%w: erased through the end iterator", ErrModelMismatch)
		}
		return nil
	}
	follow := it.Next()
	wantNext, hasNext := 0, follow.Valid()
	if hasNext {
		wantNext = follow.Key()
	}
	next, erased := c.tree.EraseAt(it)
	if !erased {
		return fmt.Errorf("%w: erase at a valid iterator failed", ErrModelMismatch)
	}
	delete(c.model, key)
	if next.Valid() != hasNext || (hasNext && next.Key() != wantNext) {
		return fmt.Errorf("%w: erase at returned a wrong next position", ErrModelMismatch)
	}
	return nil
}

func (c *treeChecker) find(key, val int) error {
	c.ops[opFind]++
	it := c.tree.Find(key)
	prev, exists := c.model[key]
	if it.Valid() != exists {
		return fmt.Errorf("%w: find reported %t, model has key %t", ErrModelMismatch, it.Valid(), exists)
	}
	if !exists {
		return nil
	}
	if it.Key() != key || it.Val() != prev {
		return fmt.Errorf("%w: find returned (%d, %d), want (%d, %d)", ErrModelMismatch, it.Key(), it.Val(), key, prev)
	}
	if val&1 == 0 {
		it.SetVal(val)
		c.model[key] = val
	}
	return nil
}

// validate checks the structural invariants, then the content in both
// directions against the model.
func (c *treeChecker) validate() error {
	merr := c.validator(c.tree)
	cmp := c.tree.Comparator()
	want := lo.Keys(c.model)
	slices.SortFunc(want, func(i, j int) int {
		return int(cmp(i, j))
	})
	got := make([]int, 0, len(want))
	c.tree.Foreach(func(_ int64, key, val int) bool {
		if val != c.model[key] {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %d holds %d, want %d", ErrModelMismatch, key, val, c.model[key]))
		}
		got = append(got, key)
		return true
	})
	if !slices.Equal(want, got) {
		merr = multierr.Append(merr, fmt.Errorf("%w: forward walk has %d keys, want %d", ErrModelMismatch, len(got), len(want)))
	}
	back := make([]int, 0, len(want))
	for it := c.tree.Last(); it.Valid(); it = it.Prev() {
		back = append(back, it.Key())
	}
	if !slices.Equal(want, lo.Reverse(back)) {
		merr = multierr.Append(merr, fmt.Errorf("%w: backward walk differs from the forward walk", ErrModelMismatch))
	}
	return merr
}

type heapChecker struct {
	rnd   *randv2.Rand
	seq   *queue.SliceSequence[int]
	pq    queue.PriorityQueue[int]
	less  queue.LessThan[int]
	model []int
	ops   map[string]int64
	total int64
	limit int
	bound int
}

func newHeapChecker(cfg StressConfig, rnd *randv2.Rand) *heapChecker {
	less := func(i, j int) bool {
		return i < j
	}
	if rnd.IntN(2) == 0 {
		less = func(i, j int) bool {
			return i > j
		}
	}
	// Start from a heapified random prefix.
	initial := lo.Times(rnd.IntN(cfg.KeySpace)+1, func(int) int {
		return rnd.IntN(cfg.KeySpace)
	})
	seq := queue.NewSliceSequence[int](len(initial))
	for _, v := range initial {
		seq.PushBack(v)
	}
	return &heapChecker{
		rnd:   rnd,
		seq:   seq,
		pq:    queue.NewPriorityQueueWithLess[int](less, queue.WithPriorityQueueSequence[int](seq)),
		less:  less,
		model: initial,
		ops:   make(map[string]int64, 2),
		limit: cfg.Operations,
		bound: cfg.KeySpace,
	}
}

func (c *heapChecker) operations() int64        { return c.total }
func (c *heapChecker) size() int64              { return c.pq.Len() }
func (c *heapChecker) counts() map[string]int64 { return c.ops }

// top is the element no other element of the model outranks.
func (c *heapChecker) top() int {
	best := c.model[0]
	for _, v := range c.model[1:] {
		if c.less(best, v) {
			best = v
		}
	}
	return best
}

func (c *heapChecker) run(ctx context.Context) error {
	if !queue.IsHeap[int](c.seq, c.less) {
		return fmt.Errorf("%w: heapified sequence breaks at %d", ErrHeapOrder, queue.IsHeapUntil[int](c.seq, c.less))
	}
	for i := 0; i < c.limit; i++ {
		if i&63 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c.total++
		if c.pq.Empty() || c.rnd.IntN(5) < 3 {
			c.ops[opPush]++
			v := c.rnd.IntN(c.bound)
			c.pq.Push(v)
			c.model = append(c.model, v)
		} else {
			c.ops[opPop]++
			want := c.top()
			if top := c.pq.Top(); top != want {
				return fmt.Errorf("%w: operation %d top %d, want %d", ErrHeapOrder, i, top, want)
			}
			got := c.pq.Pop()
			idx := slices.Index(c.model, got)
			c.model = slices.Delete(c.model, idx, idx+1)
		}
		if int64(len(c.model)) != c.pq.Len() {
			return fmt.Errorf("%w: length %d, want %d", ErrModelMismatch, c.pq.Len(), len(c.model))
		}
		if until := queue.IsHeapUntil[int](c.seq, c.less); until != c.seq.Len() {
			return fmt.Errorf("%w: operation %d breaks the heap at %d", ErrHeapOrder, i, until)
		}
	}
	return c.drain()
}

// drain pops everything, the sequence must come out sorted by less from
// the greatest down.
func (c *heapChecker) drain() error {
	want := slices.Clone(c.model)
	slices.SortFunc(want, func(i, j int) int {
		switch {
		case c.less(j, i):
			return -1
		case c.less(i, j):
			return 1
		default:
		}
		return 0
	})
	for idx := 0; !c.pq.Empty(); idx++ {
		if got := c.pq.Pop(); got != want[idx] {
			return fmt.Errorf("%w: drain position %d got %d, want %d", ErrHeapOrder, idx, got, want[idx])
		}
	}
	c.model = c.model[:0]
	return nil
}
