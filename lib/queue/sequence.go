package queue

var (
	_ Sequence[int] = (*SliceSequence[int])(nil)
)

// SliceSequence is a slice backed sequence.
type SliceSequence[E any] []E

func NewSliceSequence[E any](capacity int) *SliceSequence[E] {
	if capacity < 0 {
		capacity = 0
	}
	seq := make(SliceSequence[E], 0, capacity)
	return &seq
}

func (seq *SliceSequence[E]) Len() int      { return len(*seq) }
func (seq *SliceSequence[E]) At(i int) E    { return (*seq)[i] }
func (seq *SliceSequence[E]) Swap(i, j int) { (*seq)[i], (*seq)[j] = (*seq)[j], (*seq)[i] }

func (seq *SliceSequence[E]) PushBack(e E) {
	*seq = append(*seq, e)
}

func (seq *SliceSequence[E]) PopBack() E {
	prev := *seq
	n := len(prev)
	if n <= 0 {
		panic( /* debug assertion */ "[queue] pop back from empty sequence")
	}
	e := prev[n-1]
	prev[n-1] = *new(E) // release the reference
	*seq = prev[:n-1]
	return e
}

