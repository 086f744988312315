package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator
// Assume i is the new key.
//  1. i == j (return 0), the same key.
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
type Comparator[K any] func(i, j K) int64

func NaturalComparator[K OrderedKey]() Comparator[K] {
	return func(i, j K) int64 {
		if i == j {
			return 0
		} else if i < j {
			return -1
		}
		return 1
	}
}

func ReverseComparator[K any](cmp Comparator[K]) Comparator[K] {
	if cmp == nil {
		panic( /* debug assertion */ "[infra] reverse a nil comparator")
	}
	return func(i, j K) int64 {
		return cmp(j, i)
	}
}

// LessComparator converts a strict weak order predicate into a three-way
// comparator. Keys that are not less than each other in both directions
// are treated as the same key.
func LessComparator[K any](less func(i, j K) bool) Comparator[K] {
	if less == nil {
		panic( /* debug assertion */ "[infra] nil less predicate")
	}
	return func(i, j K) int64 {
		if less(i, j) {
			return -1
		} else if less(j, i) {
			return 1
		}
		return 0
	}
}
