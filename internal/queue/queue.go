// Package queue implements the one primitive almost every other
// structural component in this core is built from: a fixed-depth ring
// buffer with one push and one pop per cycle, free-form in-place
// modification by absolute index, and a combinational "choose" that
// picks the first (head-to-tail) slot matching a predicate.
//
// The selection network is not a sequential scan. It is built the way
// the hardware would be: a balanced binary tree of two-input muxes,
// each preferring its left (earlier) input, padded with always-invalid
// leaves out to the next power of two. A software scan and this tree
// return the same answer, but the tree is the shape we're modeling —
// log2(depth) mux levels instead of depth-1 chained comparisons.
package queue

// Intents bundles the control signals a caller may raise in a single
// cycle. Push and pop may both be raised in the same cycle; Clear
// takes priority over both and is defined even when raised alongside
// a full-queue push (the entry is dropped and the ring resets).
type Intents[T any] struct {
	Clear      bool
	PushEnable bool
	PushData   T
	PopEnable  bool
}

// Queue is a generic circular buffer of fixed depth D.
type Queue[T any] struct {
	depth   int
	storage []T
	head    int
	tail    int
	count   int
}

// New allocates an empty queue of the given depth.
func New[T any](depth int) *Queue[T] {
	if depth <= 0 {
		panic("queue: depth must be positive")
	}
	return &Queue[T]{depth: depth, storage: make([]T, depth)}
}

func (q *Queue[T]) Depth() int { return q.depth }
func (q *Queue[T]) Count() int { return q.count }
func (q *Queue[T]) Head() int  { return q.head }
func (q *Queue[T]) Tail() int  { return q.tail }
func (q *Queue[T]) Full() bool { return q.count == q.depth }
func (q *Queue[T]) Empty() bool { return q.count == 0 }

// Seed overwrites the queue's contents and pointers directly. Used at
// reset to preime structures like the free list that start non-empty.
func (q *Queue[T]) Seed(storage []T, head, tail, count int) {
	if len(storage) != q.depth {
		panic("queue: seed storage length mismatch")
	}
	copy(q.storage, storage)
	q.head, q.tail, q.count = head, tail, count
}

// At reads the slot at an absolute storage index (not offset from
// head) — the index space ALU-queue/LSQ/ROB entries carry around as
// their "active list index" / "alu queue index" handle.
func (q *Queue[T]) At(absIndex int) T {
	return q.storage[absIndex%q.depth]
}

// WriteAt overwrites a slot in place, independent of push/pop — the
// mechanism set_ready-style in-place updates use.
func (q *Queue[T]) WriteAt(absIndex int, v T) {
	q.storage[absIndex%q.depth] = v
}

// HeadIndex returns the absolute storage index currently at the head,
// valid only when the queue is non-empty.
func (q *Queue[T]) HeadIndex() int { return q.head }

// TailIndexForNextPush returns the absolute storage index the next
// push will land in — what decode hands out as an entry's ROB/queue
// index before the push intent is applied.
func (q *Queue[T]) TailIndexForNextPush() int { return q.tail }

// Apply resolves one cycle's worth of control intents. Preconditions
// (push while full, pop while empty) are the caller's responsibility;
// violating them without Clear set is undefined and this implementation
// panics rather than silently corrupting state.
func (q *Queue[T]) Apply(in Intents[T]) {
	if in.Clear {
		q.head, q.tail, q.count = 0, 0, 0
		return
	}
	if in.PushEnable {
		if q.count == q.depth {
			panic("queue: push while full")
		}
		q.storage[q.tail] = in.PushData
		q.tail = (q.tail + 1) % q.depth
		q.count++
	}
	if in.PopEnable {
		if q.count == 0 {
			panic("queue: pop while empty")
		}
		q.head = (q.head + 1) % q.depth
		q.count--
	}
}

type candidate struct {
	valid int // index+1 of the valid slot, 0 if this node is invalid; 0-based disambiguated by validFlag
	idx   int
	ok    bool
}

// Result is what Choose returns about the winning slot, if any.
type Result[T any] struct {
	Value    T
	AbsIndex int
	Distance int // distance from head, 0 = head itself
	Valid    bool
}

// Choose runs the balanced-mux-tree first-match selector: for each
// slot i in [0,depth) in head-to-tail order, it is a candidate if
// i < count and selector(storage[pointer(i)], pointer(i)) holds. The
// tree reduces pairs preferring the left (earlier) candidate at every
// level, after padding the candidate list to the next power of two
// with always-invalid entries.
func (q *Queue[T]) Choose(selector func(v T, absIndex int) bool) Result[T] {
	n := q.depth
	padded := nextPow2(n)
	nodes := make([]candidate, padded)
	for i := 0; i < padded; i++ {
		if i >= n {
			nodes[i] = candidate{ok: false}
			continue
		}
		hasEntry := i < q.count
		ptr := (q.head + i) % q.depth
		if !hasEntry {
			nodes[i] = candidate{ok: false, idx: i}
			continue
		}
		if selector(q.storage[ptr], ptr) {
			nodes[i] = candidate{ok: true, idx: i}
		} else {
			nodes[i] = candidate{ok: false, idx: i}
		}
	}

	for len(nodes) > 1 {
		next := make([]candidate, len(nodes)/2)
		for i := 0; i < len(next); i++ {
			left, right := nodes[2*i], nodes[2*i+1]
			if left.ok {
				next[i] = left
			} else {
				next[i] = right
			}
		}
		nodes = next
	}

	winner := nodes[0]
	if !winner.ok {
		var zero T
		return Result[T]{Valid: false, Value: zero}
	}
	ptr := (q.head + winner.idx) % q.depth
	return Result[T]{
		Value:    q.storage[ptr],
		AbsIndex: ptr,
		Distance: winner.idx,
		Valid:    true,
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p == 0 {
		p = 1
	}
	return p
}
