// Package lsq implements the load/store queue and its downstream
// one-entry store buffer. Loads issue out of order, subject to a
// conservative ordering rule: a load may not issue past any earlier,
// still-unresolved store. Stores never issue from the LSQ directly —
// they drain into the store buffer when Commit retires them, and the
// scheduler dispatches the buffer to the LSU ahead of any load.
package lsq

import "github.com/TheUnknownThing/R10K-CPU/internal/queue"

const Depth = 32

// MemOpType is the width/signedness of a load or store.
type MemOpType uint8

const (
	Byte MemOpType = iota
	Half
	Word
	ByteUnsigned
	HalfUnsigned
)

// Entry is one LSQ record from the data model.
type Entry struct {
	Valid bool

	IsLoad  bool
	IsStore bool
	OpType  MemOpType

	Rs1Physical uint8 // address base
	Rs2Physical uint8 // store data
	RdPhysical  uint8 // load destination

	Imm int32 // address offset

	ActiveListIdx int
	Issued        bool
}

// StoreBufferEntry is the one-entry post-commit staging register.
type StoreBufferEntry struct {
	Valid       bool
	Rs1Physical uint8
	Rs2Physical uint8
	Imm         int32
	OpType      MemOpType
}

type Queue struct {
	q           *queue.Queue[Entry]
	storeBuffer StoreBufferEntry
}

func New() *Queue {
	return &Queue{q: queue.New[Entry](Depth)}
}

func (q *Queue) Full() bool         { return q.q.Full() }
func (q *Queue) Count() int         { return q.q.Count() }
func (q *Queue) NextPushIndex() int { return q.q.TailIndexForNextPush() }

type Cycle struct {
	Clear      bool
	PushEnable bool
	PushData   Entry
	PopEnable  bool

	// StoreBufferDrained is raised by the scheduler the same cycle it
	// dispatches the buffered store to the LSU; if no new store pushes
	// in this same cycle, the buffer goes invalid next cycle.
	StoreBufferDrained bool
}

// Apply resolves the LSQ ring's own push/pop/clear, then the store
// buffer: a commit-pop of a store head (PopEnable with the popped
// entry being a store) feeds the buffer; draining invalidates it
// unless a fresh store is pushed in on the very same cycle.
func (q *Queue) Apply(c Cycle) {
	var poppedStore *Entry
	if c.PopEnable && !c.Clear {
		head, _ := q.HeadEntry()
		if head.IsStore {
			poppedStore = &head
		}
	}

	q.q.Apply(queue.Intents[Entry]{
		Clear:      c.Clear,
		PushEnable: c.PushEnable,
		PushData:   c.PushData,
		PopEnable:  c.PopEnable,
	})

	if poppedStore != nil {
		q.storeBuffer = StoreBufferEntry{
			Valid:       true,
			Rs1Physical: poppedStore.Rs1Physical,
			Rs2Physical: poppedStore.Rs2Physical,
			Imm:         poppedStore.Imm,
			OpType:      poppedStore.OpType,
		}
		return
	}
	if c.StoreBufferDrained {
		q.storeBuffer.Valid = false
	}
}

func (q *Queue) HeadEntry() (Entry, int) {
	idx := q.q.HeadIndex()
	return q.q.At(idx), idx
}

func (q *Queue) StoreBuffer() StoreBufferEntry { return q.storeBuffer }

func (q *Queue) MarkIssued(absIndex int) {
	e := q.q.At(absIndex)
	e.Issued = true
	q.q.WriteAt(absIndex, e)
}

// AnyStoreBefore reports whether any valid store occupies a queue
// position strictly before distance d from head — the prefix-OR that
// keeps a load from issuing past an unresolved store. It is expressed
// here as a straightforward left-to-right scan; a log-depth
// prefix-OR network over the same D=32 positions computes the identical
// predicate in hardware.
func (q *Queue) anyStoreBefore(distance int) bool {
	for i := 0; i < distance; i++ {
		abs := (q.q.Head() + i) % q.q.Depth()
		e := q.q.At(abs)
		if i >= q.q.Count() {
			break
		}
		if e.Valid && e.IsStore {
			return true
		}
	}
	return false
}

// SelectLoad runs the load-issue selector: first valid, unissued,
// ready-address load with no earlier in-flight store.
func (q *Queue) SelectLoad(addrReady func(rs1Physical uint8) bool) queue.Result[Entry] {
	return q.q.Choose(func(e Entry, absIdx int) bool {
		if !e.Valid || e.Issued || !e.IsLoad {
			return false
		}
		distance := (absIdx - q.q.Head() + q.q.Depth()) % q.q.Depth()
		if q.anyStoreBefore(distance) {
			return false
		}
		return addrReady(e.Rs1Physical)
	})
}
