// Package freelist implements the pool of unallocated physical
// registers: a ring of depth 2*N_PHYS (so speculative allocations never
// lap the snapshot point), a snapshot of head taken when a branch
// enters the pipeline, and a restore-on-flush that rewinds head while
// leaving tail (and anything already pushed by committed retirees)
// alone.
package freelist

import "github.com/TheUnknownThing/R10K-CPU/internal/queue"

// FreeList is built directly on the generic circular queue; see
// internal/queue for the push/pop/clear/choose contract it inherits.
type FreeList struct {
	q              *queue.Queue[uint32]
	depth          int
	snapshotHead   int
	hasSnapshot    bool
}

// New seeds a free list for nPhys physical registers: IDs
// [1, nPhys) are free (physical register 0 is the permanent
// architectural zero register and never enters the ring); head=0,
// tail=nPhys-1, count=nPhys-1, ring depth=2*nPhys.
func New(nPhys int) *FreeList {
	depth := 2 * nPhys
	q := queue.New[uint32](depth)
	storage := make([]uint32, depth)
	for i := 1; i < nPhys; i++ {
		storage[i-1] = uint32(i)
	}
	q.Seed(storage, 0, nPhys-1, nPhys-1)
	return &FreeList{q: q, depth: depth}
}

func (f *FreeList) Full() bool  { return f.q.Full() }
func (f *FreeList) Empty() bool { return f.q.Empty() }
func (f *FreeList) Count() int  { return f.q.Count() }

// Peek returns the physical register that PopEnable would allocate
// this cycle, without consuming it — decode reads this to hand a
// physical destination to the rename descriptors it emits.
func (f *FreeList) Peek() uint32 {
	return f.q.At(f.q.HeadIndex())
}

// Cycle bundles one cycle's intents: PopEnable allocates one register
// (rename), PushEnable/PushData frees one (commit), MakeSnapshot saves
// the pre-pop head for a later flush, FlushRecover restores it.
type Cycle struct {
	PopEnable     bool
	PushEnable    bool
	PushData      uint32
	MakeSnapshot  bool
	FlushRecover  bool
}

// Apply runs one cycle in the required order: the snapshot (if
// requested) captures the current head before anything else moves;
// flush-recover (if asserted) repositions head to that snapshot and
// recomputes count from (tail - snapshot_head) mod depth *before*
// this cycle's push/pop are applied; then push/pop proceed normally.
func (f *FreeList) Apply(c Cycle) {
	if c.MakeSnapshot {
		f.snapshotHead = f.q.Head()
		f.hasSnapshot = true
	}

	if c.FlushRecover {
		if !f.hasSnapshot {
			panic("freelist: flush-recover with no snapshot taken")
		}
		tail := f.q.Tail()
		newCount := ((tail - f.snapshotHead) % f.depth + f.depth) % f.depth
		f.q.Seed(f.storageSnapshot(), f.snapshotHead, tail, newCount)
	}

	f.q.Apply(queue.Intents[uint32]{
		PushEnable: c.PushEnable,
		PushData:   c.PushData,
		PopEnable:  c.PopEnable,
	})
}

// storageSnapshot returns the live backing storage unchanged — flush
// never touches entries, only the head/tail/count pointers, since
// already-pushed (committed) frees must survive.
func (f *FreeList) storageSnapshot() []uint32 {
	raw := make([]uint32, f.depth)
	for i := 0; i < f.depth; i++ {
		raw[i] = f.q.At(i)
	}
	return raw
}
