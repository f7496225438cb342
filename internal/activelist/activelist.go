// Package activelist implements the reorder buffer: a 32-entry ring of
// in-flight instructions, pushed at decode and popped at commit once
// the head entry is ready. Any execution unit may update an entry's
// readiness and branch-resolution fields in place by its carried index.
package activelist

import "github.com/TheUnknownThing/R10K-CPU/internal/queue"

const Depth = 32

// Entry mirrors the ROB record from the data model: enough to both
// drive commit's retirement decision and let the commit engine detect
// and recover from a branch misprediction.
type Entry struct {
	Valid bool
	PC    uint32

	DestLogical      uint8
	DestNewPhysical  uint8
	DestOldPhysical  uint8
	HasDest          bool

	Ready bool

	IsBranch    bool
	IsALU       bool
	IsJump      bool
	IsJALR      bool
	IsTerminator bool

	PredictBranch bool
	ActualBranch  bool

	// Imm doubles as branch target / jalr target / jump delta,
	// per the data model; ALU/LSU may overlay it with a resolved
	// jalr target before commit consumes it.
	Imm int32
}

type List struct {
	q *queue.Queue[Entry]
}

func New() *List {
	return &List{q: queue.New[Entry](Depth)}
}

func (l *List) Full() bool  { return l.q.Full() }
func (l *List) Empty() bool { return l.q.Empty() }
func (l *List) Count() int  { return l.q.Count() }

// HeadEntry reads the ROB head without popping it — commit consults
// this every cycle to decide whether a retire is possible.
func (l *List) HeadEntry() (Entry, int) {
	idx := l.q.HeadIndex()
	return l.q.At(idx), idx
}

// NextPushIndex is the absolute slot decode's pending instruction will
// land in, handed out to the ALU queue / LSQ entries as their
// "active_list_idx" back-pointer before the push actually happens.
func (l *List) NextPushIndex() int { return l.q.TailIndexForNextPush() }

// SetReadyOverlay is set_ready(idx, ...): read the entry at idx,
// overlay the fields a producer resolved, write it back. Two producers
// never target the same entry in the same cycle (each instruction has
// exactly one writer for its ROB twin).
type SetReadyOverlay struct {
	Idx          int
	ActualBranch bool
	HasActual    bool
	Imm          int32
	HasImm       bool
}

func (l *List) ApplyOverlay(o SetReadyOverlay) {
	e := l.q.At(o.Idx)
	e.Ready = true
	if o.HasActual {
		e.ActualBranch = o.ActualBranch
	}
	if o.HasImm {
		e.Imm = o.Imm
	}
	l.q.WriteAt(o.Idx, e)
}

// Cycle bundles decode's push and commit's pop/clear for one cycle.
type Cycle struct {
	Clear      bool
	PushEnable bool
	PushData   Entry
	PopEnable  bool
}

func (l *List) Apply(c Cycle) {
	l.q.Apply(queue.Intents[Entry]{
		Clear:      c.Clear,
		PushEnable: c.PushEnable,
		PushData:   c.PushData,
		PopEnable:  c.PopEnable,
	})
}
