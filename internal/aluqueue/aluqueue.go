// Package aluqueue implements the ALU issue queue: a 32-entry ring of
// decoded ALU micro-ops that dispatches the first entry (in head-to-
// tail order) whose operands are ready and that hasn't already issued.
//
// The issued bit, not a pop, marks an entry as dispatched — the entry
// stays allocated until Commit retires its ROB twin, so a branch flush
// can reclaim both unissued and issued-but-uncommitted entries with a
// single clear.
package aluqueue

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/queue"
	"github.com/TheUnknownThing/R10K-CPU/internal/regready"
)

const Depth = 32

// OperandSource selects what feeds one ALU input.
type OperandSource uint8

const (
	FromRS1 OperandSource = iota
	FromRS2
	FromIMM
	FromPC
	FromLiteralFour
)

// Entry is one ALU issue-queue record from the data model.
type Entry struct {
	Valid bool

	Rs1Physical uint8
	Rs2Physical uint8
	RdPhysical  uint8

	ALUOp uint8
	Imm   int32

	Operand1From OperandSource
	Operand2From OperandSource

	PC uint32

	IsBranch    bool
	BranchFlip  bool
	IsJALR      bool

	ActiveListIdx int
	Issued        bool
}

func needsRS1(src OperandSource) bool { return src == FromRS1 }
func needsRS2(src OperandSource) bool { return src == FromRS2 }

// Needed reports whether this entry actually reads rs1 / rs2, derived
// from its two operand-source selectors (an operand sourced from IMM,
// PC, or a literal never waits on a physical register).
func (e Entry) Needed() (needRS1, needRS2 bool) {
	return needsRS1(e.Operand1From) || needsRS1(e.Operand2From),
		needsRS2(e.Operand1From) || needsRS2(e.Operand2From)
}

type Queue struct {
	q *queue.Queue[Entry]
}

func New() *Queue {
	return &Queue{q: queue.New[Entry](Depth)}
}

func (q *Queue) Full() bool  { return q.q.Full() }
func (q *Queue) Count() int  { return q.q.Count() }
func (q *Queue) NextPushIndex() int { return q.q.TailIndexForNextPush() }

// Cycle bundles decode's push and commit's pop/clear for one cycle.
type Cycle struct {
	Clear      bool
	PushEnable bool
	PushData   Entry
	PopEnable  bool
}

func (q *Queue) Apply(c Cycle) {
	q.q.Apply(queue.Intents[Entry]{
		Clear:      c.Clear,
		PushEnable: c.PushEnable,
		PushData:   c.PushData,
		PopEnable:  c.PopEnable,
	})
}

// MarkIssued sets the issued bit on the entry at absIndex, without
// touching head/tail/count.
func (q *Queue) MarkIssued(absIndex int) {
	e := q.q.At(absIndex)
	e.Issued = true
	q.q.WriteAt(absIndex, e)
}

// Select runs the first-ready-and-unissued selection: valid, not yet
// issued, and every register operand this entry actually reads is
// ready in the register-ready vector. The generic queue's balanced mux
// tree performs the head-to-tail first-match reduction.
func (q *Queue) Select(ready *regready.Vector) queue.Result[Entry] {
	return q.SelectWithGate(ready, nil)
}

// SelectWithGate is Select plus an extra per-entry predicate, used by
// the scheduler to additionally withhold a divide-family entry while
// the divider is busy — there being only one iterative divider core,
// unlike the fully pipelined multiplier.
func (q *Queue) SelectWithGate(ready *regready.Vector, gate func(Entry) bool) queue.Result[Entry] {
	return q.q.Choose(func(e Entry, _ int) bool {
		if !e.Valid || e.Issued {
			return false
		}
		if gate != nil && !gate(e) {
			return false
		}
		needRS1, needRS2 := e.Needed()
		rs1Ready := !needRS1 || ready.IsReady(int(e.Rs1Physical))
		rs2Ready := !needRS2 || ready.IsReady(int(e.Rs2Physical))
		return rs1Ready && rs2Ready
	})
}
