// Package core wires every structural unit into the single-cycle Step
// loop: commit's retirement decision runs against last cycle's state,
// the scheduler selects what dispatches this cycle, execution units
// produce their writebacks, the front end fetches and renames the next
// instruction, and every structure's per-cycle Apply runs last so the
// whole model behaves as one synchronous clock edge.
package core

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/activelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/bpred"
	"github.com/TheUnknownThing/R10K-CPU/internal/commit"
	"github.com/TheUnknownThing/R10K-CPU/internal/corelog"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
	"github.com/TheUnknownThing/R10K-CPU/internal/execute"
	"github.com/TheUnknownThing/R10K-CPU/internal/fetch"
	"github.com/TheUnknownThing/R10K-CPU/internal/freelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/lsq"
	"github.com/TheUnknownThing/R10K-CPU/internal/maptable"
	"github.com/TheUnknownThing/R10K-CPU/internal/regready"
	"github.com/TheUnknownThing/R10K-CPU/internal/scheduler"
	"github.com/TheUnknownThing/R10K-CPU/internal/specstate"
	"github.com/TheUnknownThing/R10K-CPU/internal/trace"

	"go.uber.org/zap"
)

// NumArchRegs and NumPhysRegs size the register files; the free list
// rides on 2*NumPhysRegs internally (see internal/freelist) so
// speculative allocation never laps a still-pending snapshot.
const (
	NumArchRegs = 32
	NumPhysRegs = 64
)

// Memory is the word-addressable store the core drives — the core
// holds one for instructions and one for data, since the reference
// design never shares a single SRAM between fetch and the LSU.
type Memory interface {
	ReadWord(wordAddr uint32) uint32
	WriteWord(wordAddr uint32, value uint32)
}

// Core owns every structural unit and advances them all exactly once
// per Step call.
type Core struct {
	fetcher   *fetch.Fetcher
	predictor bpred.Predictor

	mapTable *maptable.Table
	freeList *freelist.FreeList
	active   *activelist.List
	aluQ     *aluqueue.Queue
	lsQ      *lsq.Queue
	ready    *regready.Vector
	prf      *execute.PRF
	divider  *execute.Divider
	spec     *specstate.State

	iMem Memory
	dMem Memory

	cycle       uint64
	retireCount uint64
	halted      bool

	log *zap.Logger
}

// New constructs a core with its architectural state reset to the
// cold-boot mapping (identity map table, full free list, PC 0) and the
// given predictor and instruction/data memories wired in.
func New(iMem, dMem Memory, predictor bpred.Predictor) *Core {
	if predictor == nil {
		predictor = bpred.AlwaysTaken{}
	}
	return &Core{
		fetcher:   fetch.NewFetcher(),
		predictor: predictor,
		mapTable:  maptable.New(NumArchRegs),
		freeList:  freelist.New(NumPhysRegs),
		active:    activelist.New(),
		aluQ:      aluqueue.New(),
		lsQ:       lsq.New(),
		ready:     regready.New(NumPhysRegs),
		prf:       execute.NewPRF(),
		divider:   execute.NewDivider(),
		spec:      specstate.New(),
		iMem:      iMem,
		dMem:      dMem,
		log:       corelog.Stage("core"),
	}
}

// Cycle, RetireCount and Halted report the core's bookkeeping state —
// the fields the IPC-sweep tooling ultimately cares about.
func (c *Core) Cycle() uint64       { return c.cycle }
func (c *Core) RetireCount() uint64 { return c.retireCount }
func (c *Core) Halted() bool        { return c.halted }

// StepResult is what one Step call produced.
type StepResult struct {
	Committed bool
	Line      trace.CommitLine
	Halted    bool
}

// ArchRegs reconstructs the 32 architectural registers by reading the
// commit side of the map table, then the physical register file — the
// same indirection the trace line uses at every retirement.
func (c *Core) ArchRegs() [32]uint32 {
	var regs [32]uint32
	for i := 0; i < NumArchRegs; i++ {
		regs[i] = c.prf.Read(uint8(c.mapTable.ReadCommit(i)))
	}
	return regs
}

// Step advances the whole machine by one cycle. The ordering mirrors
// the reference model's signal graph: commit's decision and the
// scheduler's selection are both computed against the state left over
// from the previous cycle, dispatch and writeback run off of those
// decisions, fetch/rename run last (so a same-cycle flush can still
// suppress its push), and every structure's Apply call commits the
// whole cycle atomically at the end.
func (c *Core) Step() StepResult {
	if c.halted {
		return StepResult{Halted: true}
	}
	c.cycle++

	var head activelist.Entry
	if !c.active.Empty() {
		head, _ = c.active.HeadEntry()
	}
	dec := commit.Decide(head)
	flush := dec.Ready && dec.FlushRecover

	divBusyBefore := c.divider.Busy()
	sel := scheduler.Select(c.aluQ, c.lsQ, c.ready, divBusyBefore)

	c.dispatchALU(sel)
	c.dispatchDivStep(divBusyBefore, flush)
	c.dispatchLSU(sel)

	feedback := bpred.Feedback{}
	if dec.Ready && dec.OutBranch {
		feedback = bpred.Feedback{Valid: true, PC: head.PC, Taken: head.ActualBranch}
	}

	decodeSuccess, rr := c.tryDecode(dec.FlushFetcher, feedback)
	c.applyCycle(dec, sel, flush, decodeSuccess, rr)

	result := StepResult{}
	if dec.Ready && dec.PopActiveList && !flush {
		c.retireCount++
		result.Committed = true
		result.Line = trace.CommitLine{
			Cycle:       c.cycle,
			PC:          head.PC,
			ArchRegs:    c.ArchRegs(),
			RetireCount: c.retireCount,
		}
		if head.IsTerminator {
			c.halted = true
			result.Halted = true
		}
	}
	return result
}

// dispatchALU runs the op an ALU-queue entry was selected for:
// ordinary integer ops resolve immediately through execute.Execute;
// multiplies resolve immediately through the fully pipelined
// multiplier; divides go to the divider, which may resolve immediately
// (the divide-by-zero / overflow special cases) or prime the iterative
// core for dispatchDivStep to finish over subsequent cycles.
func (c *Core) dispatchALU(sel scheduler.Selection) {
	if !sel.DispatchALU {
		return
	}
	entry := sel.ALU.Value
	c.aluQ.MarkIssued(sel.ALU.AbsIndex)

	op := decode.ALUOp(entry.ALUOp)
	switch {
	case op.IsDiv():
		a, b := c.prf.Read(entry.Rs1Physical), c.prf.Read(entry.Rs2Physical)
		if result, immediate := c.divider.Dispatch(op, entry, a, b); immediate {
			c.writebackMulDiv(entry, result)
		}
	case op.IsMulDiv():
		a, b := c.prf.Read(entry.Rs1Physical), c.prf.Read(entry.Rs2Physical)
		result := execute.Multiply(op, a, b)
		c.writebackMulDiv(entry, result)
	default:
		r := execute.Execute(entry, c.prf)
		r.Apply(c.prf, c.ready, c.active)
	}
}

// dispatchDivStep advances an already-in-flight divide. It only runs
// when the divider was busy before this cycle's dispatch — a divide
// dispatched this very cycle has only been primed by Dispatch and takes
// its first internal step here on the following cycle. A flush
// aborts the in-flight divide outright: its result, had it finished,
// would have been discarded anyway.
func (c *Core) dispatchDivStep(divBusyBefore, flush bool) {
	if !divBusyBefore {
		return
	}
	if flush {
		c.divider.Abort()
		return
	}
	entry := c.divider.Entry()
	if result, done := c.divider.Step(); done {
		c.writebackMulDiv(entry, result)
	}
}

func (c *Core) writebackMulDiv(entry aluqueue.Entry, value uint32) {
	var writes []regready.Write
	if entry.RdPhysical != 0 {
		c.prf.Write(entry.RdPhysical, value)
		writes = append(writes, regready.Write{Enable: true, Idx: int(entry.RdPhysical), Ready: true})
	}
	c.ready.Apply(writes, false)
	c.active.ApplyOverlay(activelist.SetReadyOverlay{Idx: entry.ActiveListIdx})
}

func (c *Core) dispatchLSU(sel scheduler.Selection) {
	if sel.DispatchStore {
		sb := sel.StoreBuffer
		rs1 := c.prf.Read(sb.Rs1Physical)
		rs2 := c.prf.Read(sb.Rs2Physical)
		execute.DispatchStore(sb, rs1, rs2, c.dMem)
	}
	if sel.DispatchLoad {
		entry := sel.LSQ.Value
		c.lsQ.MarkIssued(sel.LSQ.AbsIndex)
		rs1 := c.prf.Read(entry.Rs1Physical)
		res := execute.DispatchLoad(entry, rs1, c.dMem)
		if res.DestPhysical != 0 {
			c.prf.Write(res.DestPhysical, res.Value)
			c.ready.Apply([]regready.Write{{Enable: true, Idx: int(res.DestPhysical), Ready: true}}, false)
		}
		c.active.ApplyOverlay(activelist.SetReadyOverlay{Idx: res.ActiveListIdx})
	}
}

// tryDecode attempts to fetch and rename one instruction this cycle.
// Decode is held off — a structural stall, same as a full ROB/ALU
// queue/LSQ — whenever a branch is already speculating: the free list
// carries exactly one snapshot register and the speculation state is a
// single bit, so a second unresolved branch entering the pipeline
// would overwrite the first branch's recovery point before it could
// ever be used. See DESIGN.md's single-in-flight-branch entry.
func (c *Core) tryDecode(flushReq fetch.FlushRequest, feedback bpred.Feedback) (decodeSuccess bool, rr fetch.RenameResult) {
	pcToFetch := c.fetcher.PC()
	if c.fetcher.Stalled() || flushReq.Enable {
		c.fetcher.Advance(fetch.StepInput{}, flushReq)
		return false, fetch.RenameResult{}
	}

	structurallyFull := c.active.Full() || c.aluQ.Full() || c.lsQ.Full() || c.spec.Speculating()
	if structurallyFull {
		c.fetcher.Advance(fetch.StepInput{}, flushReq)
		return false, fetch.RenameResult{}
	}

	predictBranch := c.predictor.Predict(pcToFetch, feedback)
	word := c.iMem.ReadWord(pcToFetch)
	result, err := fetch.RenameDecode(pcToFetch, word, c.mapTable, c.freeList, c.active.NextPushIndex(), predictBranch)
	if err != nil {
		c.log.Warn("decode fault", zap.Uint32("pc", pcToFetch), zap.Error(err))
		c.fetcher.Advance(fetch.StepInput{Stall: true}, flushReq)
		return false, fetch.RenameResult{}
	}

	c.fetcher.Advance(fetch.StepInput{
		DecodeSuccess: true,
		IsBranch:      result.ActiveListEntry.IsBranch,
		PredictBranch: predictBranch,
		BranchOffset:  uint32(result.ActiveListEntry.Imm),
	}, flushReq)
	return true, result
}

// applyCycle runs every structure's own Apply exactly once, completing
// the cycle: the map table's commit write, the flush override on
// free list/register-ready/active list/ALU queue/LSQ, and this
// cycle's rename push (suppressed by the same flush).
func (c *Core) applyCycle(dec commit.Decision, sel scheduler.Selection, flush, decodeSuccess bool, rr fetch.RenameResult) {
	push := decodeSuccess && !flush

	c.active.Apply(activelist.Cycle{
		Clear:      flush,
		PushEnable: push,
		PushData:   rr.ActiveListEntry,
		PopEnable:  dec.Ready && dec.PopActiveList,
	})

	c.aluQ.Apply(aluqueue.Cycle{
		Clear:      flush,
		PushEnable: push && rr.PushALU,
		PushData:   rr.ALUEntry,
		PopEnable:  dec.Ready && dec.PopALU,
	})

	c.lsQ.Apply(lsq.Cycle{
		Clear:              flush,
		PushEnable:         push && rr.PushLSQ,
		PushData:           rr.LSQEntry,
		PopEnable:          dec.Ready && dec.PopLSQ,
		StoreBufferDrained: sel.DispatchStore,
	})

	c.freeList.Apply(freelist.Cycle{
		PopEnable:    push && rr.FreeListPop,
		PushEnable:   dec.Ready && dec.PushFreeList,
		PushData:     uint32(dec.FreeOldPhysical),
		MakeSnapshot: push && rr.ActiveListEntry.IsBranch,
		FlushRecover: flush,
	})

	renameWrite := maptable.Write{}
	if push {
		renameWrite = rr.MapWrite
	}
	c.mapTable.Apply(renameWrite, dec.CommitWrite, flush)

	// A freshly renamed destination is not ready until its producer
	// writes back.
	var readyWrites []regready.Write
	if push && rr.FreeListPop {
		readyWrites = append(readyWrites, regready.Write{Enable: true, Idx: int(rr.DestPhysical), Ready: false})
	}
	c.ready.Apply(readyWrites, flush)

	c.spec.Advance(push && rr.ActiveListEntry.IsBranch, dec.Ready && dec.OutBranch)
}
