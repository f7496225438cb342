// Package commit implements retirement: inspect the ROB head, decide
// whether it can graduate this cycle, and compute every side effect
// that follows — freeing its old physical register, writing the
// architectural map, popping the producing queue, and (on a
// misprediction or an unconditional jump) flushing the front end.
package commit

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/activelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/fetch"
	"github.com/TheUnknownThing/R10K-CPU/internal/maptable"
)

// Decision is everything one cycle's retirement attempt produces. Ready
// is false when the ROB is empty or its head hasn't resolved yet —
// every other field is meaningless when Ready is false.
type Decision struct {
	Ready bool

	Mispredict   bool
	FlushRecover bool

	PopActiveList bool
	PopALU        bool
	PopLSQ        bool

	PushFreeList    bool
	FreeOldPhysical uint8

	CommitWrite maptable.Write

	FlushFetcher fetch.FlushRequest
	OutBranch    bool
}

// Decide runs the combinational retirement logic against the ROB head
// entry, exactly mirroring the reference model's signal equations.
func Decide(head activelist.Entry) Decision {
	if !head.Ready {
		return Decision{}
	}

	mispredict := head.IsBranch && head.PredictBranch != head.ActualBranch
	flushRecover := mispredict

	commitWriteEnable := head.HasDest
	commitLogical := uint8(0)
	commitPhysical := uint8(0)
	if commitWriteEnable {
		commitLogical = head.DestLogical
		commitPhysical = head.DestNewPhysical
	}

	flushFetcher := mispredict || head.IsJump

	flushPC := head.PC
	if head.IsJALR {
		flushPC = 0
	}

	flushOffset := uint32(int32(head.Imm))
	if head.IsJALR {
		flushOffset = uint32(head.Imm)
	} else if mispredict && !head.ActualBranch {
		flushOffset = 4
	}

	freeOldPhysical := uint8(0)
	if commitWriteEnable {
		freeOldPhysical = head.DestOldPhysical
	}

	return Decision{
		Ready:        true,
		Mispredict:   mispredict,
		FlushRecover: flushRecover,

		PopActiveList: true,
		PopALU:        head.IsALU,
		PopLSQ:        !head.IsALU,

		PushFreeList:    head.HasDest,
		FreeOldPhysical: freeOldPhysical,

		CommitWrite: maptable.Write{
			Enable:   commitWriteEnable,
			Logical:  int(commitLogical),
			Physical: uint64(commitPhysical),
		},

		FlushFetcher: fetch.FlushRequest{
			Enable: flushFetcher,
			PC:     flushPC,
			Offset: flushOffset,
		},
		OutBranch: head.IsBranch,
	}
}
