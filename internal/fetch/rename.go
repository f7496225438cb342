// rename.go turns a decoded instruction into the push descriptors
// decode hands to every downstream structure in the same cycle:
// active list (always), ALU queue (ALU family) xor LSQ (load/store
// family), free list (pop, if the instruction has a destination), and
// the map table's rename write.
package fetch

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/activelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
	"github.com/TheUnknownThing/R10K-CPU/internal/freelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/lsq"
	"github.com/TheUnknownThing/R10K-CPU/internal/maptable"
)

// RenameResult bundles everything decode produces for one instruction:
// exactly one of PushALU/PushLSQ is set (an instruction is either ALU
// family or load/store family, never both).
type RenameResult struct {
	ActiveListEntry activelist.Entry

	PushALU  bool
	ALUEntry aluqueue.Entry

	PushLSQ  bool
	LSQEntry lsq.Entry

	FreeListPop  bool
	MapWrite     maptable.Write
	DestPhysical uint8
}

func toALUOperandSource(s decode.OperandSource) aluqueue.OperandSource {
	return aluqueue.OperandSource(s)
}

func toMemOpType(m decode.MemoryOpType) lsq.MemOpType {
	return lsq.MemOpType(m)
}

// RenameDecode decodes word, reads the speculative map table for
// rs1/rs2, allocates a new physical destination from the free list
// (without popping it — the caller applies FreeListPop alongside its
// own stall/flush gating) and returns the full set of push
// descriptors. activeListIdx is the slot this instruction will land in
// (from ActiveList.NextPushIndex()), threaded through to the ALU/LSQ
// entries as their ROB back-pointer.
func RenameDecode(pc uint32, word uint32, mt *maptable.Table, fl *freelist.FreeList, activeListIdx int, predictBranch bool) (RenameResult, error) {
	args, _, err := decode.Decode(word)
	if err != nil {
		return RenameResult{}, err
	}

	rd, rs1, rs2 := decode.Fields(word)

	logicalRd := uint8(0)
	if args.HasRd {
		logicalRd = uint8(rd)
	}
	destValid := args.HasRd && logicalRd != 0

	oldPhysicalRd := uint8(0)
	if destValid {
		oldPhysicalRd = uint8(mt.ReadSpec(int(logicalRd)))
	}
	physicalRd := uint8(0)
	if destValid {
		physicalRd = uint8(fl.Peek())
	}

	physicalRs1 := uint8(mt.ReadSpec(int(rs1)))
	physicalRs2 := uint8(mt.ReadSpec(int(rs2)))

	activeEntry := activelist.Entry{
		Valid:           true,
		PC:              pc,
		DestLogical:     logicalRd,
		DestNewPhysical: physicalRd,
		DestOldPhysical: oldPhysicalRd,
		HasDest:         destValid,
		IsBranch:        args.IsBranch,
		IsALU:           args.IsALU,
		IsJump:          args.IsJump,
		IsJALR:          args.IsJalr,
		IsTerminator:    args.IsTerminator,
		PredictBranch:   predictBranch && args.IsBranch,
		Imm:             args.Imm,
	}

	result := RenameResult{
		ActiveListEntry: activeEntry,
		FreeListPop:     destValid,
		DestPhysical:    physicalRd,
		MapWrite: maptable.Write{
			Enable:   destValid,
			Logical:  int(logicalRd),
			Physical: uint64(physicalRd),
		},
	}

	if args.IsALU {
		result.PushALU = true
		result.ALUEntry = aluqueue.Entry{
			Valid:         true,
			Rs1Physical:   physicalRs1,
			Rs2Physical:   physicalRs2,
			RdPhysical:    physicalRd,
			ALUOp:         uint8(args.ALUOp),
			Imm:           args.Imm,
			Operand1From:  toALUOperandSource(args.Operand1From),
			Operand2From:  toALUOperandSource(args.Operand2From),
			PC:            pc,
			IsBranch:      args.IsBranch,
			BranchFlip:    args.BranchFlip,
			IsJALR:        args.IsJalr,
			ActiveListIdx: activeListIdx,
		}
	} else {
		result.PushLSQ = true
		result.LSQEntry = lsq.Entry{
			Valid:         true,
			IsLoad:        args.IsLoad,
			IsStore:       args.IsStore,
			OpType:        toMemOpType(args.MemOp),
			Rs1Physical:   physicalRs1,
			Rs2Physical:   physicalRs2,
			RdPhysical:    physicalRd,
			Imm:           args.Imm,
			ActiveListIdx: activeListIdx,
		}
	}

	return result, nil
}
