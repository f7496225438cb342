// ALU: single-cycle integer execution. A switch on the op code
// computes only the selected op's result, which is the one that
// reaches the register file.
package execute

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/activelist"
	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
	"github.com/TheUnknownThing/R10K-CPU/internal/regready"
)

// ALUResult is what dispatching an ALU entry produces: a PRF write
// intent, a register-ready mark, and the ROB overlay the ALU always
// emits (actual_branch only matters when the entry is a branch; the
// jalr-target imm override only matters when the entry is a jalr).
type ALUResult struct {
	WriteReg   bool
	RdPhysical uint8
	Value      uint32

	ActiveListIdx int
	ActualBranch  bool
	JalrTarget    uint32
	IsJalr        bool
}

func selectOperand(src aluqueue.OperandSource, entry aluqueue.Entry, prf *PRF) uint32 {
	switch src {
	case aluqueue.FromRS1:
		return prf.Read(entry.Rs1Physical)
	case aluqueue.FromRS2:
		return prf.Read(entry.Rs2Physical)
	case aluqueue.FromIMM:
		return uint32(entry.Imm)
	case aluqueue.FromPC:
		return entry.PC
	case aluqueue.FromLiteralFour:
		return 4
	default:
		return 0
	}
}

// Execute runs one ALU dispatch to completion (this model's ALU is
// single-cycle, so Execute both computes and produces the writeback
// intents for the same call).
func Execute(entry aluqueue.Entry, prf *PRF) ALUResult {
	opA := selectOperand(entry.Operand1From, entry, prf)
	opB := selectOperand(entry.Operand2From, entry, prf)

	opAInt := int32(opA)
	opBInt := int32(opB)
	shamt := opB & 0x1F

	var result uint32
	switch decode.ALUOp(entry.ALUOp) {
	case decode.OpADD:
		result, _ = add32(opA, opB, false)
	case decode.OpSUB:
		result, _ = add32(opA, opB, true)
	case decode.OpSLL:
		result = opA << shamt
	case decode.OpSRL:
		result = opA >> shamt
	case decode.OpSRA:
		result = uint32(opAInt >> shamt)
	case decode.OpAND:
		result = opA & opB
	case decode.OpOR:
		result = opA | opB
	case decode.OpXOR:
		result = opA ^ opB
	case decode.OpSLT:
		if opAInt < opBInt {
			result = 1
		}
	case decode.OpSLTU:
		if opA < opB {
			result = 1
		}
	}

	pcPlusFour := entry.PC + 4
	jalrTarget := uint32(int32(prf.Read(entry.Rs1Physical)) + entry.Imm)

	rdValue := result
	if entry.IsJALR {
		rdValue = pcPlusFour
	}

	nonZero := result != 0
	branchCore := nonZero
	if entry.BranchFlip {
		branchCore = !nonZero
	}
	branchTaken := entry.IsBranch && branchCore

	return ALUResult{
		WriteReg:      entry.RdPhysical != 0,
		RdPhysical:    entry.RdPhysical,
		Value:         rdValue,
		ActiveListIdx: entry.ActiveListIdx,
		ActualBranch:  branchTaken,
		JalrTarget:    jalrTarget,
		IsJalr:        entry.IsJALR,
	}
}

// Apply writes the PRF, marks the destination ready, and overlays the
// ROB entry — the three side effects a dispatched ALU op always has.
func (r ALUResult) Apply(prf *PRF, ready *regready.Vector, rob *activelist.List) {
	var readyWrites []regready.Write
	if r.WriteReg {
		prf.Write(r.RdPhysical, r.Value)
		readyWrites = append(readyWrites, regready.Write{Enable: true, Idx: int(r.RdPhysical), Ready: true})
	}
	ready.Apply(readyWrites, false)

	rob.ApplyOverlay(activelist.SetReadyOverlay{
		Idx:          r.ActiveListIdx,
		HasActual:    true,
		ActualBranch: r.ActualBranch,
		HasImm:       r.IsJalr,
		Imm:          int32(r.JalrTarget),
	})
}
