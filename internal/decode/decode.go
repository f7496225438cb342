// Package decode implements the RV32IM instruction-decode table: a
// sequential match-and-overlay over R/I/S/B/U/J instruction shapes
// that produces the rename/execute bundle the rest of the pipeline
// consumes. Each entry matches on opcode/funct3/funct7; entries are
// tried in table order and a match overlays only the fields it cares
// about, so two entries can never partially collide because the
// opcode/funct3/funct7 triple is unique per entry in this table.
package decode

import "fmt"

// ALUOp is the operation code the ALU (or Mul-Div) executes. The
// M-extension codes are included here even though the data model only
// discusses "multiply/divide family" abstractly — the scheduler
// dispatches on exactly this distinction.
type ALUOp uint8

const (
	OpADD ALUOp = iota
	OpSUB
	OpXOR
	OpOR
	OpAND
	OpSLL
	OpSRL
	OpSRA
	OpSLT
	OpSLTU
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
)

// IsMulDiv reports whether op belongs to the multiply/divide family —
// the scheduler routes these to Mul-Div instead of the integer ALU.
func (op ALUOp) IsMulDiv() bool { return op >= OpMUL }

// IsDiv reports whether op is a divider op, the ones gated by div_busy.
func (op ALUOp) IsDiv() bool { return op == OpDIV || op == OpDIVU || op == OpREM || op == OpREMU }

// OperandSource selects what feeds one ALU input; mirrors
// internal/aluqueue.OperandSource one-for-one (decode produces it,
// aluqueue stores it) to avoid a needless import cycle concern while
// keeping the two vocabularies distinct packages can evolve
// independently.
type OperandSource uint8

const (
	FromRS1 OperandSource = iota
	FromRS2
	FromIMM
	FromPC
	FromLiteralFour
)

// MemoryOpType mirrors internal/lsq.MemOpType for the same reason.
type MemoryOpType uint8

const (
	MemByte MemoryOpType = iota
	MemHalf
	MemWord
	MemByteUnsigned
	MemHalfUnsigned
)

// Args is the decoded rename/execute bundle, the single output
// contract this package exists to compute.
type Args struct {
	HasRd, HasRs1, HasRs2 bool
	Imm                   int32

	IsALU        bool
	ALUOp        ALUOp
	Operand1From OperandSource
	Operand2From OperandSource

	IsLoad  bool
	IsStore bool
	MemOp   MemoryOpType

	IsBranch     bool
	BranchFlip   bool
	IsTerminator bool
	IsJump       bool
	IsJalr       bool
}

func sext(v uint32, bits int) int32 {
	shift := uint(32 - bits)
	return int32(v<<shift) >> shift
}

func bits(word uint32, hi, lo int) uint32 {
	return (word >> uint(lo)) & ((1 << uint(hi-lo+1)) - 1)
}

type entry struct {
	name        string
	opcode      uint32
	funct3      int // -1 = don't care
	funct7      int // -1 = don't care
	apply       func(word uint32, a *Args)
}

func (e entry) matches(word uint32) bool {
	if bits(word, 6, 0) != e.opcode {
		return false
	}
	if e.funct3 >= 0 && bits(word, 14, 12) != uint32(e.funct3) {
		return false
	}
	if e.funct7 >= 0 && bits(word, 31, 25) != uint32(e.funct7) {
		return false
	}
	return true
}

func rFields(word uint32) (rd, rs1, rs2 uint32) {
	return bits(word, 11, 7), bits(word, 19, 15), bits(word, 24, 20)
}

func iImm(word uint32) int32 { return sext(bits(word, 31, 20), 12) }

func sImm(word uint32) int32 {
	v := (bits(word, 31, 25) << 5) | bits(word, 11, 7)
	return sext(v, 12)
}

func bImm(word uint32) int32 {
	v := (bits(word, 31, 31) << 12) | (bits(word, 7, 7) << 11) |
		(bits(word, 30, 25) << 5) | (bits(word, 11, 8) << 1)
	return sext(v, 13)
}

func uImm(word uint32) int32 { return int32(bits(word, 31, 12) << 12) }

func jImm(word uint32) int32 {
	v := (bits(word, 31, 31) << 20) | (bits(word, 19, 12) << 12) |
		(bits(word, 20, 20) << 11) | (bits(word, 30, 21) << 1)
	return sext(v, 21)
}

func rType(name string, op ALUOp, funct3, funct7 int) entry {
	return entry{name: name, opcode: 0b0110011, funct3: funct3, funct7: funct7,
		apply: func(word uint32, a *Args) {
			a.HasRd, a.HasRs1, a.HasRs2 = true, true, true
			a.IsALU = true
			a.ALUOp = op
			a.Operand1From, a.Operand2From = FromRS1, FromRS2
		}}
}

func iTypeALU(name string, op ALUOp, funct3 int, funct7 int) entry {
	return entry{name: name, opcode: 0b0010011, funct3: funct3, funct7: funct7,
		apply: func(word uint32, a *Args) {
			a.HasRd, a.HasRs1 = true, true
			a.IsALU = true
			a.ALUOp = op
			a.Operand1From, a.Operand2From = FromRS1, FromIMM
			a.Imm = iImm(word)
		}}
}

func loadType(name string, funct3 int, op MemoryOpType) entry {
	return entry{name: name, opcode: 0b0000011, funct3: funct3, funct7: -1,
		apply: func(word uint32, a *Args) {
			a.HasRd, a.HasRs1 = true, true
			a.IsLoad = true
			a.MemOp = op
			a.Imm = iImm(word)
			a.ALUOp = OpADD
			a.Operand1From, a.Operand2From = FromRS1, FromIMM
		}}
}

func storeType(name string, funct3 int, op MemoryOpType) entry {
	return entry{name: name, opcode: 0b0100011, funct3: funct3, funct7: -1,
		apply: func(word uint32, a *Args) {
			a.HasRs1, a.HasRs2 = true, true
			a.IsStore = true
			a.MemOp = op
			a.Imm = sImm(word)
			a.ALUOp = OpADD
			a.Operand1From, a.Operand2From = FromRS1, FromIMM
		}}
}

func branchType(name string, op ALUOp, funct3 int, flip bool) entry {
	return entry{name: name, opcode: 0b1100011, funct3: funct3, funct7: -1,
		apply: func(word uint32, a *Args) {
			a.HasRs1, a.HasRs2 = true, true
			a.IsALU = true
			a.IsBranch = true
			a.BranchFlip = flip
			a.ALUOp = op
			a.Operand1From, a.Operand2From = FromRS1, FromRS2
			a.Imm = bImm(word)
		}}
}

var table = []entry{
	rType("ADD", OpADD, 0x0, 0x00),
	rType("SUB", OpSUB, 0x0, 0x20),
	rType("XOR", OpXOR, 0x4, 0x00),
	rType("OR", OpOR, 0x6, 0x00),
	rType("AND", OpAND, 0x7, 0x00),
	rType("SLL", OpSLL, 0x1, 0x00),
	rType("SRL", OpSRL, 0x5, 0x00),
	rType("SRA", OpSRA, 0x5, 0x20),
	rType("SLT", OpSLT, 0x2, 0x00),
	rType("SLTU", OpSLTU, 0x3, 0x00),

	// RV32M: same opcode as R-type ALU ops, funct7=0x01.
	rType("MUL", OpMUL, 0x0, 0x01),
	rType("MULH", OpMULH, 0x1, 0x01),
	rType("MULHSU", OpMULHSU, 0x2, 0x01),
	rType("MULHU", OpMULHU, 0x3, 0x01),
	rType("DIV", OpDIV, 0x4, 0x01),
	rType("DIVU", OpDIVU, 0x5, 0x01),
	rType("REM", OpREM, 0x6, 0x01),
	rType("REMU", OpREMU, 0x7, 0x01),

	iTypeALU("ADDI", OpADD, 0x0, -1),
	iTypeALU("XORI", OpXOR, 0x4, -1),
	iTypeALU("ORI", OpOR, 0x6, -1),
	iTypeALU("ANDI", OpAND, 0x7, -1),
	iTypeALU("SLLI", OpSLL, 0x1, 0x00),
	iTypeALU("SRLI", OpSRL, 0x5, 0x00),
	iTypeALU("SRAI", OpSRA, 0x5, 0x20),
	iTypeALU("SLTI", OpSLT, 0x2, -1),
	iTypeALU("SLTIU", OpSLTU, 0x3, -1),

	loadType("LB", 0x0, MemByte),
	loadType("LH", 0x1, MemHalf),
	loadType("LW", 0x2, MemWord),
	loadType("LBU", 0x4, MemByteUnsigned),
	loadType("LHU", 0x5, MemHalfUnsigned),

	storeType("SB", 0x0, MemByte),
	storeType("SH", 0x1, MemHalf),
	storeType("SW", 0x2, MemWord),

	// ALU result non-zero -> branch taken.
	branchType("BNE", OpSUB, 0x1, false),
	branchType("BLT", OpSLT, 0x4, false),
	branchType("BLTU", OpSLTU, 0x6, false),
	// ALU result zero -> branch taken (branch_flip inverts the condition).
	branchType("BEQ", OpSUB, 0x0, true),
	branchType("BGE", OpSLT, 0x5, true),
	branchType("BGEU", OpSLTU, 0x7, true),

	{name: "JAL", opcode: 0b1101111, funct3: -1, funct7: -1, apply: func(word uint32, a *Args) {
		a.HasRd = true
		a.IsALU = true
		a.IsJump = true
		a.ALUOp = OpADD
		a.Operand1From, a.Operand2From = FromPC, FromLiteralFour
		a.Imm = jImm(word)
	}},
	{name: "JALR", opcode: 0b1100111, funct3: 0x0, funct7: -1, apply: func(word uint32, a *Args) {
		a.HasRd, a.HasRs1 = true, true
		a.IsALU = true
		a.IsJump, a.IsJalr = true, true
		a.ALUOp = OpADD
		a.Operand1From, a.Operand2From = FromRS1, FromIMM
		a.Imm = iImm(word)
	}},

	{name: "LUI", opcode: 0b0110111, funct3: -1, funct7: -1, apply: func(word uint32, a *Args) {
		a.HasRd = true
		a.IsALU = true
		a.ALUOp = OpOR
		a.Operand1From, a.Operand2From = FromIMM, FromIMM
		a.Imm = uImm(word)
	}},
	{name: "AUIPC", opcode: 0b0010111, funct3: -1, funct7: -1, apply: func(word uint32, a *Args) {
		a.HasRd = true
		a.IsALU = true
		a.ALUOp = OpADD
		a.Operand1From, a.Operand2From = FromPC, FromIMM
		a.Imm = uImm(word)
	}},

	{name: "EBREAK", opcode: 0b1110011, funct3: 0x0, funct7: -1, apply: func(word uint32, a *Args) {
		a.IsALU = true
		a.ALUOp = OpADD
		a.IsTerminator = true
	}},
}

// Decode runs the match-and-overlay table over a 32-bit instruction
// word, returning the decoded Args and the matched mnemonic (empty if
// nothing matched — an illegal instruction).
func Decode(word uint32) (Args, string, error) {
	var a Args
	name := ""
	for _, e := range table {
		if e.matches(word) {
			e.apply(word, &a)
			name = e.name
			break
		}
	}
	if name == "" {
		return a, "", fmt.Errorf("decode: no match for instruction word 0x%08x", word)
	}
	return a, name, nil
}

// Fields reads the rd/rs1/rs2 register fields common to most formats;
// callers mask by HasRd/HasRs1/HasRs2 as decode tagged them.
func Fields(word uint32) (rd, rs1, rs2 uint32) { return rFields(word) }
