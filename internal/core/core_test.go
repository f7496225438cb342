package core

import (
	"testing"

	"github.com/TheUnknownThing/R10K-CPU/internal/bpred"
	"github.com/stretchr/testify/require"
)

// flatMemory is the test double standing in for both instruction and
// data memory: a flat word-addressed array, no alignment or bounds
// drama, enough to drive a handful of hand-assembled programs to
// completion.
type flatMemory struct {
	words []uint32
}

func newFlatMemory(n int) *flatMemory { return &flatMemory{words: make([]uint32, n)} }

func (m *flatMemory) ReadWord(addr uint32) uint32 {
	idx := addr / 4
	if int(idx) >= len(m.words) {
		return 0
	}
	return m.words[idx]
}

func (m *flatMemory) WriteWord(addr uint32, v uint32) {
	idx := addr / 4
	if int(idx) >= len(m.words) {
		return
	}
	m.words[idx] = v
}

func (m *flatMemory) loadAt(wordIdx int, words ...uint32) {
	copy(m.words[wordIdx:], words)
}

func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20&0xFFF00000 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 1
	bit11 := (u >> 11) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return bit12<<31 | bits10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | opcode
}

func addi(rd, rs1 uint32, imm int32) uint32 { return encodeI(0b0010011, 0x0, rd, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encodeR(0b0110011, 0x0, 0x00, rd, rs1, rs2) }
func sub(rd, rs1, rs2 uint32) uint32        { return encodeR(0b0110011, 0x0, 0x20, rd, rs1, rs2) }
func bne(rs1, rs2 uint32, imm int32) uint32 { return encodeB(0b1100011, 0x1, rs1, rs2, imm) }

const ebreak = 0b1110011 // funct3/rd/rs1/imm fields all zero, matches the EBREAK table entry

// runToHalt steps c until it halts or the cycle budget is exhausted,
// returning the final StepResult that reported the halt.
func runToHalt(t *testing.T, c *Core, budget int) StepResult {
	t.Helper()
	var last StepResult
	for i := 0; i < budget; i++ {
		r := c.Step()
		if r.Committed {
			last = r
		}
		if r.Halted {
			return last
		}
	}
	t.Fatalf("core did not halt within %d cycles", budget)
	return StepResult{}
}

func TestCore_AddImmediateThenAdd(t *testing.T) {
	iMem := newFlatMemory(16)
	iMem.loadAt(0,
		addi(1, 0, 5),
		addi(2, 0, 7),
		add(3, 1, 2),
		ebreak,
	)
	dMem := newFlatMemory(16)

	c := New(iMem, dMem, bpred.AlwaysTaken{})
	result := runToHalt(t, c, 200)

	if result.Line.ArchRegs[3] != 12 {
		t.Fatalf("x3 = %d, want 12", result.Line.ArchRegs[3])
	}
	if result.Line.RetireCount != 4 {
		t.Fatalf("retire_count = %d, want 4", result.Line.RetireCount)
	}
}

func TestCore_SumLoop(t *testing.T) {
	// x1 = accumulator, x2 = counter (10 downto 0), x3 = 1
	// setup:
	//   0: addi x3, x0, 1
	//   4: addi x2, x0, 10
	//   8: addi x1, x0, 0
	// loop_body (pc=12):
	//  12: add x1, x1, x2
	//  16: sub x2, x2, x3
	//  20: bne x2, x0, -8   (back to pc=12)
	//  24: ebreak
	iMem := newFlatMemory(32)
	iMem.loadAt(0,
		addi(3, 0, 1),
		addi(2, 0, 10),
		addi(1, 0, 0),
		add(1, 1, 2),
		sub(2, 2, 3),
		bne(2, 0, -8),
		ebreak,
	)
	dMem := newFlatMemory(16)

	c := New(iMem, dMem, bpred.AlwaysTaken{})
	result := runToHalt(t, c, 2000)

	// 10+9+...+1 = 55
	require.Equal(t, uint32(55), result.Line.ArchRegs[1], "sum loop accumulator")
	require.Equal(t, uint32(0), result.Line.ArchRegs[2], "counter should reach zero")
	require.True(t, c.Halted())
}

func TestCore_HaltsOnlyOnce(t *testing.T) {
	iMem := newFlatMemory(4)
	iMem.loadAt(0, ebreak)
	dMem := newFlatMemory(4)

	c := New(iMem, dMem, bpred.AlwaysTaken{})
	r := runToHalt(t, c, 50)
	if !r.Halted || !r.Committed {
		t.Fatalf("expected the single ebreak to commit and halt")
	}
	if !c.Halted() {
		t.Fatalf("core should report Halted() after an ebreak retires")
	}
	beforeCycle := c.Cycle()
	again := c.Step()
	if again.Committed || again.Halted == false {
		t.Fatalf("Step after halt should be inert: %+v", again)
	}
	if c.Cycle() != beforeCycle {
		t.Fatalf("a halted core should not advance its cycle counter")
	}
}
