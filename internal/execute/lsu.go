// LSU: address generation plus the writeback-side byte/half-lane
// extraction for loads. Address computation and the store path are
// single-cycle; the actual SRAM access is modeled as a synchronous
// Memory the LSU reads/writes within the same Dispatch call, since this
// model does not simulate memory latency beyond one cycle.
package execute

import "github.com/TheUnknownThing/R10K-CPU/internal/lsq"

// Memory is the word-addressable data store the LSU drives. Addresses
// are masked to word granularity before every access; sub-word stores
// are not modeled (see DESIGN.md) so WriteWord always replaces the
// whole word.
type Memory interface {
	ReadWord(wordAddr uint32) uint32
	WriteWord(wordAddr uint32, value uint32)
}

// Address computes PRF[rs1] + imm, the effective address for both loads
// and stores.
func Address(rs1Value uint32, imm int32) uint32 {
	sum, _ := add32(rs1Value, uint32(imm), false)
	return sum
}

func wordAligned(addr uint32) uint32 { return addr &^ 3 }

// LoadResult is what a dispatched load produces for writeback.
type LoadResult struct {
	DestPhysical  uint8
	ActiveListIdx int
	Value         uint32
}

// DispatchLoad computes the address, reads the containing word from
// memory, and formats the result per op_type — mirroring
// WriteBack.process_memory_data from the reference model.
func DispatchLoad(entry lsq.Entry, rs1Value uint32, mem Memory) LoadResult {
	addr := Address(rs1Value, entry.Imm)
	word := mem.ReadWord(wordAligned(addr))
	return LoadResult{
		DestPhysical:  entry.RdPhysical,
		ActiveListIdx: entry.ActiveListIdx,
		Value:         FormatLoadData(entry.OpType, word, addr),
	}
}

// DispatchStore computes the address and writes rs2Value into memory.
// Only whole-word stores are modeled: SB/SH still write the full word
// read from rs2, per the known sub-word-store limitation carried
// forward from the reference model (DESIGN.md).
func DispatchStore(sb lsq.StoreBufferEntry, rs1Value, rs2Value uint32, mem Memory) {
	addr := Address(rs1Value, sb.Imm)
	mem.WriteWord(wordAligned(addr), rs2Value)
}

// FormatLoadData shifts the fetched word right by addr's byte offset
// times 8, then applies the op-type's width/signedness mask.
func FormatLoadData(opType lsq.MemOpType, data uint32, addr uint32) uint32 {
	byteOffset := addr & 0x3
	shiftAmt := byteOffset * 8
	shifted := data >> shiftAmt

	byteVal := shifted & 0xFF
	halfVal := shifted & 0xFFFF

	switch opType {
	case lsq.Word:
		return data
	case lsq.Byte:
		return uint32(int32(int8(byteVal)))
	case lsq.Half:
		return uint32(int32(int16(halfVal)))
	case lsq.ByteUnsigned:
		return byteVal
	case lsq.HalfUnsigned:
		return halfVal
	}
	return data
}
