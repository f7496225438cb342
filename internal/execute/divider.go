// Divider: non-restoring division, 32 minus leading-zero-count
// iterative steps after a normalization pass that skips the dividend's
// leading zeros. A div_busy interlock gates dispatch of a second
// DIV/REM family op until the current one produces its result — multiply has no such interlock because its pipe is fully
// pipelined, but the divider's iterative core is genuinely
// multi-cycle and only one can be in flight.
package execute

import (
	"math/bits"

	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
)

// Divider models the iterative non-restoring core as an explicit state
// machine advanced one Step() per cycle, mirroring the chain-of-
// modules-with-a-self-edge shape multi-cycle units take in this
// design. The 65-bit PA register is split across remHigh (its top 33
// bits, the running remainder) and quotLow (its low 32 bits, the
// quotient built up one bit per step).
type Divider struct {
	busy bool

	entry aluqueue.Entry
	op    decode.ALUOp

	remHigh uint64 // 33 meaningful bits
	quotLow uint32
	b       uint32
	i       uint8

	quotientSign  bool
	remainderSign bool
}

func NewDivider() *Divider { return &Divider{} }

func (d *Divider) Busy() bool { return d.busy }

// Abort drops any in-flight division without producing a result — the
// flush-time equivalent of the iterative core's internal FIFOs
// draining on a per-port pop, since a divide past a mispredicted
// branch was always going to be discarded anyway.
func (d *Divider) Abort() { d.busy = false }

// Entry returns the ALU-queue entry currently occupying the divider,
// valid only while Busy().
func (d *Divider) Entry() aluqueue.Entry { return d.entry }

func specialCase(op decode.ALUOp, a, b uint32) (uint32, bool) {
	isDivLike := op == decode.OpDIV || op == decode.OpDIVU
	isSigned := op == decode.OpDIV || op == decode.OpREM

	if b == 0 {
		if isDivLike {
			return 0xFFFFFFFF, true
		}
		return a, true
	}
	if isSigned && a == 0x80000000 && b == 0xFFFFFFFF {
		if op == decode.OpDIV {
			return 0x80000000, true
		}
		return 0, true
	}
	return 0, false
}

func absSigned(v uint32) uint32 {
	if int32(v) < 0 {
		return uint32(-int32(v))
	}
	return v
}

// Dispatch starts a new DIV/REM family op. The caller must have
// already checked !Busy(). Special cases (divide by zero, INT_MIN/-1
// overflow) are resolved immediately and reported via (result, true)
// without touching the iterative core; otherwise the core is primed
// and the caller should keep calling Step() until it reports done.
func (d *Divider) Dispatch(op decode.ALUOp, entry aluqueue.Entry, a, b uint32) (result uint32, immediate bool) {
	if res, special := specialCase(op, a, b); special {
		return res, true
	}

	isSigned := op == decode.OpDIV || op == decode.OpREM
	d.quotientSign = isSigned && (int32(a) < 0) != (int32(b) < 0)
	d.remainderSign = isSigned && int32(a) < 0

	absA, absB := a, b
	if isSigned {
		absA, absB = absSigned(a), absSigned(b)
	}

	lzc := uint8(32)
	if absA != 0 {
		lzc = uint8(bits.LeadingZeros32(absA))
	}

	d.quotLow = absA << lzc
	d.remHigh = 0
	d.b = absB
	d.i = lzc
	d.op = op
	d.entry = entry
	d.busy = true
	return 0, false
}

// Step advances the iterative core by one cycle: shift the 65-bit
// {remHigh,quotLow} register left by one, then add B to the top 33
// bits if the prior step left it negative, else subtract — recording
// the complement of the new sign as this step's quotient bit. Once the
// step counter reaches 32, a negative remainder is corrected by adding B back, and
// the captured operand signs fix up the final quotient/remainder.
func (d *Divider) Step() (result uint32, done bool) {
	if !d.busy {
		return 0, false
	}

	if d.i == 32 {
		rawRemainder := uint32(d.remHigh & 0xFFFFFFFF)
		remainder := rawRemainder
		if (d.remHigh>>32)&1 == 1 {
			remainder, _ = add32(rawRemainder, d.b, false)
		}

		finalQuotient := d.quotLow
		if d.quotientSign {
			finalQuotient = uint32(-int32(finalQuotient))
		}
		finalRemainder := remainder
		if d.remainderSign {
			finalRemainder = uint32(-int32(finalRemainder))
		}

		d.busy = false
		if d.op == decode.OpDIV || d.op == decode.OpDIVU {
			return finalQuotient, true
		}
		return finalRemainder, true
	}

	negative := (d.remHigh>>32)&1 == 1
	oldP := ((d.remHigh & 0xFFFFFFFF) << 1) | uint64((d.quotLow>>31)&1)

	var newP uint64
	if negative {
		newP, _ = combinationAdder(oldP, uint64(d.b), 33, false, 0)
	} else {
		newP, _ = combinationAdder(oldP, uint64(d.b), 33, true, 1)
	}
	newP &= (1 << 33) - 1

	newSign := (newP >> 32) & 1
	quotientBit := uint32(1 - newSign)

	d.remHigh = newP
	d.quotLow = ((d.quotLow << 1) & 0xFFFFFFFF) | quotientBit
	d.i++
	return 0, false
}
