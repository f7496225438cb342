// Multiplier: two datapath stages evaluated back to back. Stage 1
// sign/zero-extends the operands per MUL/MULH/MULHSU/MULHU's rules,
// recodes the multiplier into radix-4 Booth digits to generate a row of
// partial products, and reduces that row with a Wallace tree of 3:2
// compressors down to a sum/carry pair. Stage 2 resolves sum+carry with
// the shared block adder and picks the high or low word.
//
// Both stages run inside one Multiply call; there is no pipeline
// register between them, and the core writes the product back in the
// same cycle the multiply is dispatched. There is no busy interlock —
// unlike the divider, a new multiply may dispatch every cycle.
package execute

import "github.com/TheUnknownThing/R10K-CPU/internal/decode"

// boothDigits recodes a 32-bit multiplier (already embedded as a
// two's-complement value in a 64-bit word, with bit 32 carrying the
// sign/zero-extension bit) into 17 radix-4 digits in [-2,2], each
// covering a 3-bit overlapping window (b[2i+1], b[2i], b[2i-1]) with
// b[-1] defined as 0.
func boothDigits(multiplier int64) []int64 {
	const groups = 17
	digits := make([]int64, groups)
	var prevBit int64
	for i := 0; i < groups; i++ {
		b2i := (multiplier >> uint(2*i)) & 1
		b2i1 := (multiplier >> uint(2*i+1)) & 1
		code := (b2i1 << 2) | (b2i << 1) | prevBit
		digits[i] = boothDecode(code)
		prevBit = b2i1
	}
	return digits
}

func boothDecode(code int64) int64 {
	switch code {
	case 0, 7:
		return 0
	case 1, 2:
		return 1
	case 3:
		return 2
	case 4:
		return -2
	case 5, 6:
		return -1
	}
	return 0
}

// partialProducts builds one 64-bit row per Booth digit: digit times
// the (already extended) multiplicand, shifted by 2 bits per group.
// Every operation here is mod 2^64, which is exactly the arithmetic a
// 64-bit product register performs, so the eventual sum recovers
// a*b mod 2^64 regardless of how individual rows overflow along the
// way.
func partialProducts(multiplicand uint64, multiplier int64) []uint64 {
	digits := boothDigits(multiplier)
	rows := make([]uint64, len(digits))
	for i, d := range digits {
		rows[i] = (multiplicand * uint64(d)) << uint(2*i)
	}
	return rows
}

// wallaceTree reduces a slice of same-width rows to a sum/carry pair
// using repeated layers of full-adder (3:2) compression, the way a
// real Wallace tree collapses N partial products in O(log N) layers.
func wallaceTree(rows []uint64) (sum, carry uint64) {
	for len(rows) > 2 {
		var next []uint64
		i := 0
		for ; i+3 <= len(rows); i += 3 {
			a, b, c := rows[i], rows[i+1], rows[i+2]
			s := a ^ b ^ c
			cout := ((a & b) | (b & c) | (a & c)) << 1
			next = append(next, s, cout)
		}
		for ; i < len(rows); i++ {
			next = append(next, rows[i])
		}
		rows = next
	}
	if len(rows) == 1 {
		return rows[0], 0
	}
	return rows[0], rows[1]
}

func extend(v uint32, signed bool) uint64 {
	if signed && (v>>31)&1 == 1 {
		return uint64(v) | (uint64(0xFFFFFFFF) << 32)
	}
	return uint64(v)
}

// Multiply computes the 32-bit lane an M-extension op selects: the low
// word for MUL, the high word for MULH/MULHSU/MULHU.
func Multiply(op decode.ALUOp, a, b uint32) uint32 {
	signedA := op == decode.OpMULH || op == decode.OpMULHSU
	signedB := op == decode.OpMULH

	extA := extend(a, signedA)
	extB := extend(b, signedB)

	rows := partialProducts(extA, int64(extB))
	sum, carry := wallaceTree(rows)
	result, _ := combinationAdder(sum, carry, 64, false, 0)

	isHigh := op == decode.OpMULH || op == decode.OpMULHSU || op == decode.OpMULHU
	if isHigh {
		return uint32(result >> 32)
	}
	return uint32(result)
}
