// Package execute holds the single-cycle ALU, the Booth/Wallace-tree
// multiplier, the non-restoring divider, and the LSU's address
// and load-data-formatting logic.
package execute

// combinationAdder is the hybrid carry-lookahead/ripple adder shared
// by the ALU's add/sub, the multiplier's sum stage, and the divider's
// shift-add/subtract step. It works in fixed-size blocks: within a
// block the carry chain is a plain ripple, and the carry into the next
// block is resolved from that block's own generate/propagate signals
// rather than waiting on the ripple to finish — the textbook
// block-carry-lookahead compromise between a full CLA's fan-in and a
// pure ripple's latency.
func combinationAdder(a, b uint64, width int, invert bool, carryIn uint64) (sum uint64, carryOut uint64) {
	const blockSize = 4
	if invert {
		b = ^b
	}
	blockCin := carryIn & 1
	var result uint64
	for blockStart := 0; blockStart < width; blockStart += blockSize {
		blockWidth := blockSize
		if blockStart+blockWidth > width {
			blockWidth = width - blockStart
		}
		var blockSum uint64
		generate := uint64(0)
		propagate := uint64(1)
		carry := blockCin
		for i := 0; i < blockWidth; i++ {
			bitA := (a >> uint(blockStart+i)) & 1
			bitB := (b >> uint(blockStart+i)) & 1
			bitSum := bitA ^ bitB ^ carry
			blockSum |= bitSum << uint(i)

			g := bitA & bitB
			p := bitA | bitB
			generate = g | (p & generate)
			propagate &= p
			carry = g | (p & carry)
		}
		result |= blockSum << uint(blockStart)
		// The carry handed to the next block comes from this block's own
		// generate/propagate combined with its carry-in, not from waiting
		// on the bit-by-bit ripple above to settle.
		blockCin = generate | (propagate & blockCin)
	}
	return result, blockCin
}

// add32 is the common case: 32-bit a+b (or a-b when sub is true).
func add32(a, b uint32, sub bool) (result uint32, carryOut bool) {
	var cin uint64
	if sub {
		cin = 1
	}
	sum, cout := combinationAdder(uint64(a), uint64(b), 32, sub, cin)
	return uint32(sum), cout != 0
}
