// Package scheduler runs the per-cycle issue selection: one ALU-queue
// entry (gated off if it is a divide and the divider is still busy
// with a prior one), one load from the LSQ (only when the store buffer
// isn't already occupying the LSU this cycle), and the store buffer
// itself, which always wins over a load.
package scheduler

import (
	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
	"github.com/TheUnknownThing/R10K-CPU/internal/lsq"
	"github.com/TheUnknownThing/R10K-CPU/internal/queue"
	"github.com/TheUnknownThing/R10K-CPU/internal/regready"
)

// Selection is what one cycle's scheduling pass decided to dispatch.
type Selection struct {
	ALU         queue.Result[aluqueue.Entry]
	DispatchALU bool

	LSQ          queue.Result[lsq.Entry]
	DispatchLoad bool

	StoreBuffer       lsq.StoreBufferEntry
	DispatchStore     bool
}

// Select runs the combinational selection logic: the ALU queue is
// scanned for a ready candidate, and the store buffer (if occupied)
// always takes the LSU slot — the LSQ is scanned for a load only when
// the buffer is empty — mirroring the reference scheduler's priority
// between the buffered store and a freshly selected load.
func Select(aq *aluqueue.Queue, lq *lsq.Queue, ready *regready.Vector, divBusy bool) Selection {
	aluResult := aq.SelectWithGate(ready, func(e aluqueue.Entry) bool {
		op := decode.ALUOp(e.ALUOp)
		return !(divBusy && op.IsDiv())
	})

	sb := lq.StoreBuffer()

	var lsqResult queue.Result[lsq.Entry]
	dispatchLoad := false
	if !sb.Valid {
		lsqResult = lq.SelectLoad(func(rs1Physical uint8) bool {
			return ready.IsReady(int(rs1Physical))
		})
		dispatchLoad = lsqResult.Valid
	}

	return Selection{
		ALU:         aluResult,
		DispatchALU: aluResult.Valid,

		LSQ:          lsqResult,
		DispatchLoad: dispatchLoad,

		StoreBuffer:   sb,
		DispatchStore: sb.Valid,
	}
}
