// Package fetch implements the front end: the PC register plus the
// per-cycle next-PC mux, and the decode/rename stage that turns a
// fetched instruction word into push descriptors for every downstream
// structure (active list, ALU queue, LSQ, map table, free list).
package fetch

// FlushRequest is commit's fetcher-flush entry: when Enable is set the
// next PC becomes PC+Offset unconditionally, overriding whatever
// decode would otherwise have produced this cycle.
type FlushRequest struct {
	Enable bool
	PC     uint32
	Offset uint32
}

// StepInput is what decode feeds back to the fetcher about the word it
// just tried to process.
type StepInput struct {
	DecodeSuccess bool
	Stall         bool
	IsBranch      bool
	PredictBranch bool
	BranchOffset  uint32
}

// Fetcher is the PC register and its one-cycle stall latch: the stall
// latch rises when decode asserts stall and only falls on flush, so a
// stalled fetch holds PC steady across cycles until the pipeline
// drains or a branch resolves it away.
type Fetcher struct {
	pc      uint32
	stalled bool
}

func NewFetcher() *Fetcher { return &Fetcher{} }

func (f *Fetcher) PC() uint32      { return f.pc }
func (f *Fetcher) Stalled() bool   { return f.stalled }

// Advance computes this cycle's next PC and returns the PC that should
// be issued to the instruction SRAM/decoder this cycle (before the
// update), along with whether that issue is actually live (i.e. fetch
// is not stalled).
func (f *Fetcher) Advance(in StepInput, flush FlushRequest) (issuedPC uint32, issue bool) {
	issuedPC = f.pc
	issue = !f.stalled

	newStalled := (f.stalled || in.Stall) && !flush.Enable

	offset := uint32(4)
	if in.IsBranch && in.PredictBranch {
		offset = in.BranchOffset
	}

	var newPC uint32
	if flush.Enable {
		newPC = flush.PC + flush.Offset
	} else {
		newPC = f.pc
		if in.DecodeSuccess && !f.stalled && !in.Stall {
			newPC += offset
		}
	}

	f.pc = newPC
	f.stalled = newStalled
	return issuedPC, issue
}
