package fetch

import "testing"

func TestFetcher_NormalSequentialAdvance(t *testing.T) {
	f := NewFetcher()
	pc0, issue0 := f.Advance(StepInput{DecodeSuccess: true}, FlushRequest{})
	if pc0 != 0 || !issue0 {
		t.Fatalf("first cycle should issue PC=0, got pc=%d issue=%v", pc0, issue0)
	}
	if f.PC() != 4 {
		t.Fatalf("after decode success, PC should advance by 4, got %d", f.PC())
	}
}

func TestFetcher_PredictedTakenBranchOffset(t *testing.T) {
	f := NewFetcher()
	f.Advance(StepInput{DecodeSuccess: true, IsBranch: true, PredictBranch: true, BranchOffset: 0x20}, FlushRequest{})
	if f.PC() != 0x20 {
		t.Fatalf("predicted-taken branch should move PC by branch offset, got 0x%x", f.PC())
	}
}

func TestFetcher_StallHoldsPCUntilFlush(t *testing.T) {
	f := NewFetcher()
	f.Advance(StepInput{DecodeSuccess: true, Stall: true}, FlushRequest{})
	if !f.Stalled() {
		t.Fatalf("stall should latch")
	}
	pc, issue := f.Advance(StepInput{DecodeSuccess: true}, FlushRequest{})
	if issue {
		t.Fatalf("a stalled fetch should not issue")
	}
	if pc != 0 {
		t.Fatalf("PC should hold at 0 while stalled, got %d", pc)
	}

	_, _ = f.Advance(StepInput{}, FlushRequest{Enable: true, PC: 0x1000, Offset: 4})
	if f.Stalled() {
		t.Fatalf("flush should clear the stall latch")
	}
	if f.PC() != 0x1004 {
		t.Fatalf("flush should set PC = flush.PC + flush.Offset, got 0x%x", f.PC())
	}
}
