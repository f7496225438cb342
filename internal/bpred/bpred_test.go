package bpred

import "testing"

func TestAlwaysTaken_IgnoresFeedback(t *testing.T) {
	var p AlwaysTaken
	if !p.Predict(0x1000, Feedback{}) {
		t.Fatalf("AlwaysTaken must predict taken regardless of input")
	}
	if !p.Predict(0x2000, Feedback{Valid: true, PC: 0x1000, Taken: false}) {
		t.Fatalf("AlwaysTaken must ignore feedback entirely")
	}
}

func TestTAGE_LearnsAlwaysTakenLoopBranch(t *testing.T) {
	p := NewTAGE()
	pc := uint32(0x400)

	var taken bool
	var fb Feedback
	for i := 0; i < 200; i++ {
		taken = p.Predict(pc, fb)
		fb = Feedback{Valid: true, PC: pc, Taken: true}
	}
	if !taken {
		t.Fatalf("TAGE should learn a branch that is always taken")
	}
}

func TestTAGE_LearnsNeverTakenBranch(t *testing.T) {
	p := NewTAGE()
	pc := uint32(0x800)

	var taken bool
	var fb Feedback
	for i := 0; i < 200; i++ {
		taken = p.Predict(pc, fb)
		fb = Feedback{Valid: true, PC: pc, Taken: false}
	}
	if taken {
		t.Fatalf("TAGE should learn a branch that is never taken")
	}
}

func TestTAGE_ImplementsPredictor(t *testing.T) {
	var _ Predictor = NewTAGE()
	var _ Predictor = AlwaysTaken{}
}
