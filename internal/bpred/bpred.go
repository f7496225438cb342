// Package bpred abstracts branch prediction behind a single interface
// so the fetch stage never depends on a concrete predictor. The
// reference predictor wired into the core is AlwaysTaken; TAGE (see
// tage.go) is a pluggable alternative conforming to the same contract.
package bpred

// Feedback carries the previously-resolved branch outcome back to the
// predictor on the cycle it becomes known, so a stateful predictor can
// update before producing this cycle's prediction.
type Feedback struct {
	Valid bool
	PC    uint32
	Taken bool
}

// Predictor is predict(PC, feedback) -> 1 bit from the reference model:
// every implementation folds its update step into Predict itself, since
// the hardware issues both on the same combinational edge.
type Predictor interface {
	Predict(pc uint32, feedback Feedback) bool
}

// AlwaysTaken is the reference implementation: the feedback packet is
// plumbed through but never consulted.
type AlwaysTaken struct{}

func (AlwaysTaken) Predict(pc uint32, feedback Feedback) bool { return true }
