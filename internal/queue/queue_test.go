package queue

import "testing"

// Section 1: push/pop/modify/choose sequence on a depth=10 queue of
// ints, mirroring the component-level unit scenario for the circular
// queue primitive.

func TestQueue_PushPopChoose(t *testing.T) {
	q := New[int](10)

	for _, v := range []int{10, 20, 30, 40} {
		q.Apply(Intents[int]{PushEnable: true, PushData: v})
	}
	if q.Count() != 4 {
		t.Fatalf("count = %d, want 4", q.Count())
	}

	res := q.Choose(func(v int, _ int) bool { return v == 30 })
	if !res.Valid || res.Value != 30 || res.Distance != 2 {
		t.Fatalf("choose(30) = %+v, want valid at distance 2", res)
	}

	res = q.Choose(func(v int, _ int) bool { return v == 99 })
	if res.Valid {
		t.Fatalf("choose(99) = %+v, want invalid for absent target", res)
	}

	q.Apply(Intents[int]{PopEnable: true})
	if q.Count() != 3 || q.Head() != 1 {
		t.Fatalf("after pop: count=%d head=%d, want count=3 head=1", q.Count(), q.Head())
	}

	res = q.Choose(func(v int, _ int) bool { return v == 20 })
	if !res.Valid || res.Distance != 0 {
		t.Fatalf("choose(20) after pop = %+v, want distance 0 (new head)", res)
	}

	q.WriteAt(res.AbsIndex, 21)
	if got := q.At(res.AbsIndex); got != 21 {
		t.Fatalf("WriteAt/At = %d, want 21", got)
	}
}

func TestQueue_ClearTakesPriority(t *testing.T) {
	q := New[int](2)
	q.Apply(Intents[int]{PushEnable: true, PushData: 1})
	q.Apply(Intents[int]{PushEnable: true, PushData: 2})
	if !q.Full() {
		t.Fatalf("expected queue full")
	}

	// Pushing into a full queue while Clear is also raised is defined:
	// the entry is dropped and the ring resets.
	q.Apply(Intents[int]{Clear: true, PushEnable: true, PushData: 3})
	if q.Count() != 0 || q.Head() != 0 || q.Tail() != 0 {
		t.Fatalf("after clear+push: count=%d head=%d tail=%d, want all zero", q.Count(), q.Head(), q.Tail())
	}
}

func TestQueue_PushWhileFullPanics(t *testing.T) {
	q := New[int](1)
	q.Apply(Intents[int]{PushEnable: true, PushData: 1})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on push-while-full")
		}
	}()
	q.Apply(Intents[int]{PushEnable: true, PushData: 2})
}

func TestQueue_ChooseOnEmptyQueueIsInvalid(t *testing.T) {
	q := New[int](4)
	res := q.Choose(func(int, int) bool { return true })
	if res.Valid {
		t.Fatalf("choose on empty queue = %+v, want invalid", res)
	}
}

func TestQueue_ChoosePrefersEarliestMatch(t *testing.T) {
	q := New[int](8)
	for _, v := range []int{1, 2, 2, 2, 3} {
		q.Apply(Intents[int]{PushEnable: true, PushData: v})
	}
	res := q.Choose(func(v int, _ int) bool { return v == 2 })
	if !res.Valid || res.Distance != 1 {
		t.Fatalf("choose(2) = %+v, want the earliest match at distance 1", res)
	}
}
