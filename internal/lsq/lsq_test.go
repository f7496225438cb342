package lsq

import "testing"

func allReady(uint8) bool { return true }

func TestQueue_LoadBlockedByEarlierStore(t *testing.T) {
	q := New()
	q.Apply(Cycle{PushEnable: true, PushData: Entry{Valid: true, IsStore: true, ActiveListIdx: 0}})
	q.Apply(Cycle{PushEnable: true, PushData: Entry{Valid: true, IsLoad: true, ActiveListIdx: 1}})

	res := q.SelectLoad(allReady)
	if res.Valid {
		t.Fatalf("load behind an unresolved store must not issue, got %+v", res)
	}
}

func TestQueue_LoadIssuesWithNoEarlierStore(t *testing.T) {
	q := New()
	q.Apply(Cycle{PushEnable: true, PushData: Entry{Valid: true, IsLoad: true, ActiveListIdx: 0}})

	res := q.SelectLoad(allReady)
	if !res.Valid || res.Value.ActiveListIdx != 0 {
		t.Fatalf("select = %+v, want the one load to issue", res)
	}
}

func TestQueue_CommitPopOfStorePopulatesStoreBuffer(t *testing.T) {
	q := New()
	q.Apply(Cycle{PushEnable: true, PushData: Entry{Valid: true, IsStore: true, Rs2Physical: 7}})

	if q.StoreBuffer().Valid {
		t.Fatalf("store buffer should start invalid")
	}

	q.Apply(Cycle{PopEnable: true})

	sb := q.StoreBuffer()
	if !sb.Valid || sb.Rs2Physical != 7 {
		t.Fatalf("store buffer after commit-pop = %+v, want valid with Rs2Physical=7", sb)
	}
}

func TestQueue_StoreBufferDrainInvalidatesUnlessRepopulated(t *testing.T) {
	q := New()
	q.Apply(Cycle{PushEnable: true, PushData: Entry{Valid: true, IsStore: true}})
	q.Apply(Cycle{PopEnable: true})
	if !q.StoreBuffer().Valid {
		t.Fatalf("expected store buffer populated")
	}

	q.Apply(Cycle{StoreBufferDrained: true})
	if q.StoreBuffer().Valid {
		t.Fatalf("store buffer should go invalid after an unrepopulated drain")
	}
}
