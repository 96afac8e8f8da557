package render

import "testing"

func TestDirtySetShallowestFirst(t *testing.T) {
	set := NewDirtySet(ShallowestFirst)
	set.Add(makeElementID(3, 1), 3)
	set.Add(makeElementID(1, 1), 0)
	set.Add(makeElementID(2, 1), 2)

	want := []uint32{1, 2, 3}
	for i, slot := range want {
		id, ok := set.Take()
		if !ok {
			t.Fatalf("extraction %d: set exhausted", i)
		}
		if id.slot() != slot {
			t.Errorf("extraction %d: expected slot %d, got %s", i, slot, id)
		}
	}
	if _, ok := set.Take(); ok {
		t.Error("expected empty set after draining")
	}
}

func TestDirtySetDeepestFirst(t *testing.T) {
	set := NewDirtySet(DeepestFirst)
	set.Add(makeElementID(1, 1), 0)
	set.Add(makeElementID(2, 1), 5)
	set.Add(makeElementID(3, 1), 2)

	want := []uint32{2, 3, 1}
	for i, slot := range want {
		id, ok := set.Take()
		if !ok {
			t.Fatalf("extraction %d: set exhausted", i)
		}
		if id.slot() != slot {
			t.Errorf("extraction %d: expected slot %d, got %s", i, slot, id)
		}
	}
}

func TestDirtySetDedup(t *testing.T) {
	set := NewDirtySet(ShallowestFirst)
	id := makeElementID(1, 1)
	if !set.Add(id, 2) {
		t.Error("expected first add to report insertion")
	}
	if set.Add(id, 2) {
		t.Error("expected duplicate add to be rejected")
	}
	if set.Len() != 1 {
		t.Errorf("expected 1 member, got %d", set.Len())
	}
	set.Take()
	if set.Len() != 0 {
		t.Errorf("expected empty set, got %d members", set.Len())
	}
}

func TestDirtySetDiscard(t *testing.T) {
	set := NewDirtySet(ShallowestFirst)
	a := makeElementID(1, 1)
	b := makeElementID(2, 1)
	set.Add(a, 0)
	set.Add(b, 1)

	set.Discard(a)
	if set.Contains(a) {
		t.Error("expected discarded element to leave the set")
	}
	id, ok := set.Take()
	if !ok || id != b {
		t.Errorf("expected Take to skip discarded entry and return %s, got %s", b, id)
	}
}

func TestDirtySetReAddAfterDiscardUsesNewDepth(t *testing.T) {
	set := NewDirtySet(ShallowestFirst)
	a := makeElementID(1, 1)
	b := makeElementID(2, 1)

	set.Add(a, 5)
	set.Discard(a)
	set.Add(a, 1)
	set.Add(b, 3)

	// The stale depth-5 entry must not drag a behind b.
	id, ok := set.Take()
	if !ok || id != a {
		t.Fatalf("expected %s at its re-added depth first, got %s", a, id)
	}
	id, ok = set.Take()
	if !ok || id != b {
		t.Fatalf("expected %s second, got %s", b, id)
	}
	if _, ok := set.Take(); ok {
		t.Error("expected the stale entry to be dropped, not returned")
	}
}

func TestDirtySetReAddAtNewDepthMoves(t *testing.T) {
	set := NewDirtySet(ShallowestFirst)
	a := makeElementID(1, 1)
	b := makeElementID(2, 1)

	set.Add(a, 5)
	if set.Add(a, 1) {
		t.Error("expected depth move to report existing membership")
	}
	set.Add(b, 3)
	if set.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", set.Len())
	}

	id, _ := set.Take()
	if id != a {
		t.Errorf("expected the moved element extracted at depth 1, got %s", id)
	}
}

func TestDirtySetTiebreakDeterministic(t *testing.T) {
	extract := func() []ElementID {
		set := NewDirtySet(ShallowestFirst)
		for _, slot := range []uint32{5, 1, 3, 2, 4} {
			set.Add(makeElementID(slot, 1), 1)
		}
		var out []ElementID
		for {
			id, ok := set.Take()
			if !ok {
				return out
			}
			out = append(out, id)
		}
	}

	first := extract()
	second := extract()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected deterministic order, runs differ at %d: %s vs %s",
				i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1] >= first[i] {
			t.Errorf("expected ascending handle tiebreak, got %s before %s", first[i-1], first[i])
		}
	}
}
