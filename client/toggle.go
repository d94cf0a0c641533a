package client

// Toggle is the optimistic state machine for a boolean relation and its
// dependent count (liked/likes, following/followers). The transition
// cycle is:
//
//	Begin           flip the flag, shift the count, remember prior state
//	Resolve         server agreed, commit
//	ResolveConflict server says the relation already held, commit anyway
//	Rollback        server refused, restore prior state exactly
//
// Transitions are pure field updates on a value type. A Toggle belongs
// to a single goroutine; there is no internal locking.
type Toggle struct {
	Active bool
	Count  int

	pending    bool
	prevActive bool
	prevCount  int
}

// NewToggle creates a toggle seeded with the server-reported state.
func NewToggle(active bool, count int) Toggle {
	return Toggle{Active: active, Count: count}
}

// Pending reports whether a transition awaits its server outcome.
func (t *Toggle) Pending() bool {
	return t.pending
}

// Begin applies the optimistic transition: flips the flag and moves the
// count one step, clamped at zero. Returns false without changing
// anything if a previous transition is still pending; the caller must
// not fire overlapping requests for the same relation.
func (t *Toggle) Begin() bool {
	if t.pending {
		return false
	}

	t.prevActive = t.Active
	t.prevCount = t.Count
	t.pending = true

	t.Active = !t.Active
	if t.Active {
		t.Count++
	} else if t.Count > 0 {
		t.Count--
	}

	return true
}

// Resolve commits the optimistic state after server confirmation.
func (t *Toggle) Resolve() {
	t.pending = false
}

// ResolveConflict commits after the server reported the relation
// already in the requested state. The optimistic view was right about
// the outcome even though the request was redundant, so this is a
// success, not a rollback.
func (t *Toggle) ResolveConflict() {
	t.pending = false
}

// Rollback restores the exact pre-Begin state after a server failure.
func (t *Toggle) Rollback() {
	if !t.pending {
		return
	}
	t.Active = t.prevActive
	t.Count = t.prevCount
	t.pending = false
}
