package core

import "strings"

// Tracker is the insertion-ordered set of breathing exercise names already
// offered during the current persona's lifetime. It exists because the model
// cannot be trusted to honor the no-repeat instruction on its own; the
// tracker is the deterministic source of truth. Keys are case-insensitive
// since model output casing is not stable, but All preserves the first-seen
// spelling.
type Tracker struct {
	order []string
	seen  map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Record adds name to the set. It returns true when the name is new and
// false when it was already present.
func (t *Tracker) Record(name string) bool {
	key := trackerKey(name)
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	t.order = append(t.order, strings.TrimSpace(name))
	return true
}

// Contains reports whether name has been recorded.
func (t *Tracker) Contains(name string) bool {
	_, ok := t.seen[trackerKey(name)]
	return ok
}

// All returns the recorded names in insertion order.
func (t *Tracker) All() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func trackerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
