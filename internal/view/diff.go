package view

// ObserveSnapshot records the capability ids of the current poll and
// returns the ones not seen before, in input order. The very first
// snapshot is a baseline, not an event stream of additions: it primes the
// seen set and reports nothing fresh, so the initial load never flashes
// the whole view.
func (s *SessionState) ObserveSnapshot(ids []string) []string {
	if !s.primed {
		s.primed = true
		for _, id := range ids {
			s.seenIDs[id] = true
		}
		return nil
	}

	var fresh []string
	for _, id := range ids {
		if !s.seenIDs[id] {
			fresh = append(fresh, id)
			s.seenIDs[id] = true
		}
	}
	return fresh
}

// DiffIDSets is the stateless form used when replaying archived snapshots:
// it reports ids present in current but not previous, and ids present in
// previous but not current, both in input order.
func DiffIDSets(previous, current []string) (added, removed []string) {
	prev := make(map[string]bool, len(previous))
	for _, id := range previous {
		prev[id] = true
	}
	cur := make(map[string]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}

	for _, id := range current {
		if !prev[id] {
			added = append(added, id)
		}
	}
	for _, id := range previous {
		if !cur[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
