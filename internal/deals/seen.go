package deals

// SeenDeals holds the identities emitted during one run. It is never
// persisted: a deal that still qualifies on the next run is notified again.
type SeenDeals struct {
	ids map[string]struct{}
}

// NewSeenDeals returns an empty set
func NewSeenDeals() *SeenDeals {
	return &SeenDeals{ids: make(map[string]struct{})}
}

// Add records id and reports whether it was new
func (s *SeenDeals) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len returns the number of recorded identities
func (s *SeenDeals) Len() int {
	return len(s.ids)
}
