package tracker

// SeenSet holds the pair addresses already evaluated by one tracker. It only
// grows and is owned by a single polling goroutine, so it is not locked.
type SeenSet struct {
	ids map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

func (s *SeenSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *SeenSet) Add(ids ...string) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *SeenSet) Len() int {
	return len(s.ids)
}
