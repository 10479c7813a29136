package profile

// IDSet is a set of VK ids (friends or group subscriptions).
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Len() int {
	return len(s)
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// IntersectionLen counts ids present in both sets.
func (s IDSet) IntersectionLen(other IDSet) int {
	small, big := s, other
	if len(small) > len(big) {
		small, big = big, small
	}

	n := 0
	for id := range small {
		if big.Has(id) {
			n++
		}
	}
	return n
}
