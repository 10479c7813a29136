package profile

// Batch is an ordered collection of candidates fetched in one round.
// Order matters: ranking breaks ties by it.
type Batch struct {
	Items []*Profile
}

func NewBatch(items ...*Profile) *Batch {
	return &Batch{Items: items}
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

func (b *Batch) IDs() []int64 {
	ids := make([]int64, 0, b.Len())
	for _, p := range b.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

// Exclude removes profiles matching the predicate, preserving order of the rest.
// It returns the URLs of removed profiles.
func (b *Batch) Exclude(drop func(*Profile) bool) []string {
	var excluded []string

	kept := b.Items[:0]
	for _, p := range b.Items {
		if drop(p) {
			excluded = append(excluded, p.URL())
			continue
		}
		kept = append(kept, p)
	}

	// Do not keep pointers to dropped profiles in the tail.
	for i := len(kept); i < len(b.Items); i++ {
		b.Items[i] = nil
	}
	b.Items = kept

	return excluded
}

func (b *Batch) FindByID(id int64) *Profile {
	for _, p := range b.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}
