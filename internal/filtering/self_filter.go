package filtering

import (
	"context"
	"strconv"

	"github.com/spigell/vk-tinder/internal/profile"
)

// users.search may return the caller among the results.
type selfFilter struct {
	id int64
}

// NewSelf creates a filter that removes the reference profile from candidates.
func NewSelf(id int64) Filter {
	return &selfFilter{id: id}
}

func (f *selfFilter) Name() string { return "self" }

func (f *selfFilter) Disable(string) {}

func (f *selfFilter) IsEnabled() bool { return true }

func (f *selfFilter) Validate() error { return nil }

func (f *selfFilter) Apply(_ context.Context, b *profile.Batch) (*profile.Batch, Step, error) {
	initial := b.Len()
	excluded := b.Exclude(func(p *profile.Profile) bool { return p.ID == f.id })

	return b, Step{Initial: initial, Dropped: len(excluded), Left: b.Len()}, nil
}

func (f *selfFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"reference_id": strconv.FormatInt(f.id, 10),
	}}
}
