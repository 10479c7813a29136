package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/profile"
)

// Blacklist provides the profile URLs the operator never wants to see again.
type Blacklist interface {
	BlacklistedURLs(ctx context.Context) ([]string, error)
}

type blacklistFilter struct {
	deps     *BlacklistDeps
	disabled bool
	reason   string
	lastSize int
}

type BlacklistDeps struct {
	Store  Blacklist
	Logger *zap.Logger
}

// NewBlacklist creates a filter that removes blacklisted profiles.
func NewBlacklist(deps *BlacklistDeps) Filter {
	return &blacklistFilter{deps: deps}
}

func (f *blacklistFilter) Name() string { return "blacklist" }

func (f *blacklistFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *blacklistFilter) IsEnabled() bool { return !f.disabled }

func (f *blacklistFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("blacklist store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *blacklistFilter) Apply(ctx context.Context, b *profile.Batch) (*profile.Batch, Step, error) {
	initial := b.Len()

	urls, err := f.deps.Store.BlacklistedURLs(ctx)
	if err != nil {
		return b, Step{}, fmt.Errorf("get blacklist: %w", err)
	}
	f.lastSize = len(urls)

	blacklisted := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		blacklisted[url] = struct{}{}
	}

	excluded := b.Exclude(func(p *profile.Profile) bool {
		_, ok := blacklisted[p.URL()]
		return ok
	})

	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding blacklisted profiles",
			zap.Strings("excluded_profiles", excluded),
			zap.Int("profiles_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(excluded), Left: b.Len()}, nil
}

func (f *blacklistFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"blacklist_size": strconv.Itoa(f.lastSize)},
	}
}
