package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/profile"
)

type deactivatedFilter struct {
	disabled bool
	reason   string
	logger   *zap.Logger
}

// NewDeactivated creates a filter that removes deleted and banned accounts.
func NewDeactivated(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &deactivatedFilter{logger: logger}
}

func (f *deactivatedFilter) Name() string { return "deactivated" }

func (f *deactivatedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *deactivatedFilter) IsEnabled() bool { return !f.disabled }

func (f *deactivatedFilter) Validate() error { return nil }

func (f *deactivatedFilter) Apply(_ context.Context, b *profile.Batch) (*profile.Batch, Step, error) {
	initial := b.Len()
	excluded := b.Exclude(func(p *profile.Profile) bool { return p.Deactivated != "" })

	if len(excluded) > 0 {
		f.logger.Info("excluding deactivated profiles",
			zap.Strings("excluded_profiles", excluded),
			zap.Int("profiles_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(excluded), Left: b.Len()}, nil
}

func (f *deactivatedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
