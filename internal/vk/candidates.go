package vk

import (
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/profile"
)

// Candidates fetches one search page and turns it into a batch of normalized profiles.
// Closed profiles are dropped before the detail fetch since nothing useful can be read from them.
func (c *Client) Candidates(params *SearchParams) (*profile.Batch, error) {
	items, err := c.Search(params)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.IsClosed && !item.CanAccessClosed {
			continue
		}
		ids = append(ids, item.ID)
	}

	c.logger.Debug("open profiles on page",
		zap.Int("found", len(items)),
		zap.Int("open", len(ids)),
	)

	batch := profile.NewBatch()
	if len(ids) == 0 {
		return batch, nil
	}

	records, err := c.Users(ids, ProfileFields)
	if err != nil {
		return nil, err
	}

	now := c.Now()
	for _, raw := range records {
		p, err := profile.Normalize(raw, now)
		if err != nil {
			return nil, err
		}

		if err := c.attachGraph(p); err != nil {
			return nil, err
		}

		batch.Items = append(batch.Items, p)
	}

	return batch, nil
}
