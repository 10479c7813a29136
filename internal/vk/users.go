package vk

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/profile"
)

const (
	// ProfileFields are requested for every detail fetch.
	ProfileFields = "sex,bdate,city,country,activities,interests,music,movies,books"

	usersGetMethod         = "users.get"
	friendsGetMethod       = "friends.get"
	subscriptionsGetMethod = "users.getSubscriptions"
	photosGetMethod        = "photos.get"
)

type idList struct {
	Count int     `json:"count"`
	Items []int64 `json:"items"`
}

type subscriptionsResponse struct {
	Groups idList `json:"groups"`
}

type rawPhoto struct {
	ID    int64 `json:"id"`
	Likes struct {
		Count int `json:"count"`
	} `json:"likes"`
	Sizes []struct {
		Type   string `json:"type"`
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"sizes"`
}

type photosResponse struct {
	Count int              `json:"count"`
	Items []map[string]any `json:"items"`
}

// Users fetches full records for the given ids. Hidden fields are simply absent.
func (c *Client) Users(ids []int64, fields string) ([]map[string]any, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("user_ids", joinIDs(ids))
	q.Set("fields", fields)
	if c.serviceToken != "" {
		q.Set("access_token", c.serviceToken)
	}

	var records []map[string]any
	if err := c.call(usersGetMethod, q, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// Me returns the profile of the token owner with the social graph attached.
func (c *Client) Me() (*profile.Profile, error) {
	q := url.Values{}
	q.Set("fields", ProfileFields)

	var records []map[string]any
	if err := c.call(usersGetMethod, q, &records); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s returned no profile for the token owner", usersGetMethod)
	}

	p, err := profile.Normalize(records[0], c.Now())
	if err != nil {
		return nil, err
	}

	if err := c.attachGraph(p); err != nil {
		return nil, err
	}

	return p, nil
}

// Friends returns friend ids of the user.
func (c *Client) Friends(id int64) ([]int64, error) {
	return c.cachedIDs("friends:"+strconv.FormatInt(id, 10), func() ([]int64, error) {
		q := url.Values{}
		q.Set("user_id", strconv.FormatInt(id, 10))

		var response idList
		if err := c.call(friendsGetMethod, q, &response); err != nil {
			return nil, err
		}
		return response.Items, nil
	})
}

// Subscriptions returns ids of groups the user is subscribed to.
func (c *Client) Subscriptions(id int64) ([]int64, error) {
	return c.cachedIDs("groups:"+strconv.FormatInt(id, 10), func() ([]int64, error) {
		q := url.Values{}
		q.Set("user_id", strconv.FormatInt(id, 10))

		var response subscriptionsResponse
		if err := c.call(subscriptionsGetMethod, q, &response); err != nil {
			return nil, err
		}
		return response.Groups.Items, nil
	})
}

// Photos returns profile album photos with their like counters.
func (c *Client) Photos(id int64) ([]profile.Photo, error) {
	q := url.Values{}
	q.Set("owner_id", strconv.FormatInt(id, 10))
	q.Set("album_id", "profile")
	q.Set("extended", "1")

	var response photosResponse
	if err := c.call(photosGetMethod, q, &response); err != nil {
		return nil, err
	}

	var raw []rawPhoto
	cfg := &mapstructure.DecoderConfig{
		Result:           &raw,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(response.Items); err != nil {
		return nil, fmt.Errorf("decoding photos: %w", err)
	}

	photos := make([]profile.Photo, 0, len(raw))
	for _, ph := range raw {
		photos = append(photos, profile.Photo{
			ID:    ph.ID,
			Likes: ph.Likes.Count,
			URL:   largestSize(ph),
		})
	}

	return photos, nil
}

// TopPhotos returns up to three most liked profile photo URLs.
func (c *Client) TopPhotos(id int64) ([]string, error) {
	photos, err := c.Photos(id)
	if err != nil {
		return nil, err
	}
	return profile.TopPhotos(photos), nil
}

func largestSize(ph rawPhoto) string {
	best, bestArea := "", -1
	for _, size := range ph.Sizes {
		if area := size.Width * size.Height; area > bestArea {
			best, bestArea = size.URL, area
		}
	}
	return best
}

// attachGraph fills friends and groups. Hidden lists and exhausted rate limits leave them empty.
func (c *Client) attachGraph(p *profile.Profile) error {
	friends, err := c.Friends(p.ID)
	if err = c.tolerateGraphError(p.ID, friendsGetMethod, err); err != nil {
		return err
	}

	groups, err := c.Subscriptions(p.ID)
	if err = c.tolerateGraphError(p.ID, subscriptionsGetMethod, err); err != nil {
		return err
	}

	p.Friends = profile.NewIDSet(friends...)
	p.Groups = profile.NewIDSet(groups...)

	return nil
}

func (c *Client) tolerateGraphError(id int64, method string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsAccessDenied(err):
		c.logger.Debug("graph is hidden", zap.Int64("profile_id", id), zap.String("method", method))
		return nil
	case errors.Is(err, ErrRateLimited):
		c.logger.Warn("graph skipped because of rate limit", zap.Int64("profile_id", id), zap.String("method", method))
		return nil
	default:
		return fmt.Errorf("profile %d: %w", id, err)
	}
}

func (c *Client) cachedIDs(key string, fetch func() ([]int64, error)) ([]int64, error) {
	if c.Cache != nil {
		ids, ok, err := c.Cache.IDs(c.ctx, key)
		if err != nil {
			c.logger.Warn("reading list cache", zap.String("key", key), zap.Error(err))
		} else if ok {
			return ids, nil
		}
	}

	ids, err := fetch()
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if err := c.Cache.SetIDs(c.ctx, key, ids); err != nil {
			c.logger.Warn("writing list cache", zap.String("key", key), zap.Error(err))
		}
	}

	return ids, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
