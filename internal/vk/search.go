package vk

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	SearchMethod = "users.search"
)

type SearchParams struct {
	// vkparam is custom tag for reflect. Please see below.
	Count   int   `vkparam:"count" mapstructure:"count"`
	Offset  int   `vkparam:"offset" mapstructure:"-"`
	Sex     int   `vkparam:"sex" mapstructure:"sex"`
	City    int64 `vkparam:"city" mapstructure:"city"`
	AgeFrom int   `vkparam:"age_from" mapstructure:"-"`
	AgeTo   int   `vkparam:"age_to" mapstructure:"-"`
	// Relationship status, 6 means "actively searching".
	Status   int  `vkparam:"status" mapstructure:"status"`
	HasPhoto bool `vkparam:"has_photo" mapstructure:"has-photo"`
}

// SearchItem is the minimal record users.search returns.
type SearchItem struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	IsClosed        bool   `json:"is_closed"`
	CanAccessClosed bool   `json:"can_access_closed"`
}

type searchResponse struct {
	Count int              `json:"count"`
	Items []map[string]any `json:"items"`
}

// Search runs users.search for one page.
func (c *Client) Search(params *SearchParams) ([]SearchItem, error) {
	if params == nil {
		return nil, fmt.Errorf("search params are required")
	}

	if params.Count <= 0 || params.Count > MaxPageSize {
		params.Count = MaxPageSize
	}

	var response searchResponse
	if err := c.call(SearchMethod, buildParams(params), &response); err != nil {
		return nil, err
	}

	var items []SearchItem
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(response.Items); err != nil {
		return nil, fmt.Errorf("decoding search items: %w", err)
	}

	c.logger.Debug("got search page",
		zap.Int("found", response.Count),
		zap.Int("items", len(items)),
		zap.Int("offset", params.Offset),
	)

	return items, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("vkparam")
		if key == "" {
			continue
		}

		value := reflect.ValueOf(params).Elem().Field(field.Index[0])
		switch field.Type.Kind() {
		case reflect.Bool:
			if value.Bool() {
				q.Set(key, "1")
			}
		case reflect.Int, reflect.Int64:
			if value.Int() != 0 {
				q.Set(key, strconv.FormatInt(value.Int(), 10))
			}
		default:
			if s := fmt.Sprintf("%v", value.Interface()); s != "" {
				q.Set(key, s)
			}
		}
	}

	return q
}
