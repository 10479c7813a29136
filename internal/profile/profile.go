package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Closed is what VK effectively tells us when a field is hidden: the key is omitted entirely.
	Closed = "closed"

	urlPrefix = "https://vk.com/id"
)

var ErrMalformedProfile = errors.New("malformed profile")

// Sex is the VK sex code. Zero means the field is hidden or unspecified.
type Sex int

const (
	SexClosed Sex = iota
	SexFemale
	SexMale
)

func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "female"
	case SexMale:
		return "male"
	default:
		return Closed
	}
}

// Opposite returns the sex code used to search for partners.
func (s Sex) Opposite() Sex {
	return s%2 + 1
}

type Place struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

type Profile struct {
	ID          int64
	FirstName   string
	LastName    string
	Sex         Sex
	Age         Age
	Country     Place
	City        Place
	Deactivated string

	Friends IDSet
	Groups  IDSet

	Music  string
	Books  string
	Movies string

	// Photos is filled only for profiles that made it into a result.
	Photos []string
	Score  float64
}

// URL returns the canonical profile link.
func (p *Profile) URL() string {
	return URL(p.ID)
}

func URL(id int64) string {
	return urlPrefix + strconv.FormatInt(id, 10)
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s %s (%s)", p.FirstName, p.LastName, p.URL())
}

// ToMatch converts the profile into a record suitable for storing and exporting.
func (p *Profile) ToMatch() Match {
	photos := make([]string, len(p.Photos))
	copy(photos, p.Photos)

	return Match{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		URL:       p.URL(),
		Photos:    photos,
		Score:     p.Score,
	}
}

// Normalize builds a Profile from a raw users.get record.
// Only the id is required, everything else falls back to defaults.
func Normalize(raw map[string]any, now time.Time) (*Profile, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty record", ErrMalformedProfile)
	}

	id, err := asID(raw["id"])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProfile, err)
	}

	p := &Profile{
		ID:          id,
		FirstName:   stringOr(raw, "first_name", Closed),
		LastName:    stringOr(raw, "last_name", Closed),
		Sex:         SexClosed,
		Country:     placeOr(raw, "country"),
		City:        placeOr(raw, "city"),
		Deactivated: stringOr(raw, "deactivated", ""),
		Music:       stringOr(raw, "music", ""),
		Books:       stringOr(raw, "books", ""),
		Movies:      stringOr(raw, "movies", ""),
		Friends:     IDSet{},
		Groups:      IDSet{},
	}

	if v, ok := raw["sex"]; ok {
		if code, err := asInt(v); err == nil && code >= 0 && code <= 2 {
			p.Sex = Sex(code)
		}
	}

	p.Age = ComputeAge(stringOr(raw, "bdate", ""), now)

	return p, nil
}

func asID(v any) (int64, error) {
	if v == nil {
		return 0, errors.New("id is missing")
	}

	id, err := asInt(v)
	if err != nil {
		return 0, fmt.Errorf("id %v: %w", v, err)
	}

	if id <= 0 {
		return 0, fmt.Errorf("id %d is not positive", id)
	}

	return id, nil
}

func asInt(v any) (int64, error) {
	switch typed := v.(type) {
	case int:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		if typed != float64(int64(typed)) {
			return 0, errors.New("not an integer")
		}
		return int64(typed), nil
	case json.Number:
		return typed.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func stringOr(raw map[string]any, key, def string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func placeOr(raw map[string]any, key string) Place {
	place := Place{Title: Closed}

	obj, ok := raw[key].(map[string]any)
	if !ok {
		return place
	}

	if id, err := asInt(obj["id"]); err == nil {
		place.ID = id
	}

	if title := stringOr(obj, "title", ""); title != "" {
		place.Title = title
	}

	return place
}
