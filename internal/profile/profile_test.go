package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestComputeAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bdate string
		now   time.Time
		want  Age
	}{
		{name: "birthday not yet occurred", bdate: "15.06.1990", now: date(2024, time.June, 14), want: 33},
		{name: "birthday passed", bdate: "15.06.1990", now: date(2024, time.June, 16), want: 34},
		{name: "birthday today", bdate: "15.06.1990", now: date(2024, time.June, 15), want: 34},
		{name: "no leading zeros", bdate: "2.1.2000", now: date(2024, time.March, 1), want: 24},
		{name: "earlier month", bdate: "20.12.1977", now: date(2024, time.January, 30), want: 46},
		{name: "partial date", bdate: "15.6", now: date(2024, time.June, 16), want: UnknownAge},
		{name: "empty", bdate: "", now: date(2024, time.June, 16), want: UnknownAge},
		{name: "garbage", bdate: "aa.bb.cccc", now: date(2024, time.June, 16), want: UnknownAge},
		{name: "impossible day", bdate: "31.02.1990", now: date(2024, time.June, 16), want: UnknownAge},
		{name: "two digit year", bdate: "1.1.90", now: date(2024, time.June, 16), want: UnknownAge},
		{name: "born in the future", bdate: "1.1.2030", now: date(2024, time.June, 16), want: UnknownAge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeAge(tt.bdate, tt.now))
		})
	}
}

func TestAgeRangeContains(t *testing.T) {
	t.Parallel()

	r := &AgeRange{From: 25, To: 35}
	assert.True(t, r.Contains(25))
	assert.True(t, r.Contains(35))
	assert.True(t, r.Contains(30))
	assert.False(t, r.Contains(24))
	assert.False(t, r.Contains(36))
	assert.False(t, r.Contains(UnknownAge))

	inverted := &AgeRange{From: 35, To: 25}
	assert.False(t, inverted.Contains(30))

	var missing *AgeRange
	assert.False(t, missing.Contains(30))
}

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":         float64(42),
		"first_name": "Anna",
	}

	p, err := Normalize(raw, date(2024, time.June, 16))
	require.NoError(t, err)

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Anna", p.FirstName)
	assert.Equal(t, Closed, p.LastName)
	assert.Equal(t, SexClosed, p.Sex)
	assert.Equal(t, Closed, p.Sex.String())
	assert.Equal(t, Closed, p.Country.Title)
	assert.Equal(t, Closed, p.City.Title)
	assert.Empty(t, p.Music)
	assert.Empty(t, p.Books)
	assert.Empty(t, p.Movies)
	assert.Equal(t, UnknownAge, p.Age)
	assert.Equal(t, "https://vk.com/id42", p.URL())
	assert.NotNil(t, p.Friends)
	assert.NotNil(t, p.Groups)
}

func TestNormalizeFullRecord(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	payload := `{
		"id": 7,
		"first_name": "Ivan",
		"last_name": "Petrov",
		"sex": 2,
		"bdate": "15.06.1990",
		"city": {"id": 1, "title": "Moscow"},
		"country": {"id": 1, "title": "Russia"},
		"music": "rock pop",
		"books": "tolstoy",
		"movies": "matrix"
	}`
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	p, err := Normalize(raw, date(2024, time.June, 16))
	require.NoError(t, err)

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Petrov", p.LastName)
	assert.Equal(t, SexMale, p.Sex)
	assert.Equal(t, SexFemale, p.Sex.Opposite())
	assert.Equal(t, Age(34), p.Age)
	assert.Equal(t, Place{ID: 1, Title: "Moscow"}, p.City)
	assert.Equal(t, "Russia", p.Country.Title)
	assert.Equal(t, "rock pop", p.Music)
	assert.Equal(t, "tolstoy", p.Books)
	assert.Equal(t, "matrix", p.Movies)
}

func TestNormalizeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "nil record", raw: nil},
		{name: "missing id", raw: map[string]any{"first_name": "Anna"}},
		{name: "null id", raw: map[string]any{"id": nil}},
		{name: "non numeric id", raw: map[string]any{"id": "abc"}},
		{name: "fractional id", raw: map[string]any{"id": 1.5}},
		{name: "zero id", raw: map[string]any{"id": 0}},
		{name: "unsupported type", raw: map[string]any{"id": []int{1}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.raw, date(2024, time.June, 16))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedProfile)
		})
	}
}

func TestTopPhotos(t *testing.T) {
	t.Parallel()

	photos := []Photo{
		{ID: 1, Likes: 5, URL: "a"},
		{ID: 2, Likes: 50, URL: "b"},
		{ID: 3, Likes: 1, URL: "c"},
		{ID: 4, Likes: 20, URL: "d"},
		{ID: 5, Likes: 20, URL: "e"},
	}

	// ascending stable: c(1) a(5) d(20) e(20) b(50); last three reversed.
	assert.Equal(t, []string{"b", "e", "d"}, TopPhotos(photos))
	assert.Equal(t, "a", photos[0].URL, "input must not be reordered")

	assert.Equal(t, []string{"x"}, TopPhotos([]Photo{{URL: "x"}}))
	assert.Empty(t, TopPhotos(nil))
}

func TestBatchExclude(t *testing.T) {
	t.Parallel()

	b := NewBatch(&Profile{ID: 1}, &Profile{ID: 2}, &Profile{ID: 3}, &Profile{ID: 4})

	excluded := b.Exclude(func(p *Profile) bool { return p.ID%2 == 0 })

	assert.Equal(t, []string{"https://vk.com/id2", "https://vk.com/id4"}, excluded)
	assert.Equal(t, []int64{1, 3}, b.IDs())
	assert.Nil(t, b.FindByID(2))
	assert.NotNil(t, b.FindByID(3))

	var empty *Batch
	assert.Equal(t, 0, empty.Len())
}

func TestReferenceNextPage(t *testing.T) {
	t.Parallel()

	ref := NewReference(&Profile{ID: 1}, 15)
	assert.Equal(t, 15, ref.NextPage())
	assert.Equal(t, 30, ref.NextPage())
	assert.Equal(t, 30, ref.Offset)
}

func TestMatchesToFile(t *testing.T) {
	t.Parallel()

	p := &Profile{ID: 9, FirstName: "Olga", LastName: "Ivanova", Photos: []string{"p1", "p2"}}
	matches := Matches{p.ToMatch()}

	path := filepath.Join(t.TempDir(), "output.json")
	require.NoError(t, matches.ToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://vk.com/id9", decoded[0]["vk_link"])
	assert.Equal(t, "Olga", decoded[0]["first_name"])

	assert.Equal(t, []string{"1. Olga Ivanova, vk: https://vk.com/id9, photos: p1,p2"}, matches.Lines())
	assert.NotNil(t, matches.FindByURL("https://vk.com/id9"))
	assert.Nil(t, matches.FindByURL("https://vk.com/id1"))
}
