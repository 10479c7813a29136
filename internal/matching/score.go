package matching

import (
	"strings"

	"github.com/spigell/vk-tinder/internal/profile"
)

// suffixLen is how many trailing runes are cut from interest words,
// a crude stand-in for stemming inflected words.
const suffixLen = 2

// Weights are per-feature units of the similarity score.
type Weights struct {
	GroupUnit  float64 `mapstructure:"group-unit" json:"group_unit" validate:"gte=0"`
	FriendUnit float64 `mapstructure:"friend-unit" json:"friend_unit" validate:"gte=0"`
	Music      float64 `mapstructure:"music" json:"music" validate:"gte=0"`
	Books      float64 `mapstructure:"books" json:"books" validate:"gte=0"`
	Age        float64 `mapstructure:"age" json:"age" validate:"gte=0"`
}

// DefaultWeights are used when the config does not override them.
func DefaultWeights() Weights {
	return Weights{
		GroupUnit:  1,
		FriendUnit: 3,
		Music:      2,
		Books:      2,
		Age:        5,
	}
}

// Breakdown keeps every sub-score of a single comparison.
type Breakdown struct {
	Groups  float64
	Friends float64
	Music   float64
	Books   float64
	Age     float64
}

func (b Breakdown) Total() float64 {
	return b.Groups + b.Friends + b.Music + b.Books + b.Age
}

// Score returns the similarity of a candidate to the reference profile.
func Score(candidate *profile.Profile, ref *profile.Reference, w Weights) float64 {
	return Explain(candidate, ref, w).Total()
}

// Explain computes the sub-scores behind Score.
func Explain(candidate *profile.Profile, ref *profile.Reference, w Weights) Breakdown {
	if candidate == nil || ref == nil || ref.Profile == nil {
		return Breakdown{}
	}

	return Breakdown{
		Groups:  w.GroupUnit * float64(candidate.Groups.IntersectionLen(ref.Groups)),
		Friends: w.FriendUnit * float64(candidate.Friends.IntersectionLen(ref.Friends)),
		Music:   w.Music * float64(tokenOverlap(candidate.Music, ref.Music)),
		Books:   w.Books * float64(tokenOverlap(candidate.Books, ref.Books)),
		Age:     ageScore(candidate.Age, ref.DesiredAge, w.Age),
	}
}

func ageScore(age profile.Age, desired *profile.AgeRange, weight float64) float64 {
	if desired.Contains(age) {
		return weight
	}
	return 0
}

func tokenOverlap(a, b string) int {
	left, right := Tokens(a), Tokens(b)
	if len(left) > len(right) {
		left, right = right, left
	}

	n := 0
	for token := range left {
		if _, ok := right[token]; ok {
			n++
		}
	}
	return n
}

// Tokens splits an interest field on whitespace and cuts the last two runes of every word.
// Words of two runes or less produce nothing.
func Tokens(s string) map[string]struct{} {
	fields := strings.Fields(s)
	tokens := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		runes := []rune(field)
		if len(runes) <= suffixLen {
			continue
		}
		tokens[string(runes[:len(runes)-suffixLen])] = struct{}{}
	}

	return tokens
}
