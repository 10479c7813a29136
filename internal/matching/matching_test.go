package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/vk-tinder/internal/profile"
)

func unitWeights() Weights {
	return Weights{GroupUnit: 1, FriendUnit: 1, Music: 1, Books: 1, Age: 1}
}

func reference(p *profile.Profile, from, to int) *profile.Reference {
	ref := profile.NewReference(p, 15)
	ref.DesiredAge = &profile.AgeRange{From: from, To: to}
	return ref
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, map[string]struct{}{"ab": {}, "ef": {}}, Tokens("abcd efgh"))
	assert.Equal(t, map[string]struct{}{"ab": {}}, Tokens("abcd  abxy\tab"), "duplicates collapse, short words vanish")
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens("   "))
	assert.Empty(t, Tokens("a ab"))
	assert.Equal(t, map[string]struct{}{"р": {}}, Tokens("рок"), "truncation counts runes")
}

func TestScoreExamples(t *testing.T) {
	t.Parallel()

	t.Run("music overlap", func(t *testing.T) {
		t.Parallel()
		w := Weights{Music: 2}
		ref := reference(&profile.Profile{Music: "abcd efgh", Age: profile.UnknownAge}, 0, 0)
		cand := &profile.Profile{Music: "abcd wxyz", Age: profile.UnknownAge}

		assert.Equal(t, 2.0, Score(cand, ref, w))
	})

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()
		w := Weights{GroupUnit: 1, FriendUnit: 1, Music: 2, Books: 1, Age: 5}
		ref := reference(&profile.Profile{
			Groups:  profile.NewIDSet(1, 2, 3),
			Friends: profile.NewIDSet(),
			Music:   "rock pop",
		}, 25, 35)
		cand := &profile.Profile{
			Groups:  profile.NewIDSet(2, 3, 4),
			Friends: profile.NewIDSet(),
			Age:     30,
			Music:   "rocky poppy",
		}

		b := Explain(cand, ref, w)
		assert.Equal(t, 2.0, b.Groups)
		assert.Equal(t, 0.0, b.Friends)
		// {"ro","po"} vs {"roc","pop"}
		assert.Equal(t, 0.0, b.Music)
		assert.Equal(t, 0.0, b.Books)
		assert.Equal(t, 5.0, b.Age)
		assert.Equal(t, 7.0, Score(cand, ref, w))
	})
}

func TestScoreLinearOverlap(t *testing.T) {
	t.Parallel()

	w := Weights{GroupUnit: 1.5, FriendUnit: 2}
	for n := 0; n <= 5; n++ {
		shared := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			shared = append(shared, int64(i+1))
		}

		ref := reference(&profile.Profile{
			Groups:  profile.NewIDSet(append(shared, 100, 101)...),
			Friends: profile.NewIDSet(shared...),
		}, 0, 0)
		cand := &profile.Profile{
			Groups:  profile.NewIDSet(append(shared, 200)...),
			Friends: profile.NewIDSet(append(shared, 300)...),
			Age:     profile.UnknownAge,
		}

		b := Explain(cand, ref, w)
		assert.Equal(t, float64(n)*1.5, b.Groups)
		assert.Equal(t, float64(n)*2, b.Friends)
	}
}

func TestScoreAge(t *testing.T) {
	t.Parallel()

	w := Weights{Age: 5}
	tests := []struct {
		name string
		age  profile.Age
		ref  *profile.Reference
		want float64
	}{
		{name: "inside", age: 30, ref: reference(&profile.Profile{}, 25, 35), want: 5},
		{name: "lower bound", age: 25, ref: reference(&profile.Profile{}, 25, 35), want: 5},
		{name: "upper bound", age: 35, ref: reference(&profile.Profile{}, 25, 35), want: 5},
		{name: "outside", age: 36, ref: reference(&profile.Profile{}, 25, 35), want: 0},
		{name: "unknown", age: profile.UnknownAge, ref: reference(&profile.Profile{}, 0, 100), want: 0},
		{name: "inverted", age: 30, ref: reference(&profile.Profile{}, 35, 25), want: 0},
		{name: "missing", age: 30, ref: profile.NewReference(&profile.Profile{}, 15), want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Score(&profile.Profile{Age: tt.age}, tt.ref, w))
		})
	}
}

func TestScoreDeterministicAndNonNegative(t *testing.T) {
	t.Parallel()

	ref := reference(&profile.Profile{
		Groups:  profile.NewIDSet(1, 2, 3),
		Friends: profile.NewIDSet(10, 11),
		Music:   "rock jazz blues",
		Books:   "tolstoy chekhov",
	}, 20, 30)
	cand := &profile.Profile{
		Groups:  profile.NewIDSet(3, 4),
		Friends: profile.NewIDSet(11),
		Music:   "rocks jazzy",
		Books:   "tolstoy",
		Age:     22,
	}

	first := Score(cand, ref, DefaultWeights())
	assert.GreaterOrEqual(t, first, 0.0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(cand, ref, DefaultWeights()))
	}

	assert.Equal(t, 0.0, Score(nil, ref, DefaultWeights()))
	assert.Equal(t, 0.0, Score(cand, nil, DefaultWeights()))
}

func TestRankAndSelect(t *testing.T) {
	t.Parallel()

	ref := reference(&profile.Profile{Groups: profile.NewIDSet()}, 0, 0)
	for i := int64(1); i <= 100; i++ {
		ref.Groups[i] = struct{}{}
	}

	// candidate i shares i groups, arrival order shuffled by a fixed stride.
	candidates := make([]*profile.Profile, 0, 25)
	for i := 0; i < 25; i++ {
		shared := (i*7)%25 + 1
		groups := profile.NewIDSet()
		for g := 1; g <= shared; g++ {
			groups[int64(g)] = struct{}{}
		}
		candidates = append(candidates, &profile.Profile{ID: int64(shared), Groups: groups, Age: profile.UnknownAge})
	}

	selected := RankAndSelect(ref, candidates, 10, unitWeights())

	require.Len(t, selected, 11)
	assert.Equal(t, 25.0, selected[0].Score)
	assert.Equal(t, int64(25), selected[0].ID)
	for i := 1; i < len(selected); i++ {
		assert.Greater(t, selected[i-1].Score, selected[i].Score)
	}
	assert.Equal(t, 15.0, selected[len(selected)-1].Score)

	// The input slice order is left untouched.
	assert.Equal(t, int64(1), candidates[0].ID)
}

func TestRankAndSelectEdgeCases(t *testing.T) {
	t.Parallel()

	ref := reference(&profile.Profile{}, 0, 0)

	assert.Empty(t, RankAndSelect(ref, nil, 10, unitWeights()))

	few := []*profile.Profile{{ID: 1}, {ID: 2}}
	assert.Len(t, RankAndSelect(ref, few, 10, unitWeights()), 2)

	assert.Len(t, RankAndSelect(ref, few, -3, unitWeights()), 1)
	assert.Equal(t, 11, SelectionWidth(10))
}

func TestRankAndSelectTiesAreDeterministic(t *testing.T) {
	t.Parallel()

	ref := reference(&profile.Profile{}, 0, 0)
	candidates := []*profile.Profile{{ID: 1}, {ID: 2}, {ID: 3}}

	// Equal scores keep arrival order in the ascending sort; the reversal then
	// puts the last arrival first.
	selected := RankAndSelect(ref, candidates, 5, unitWeights())
	require.Len(t, selected, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{selected[0].ID, selected[1].ID, selected[2].ID})
}
