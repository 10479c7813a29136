package matching

import (
	"sort"

	"github.com/spigell/vk-tinder/internal/profile"
)

// RankAndSelect scores every candidate against the reference and returns the best ones,
// highest score first.
//
// The selection is k+1 wide, so "top 10" yields 11 profiles.
func RankAndSelect(ref *profile.Reference, candidates []*profile.Profile, k int, w Weights) []*profile.Profile {
	if len(candidates) == 0 {
		return []*profile.Profile{}
	}

	if k < 0 {
		k = 0
	}

	scored := make([]*profile.Profile, len(candidates))
	copy(scored, candidates)

	for _, c := range scored {
		c.Score = Score(c, ref, w)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	width := SelectionWidth(k)
	if width > len(scored) {
		width = len(scored)
	}

	top := scored[len(scored)-width:]
	selected := make([]*profile.Profile, 0, width)
	for i := len(top) - 1; i >= 0; i-- {
		selected = append(selected, top[i])
	}

	return selected
}

// SelectionWidth is the number of profiles RankAndSelect returns for k.
func SelectionWidth(k int) int {
	return k + 1
}
