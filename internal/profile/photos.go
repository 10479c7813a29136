package profile

import "sort"

const topPhotosCount = 3

type Photo struct {
	ID    int64
	Likes int
	URL   string
}

// TopPhotos returns URLs of up to three most liked photos, most liked first.
// Photos are sorted ascending by likes (stable), the last three taken and reversed.
func TopPhotos(photos []Photo) []string {
	sorted := make([]Photo, len(photos))
	copy(sorted, photos)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes < sorted[j].Likes
	})

	if len(sorted) > topPhotosCount {
		sorted = sorted[len(sorted)-topPhotosCount:]
	}

	urls := make([]string, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		urls = append(urls, sorted[i].URL)
	}

	return urls
}
