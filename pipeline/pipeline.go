// Package pipeline filters, sorts and caps confession lists in memory.
package pipeline

import (
	"sort"
	"strings"

	"masterboxer.com/confessly/models"
)

type Options struct {
	Mood   string
	Tag    string
	Search string
	SortBy models.SortOption
	Limit  int
}

func FromQuery(q models.ConfessionQuery) Options {
	return Options{
		Mood:   q.Mood,
		Tag:    q.Tag,
		Search: q.Search,
		SortBy: q.SortBy,
		Limit:  q.EffectiveLimit(),
	}
}

// Apply runs mood, tag and search filters, sorts, then caps the result.
// The input slice is left untouched.
func Apply(posts []models.Confession, opts Options) []models.Confession {
	out := make([]models.Confession, 0, len(posts))
	for _, p := range posts {
		if Matches(p, opts) {
			out = append(out, p)
		}
	}

	Sort(out, opts.SortBy)

	limit := opts.Limit
	if limit <= 0 || limit > models.PageSize {
		limit = models.PageSize
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func Matches(p models.Confession, opts Options) bool {
	if opts.Mood != "" && string(p.Mood) != opts.Mood {
		return false
	}
	if opts.Tag != "" && !p.HasTag(opts.Tag) {
		return false
	}
	if opts.Search != "" && !matchesSearch(p, opts.Search) {
		return false
	}
	return true
}

// Text is matched case-insensitively, tags only on exact equality.
func matchesSearch(p models.Confession, q string) bool {
	if strings.Contains(strings.ToLower(p.Text), strings.ToLower(q)) {
		return true
	}
	return p.HasTag(q)
}

func Sort(posts []models.Confession, by models.SortOption) {
	switch by {
	case models.SortMostLiked:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].LikeCount > posts[j].LikeCount
		})
	case models.SortTrending:
		sort.SliceStable(posts, func(i, j int) bool {
			if posts[i].LikeCount != posts[j].LikeCount {
				return posts[i].LikeCount > posts[j].LikeCount
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}
}

// SortByReports orders a copy of posts by report count, highest first.
func SortByReports(posts []models.Confession) []models.Confession {
	out := make([]models.Confession, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReportCount > out[j].ReportCount
	})
	return out
}
