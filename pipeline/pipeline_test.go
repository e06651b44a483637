package pipeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterboxer.com/confessly/models"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func post(id string, likes int, mood models.Mood, age time.Duration, tags ...string) models.Confession {
	return models.Confession{
		ID:        id,
		Text:      "text of " + id,
		Mood:      mood,
		Tags:      tags,
		LikeCount: likes,
		CreatedAt: base.Add(-age),
	}
}

func likes(posts []models.Confession) []int {
	out := make([]int, len(posts))
	for i, p := range posts {
		out[i] = p.LikeCount
	}
	return out
}

func ids(posts []models.Confession) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestApplyMostLikedScenario(t *testing.T) {
	posts := []models.Confession{
		post("a", 5, models.MoodHappy, time.Hour),
		post("b", 2, models.MoodSad, 2*time.Hour),
		post("c", 8, models.MoodHappy, 3*time.Hour),
	}

	got := Apply(posts, Options{SortBy: models.SortMostLiked})
	assert.Equal(t, []int{8, 5, 2}, likes(got))

	happy := Apply(posts, Options{SortBy: models.SortMostLiked, Mood: "happy"})
	assert.Equal(t, []int{8, 5}, likes(happy))

	happyLatest := Apply(posts, Options{SortBy: models.SortLatest, Mood: "happy"})
	assert.Equal(t, []int{5, 8}, likes(happyLatest))
}

func TestApplyTagFilter(t *testing.T) {
	posts := []models.Confession{
		post("first", 0, models.MoodLove, time.Minute, "family", "hope"),
		post("second", 0, models.MoodLove, 2*time.Minute, "career"),
		post("third", 0, models.MoodLove, 3*time.Minute, "family"),
	}

	got := Apply(posts, Options{Tag: "family"})
	assert.Equal(t, []string{"first", "third"}, ids(got))
}

func TestApplySearch(t *testing.T) {
	posts := []models.Confession{
		{ID: "text-hit", Text: "I Miss my FAMILY", CreatedAt: base},
		{ID: "tag-hit", Text: "nothing here", Tags: []string{"family"}, CreatedAt: base.Add(-time.Minute)},
		{ID: "tag-case-miss", Text: "nothing here", Tags: []string{"Family"}, CreatedAt: base.Add(-2 * time.Minute)},
		{ID: "miss", Text: "unrelated", CreatedAt: base.Add(-3 * time.Minute)},
	}

	got := Apply(posts, Options{Search: "family"})
	assert.Equal(t, []string{"text-hit", "tag-hit"}, ids(got))
}

func TestApplyFiltersAreConjunctive(t *testing.T) {
	posts := []models.Confession{
		post("match", 1, models.MoodSad, time.Minute, "regret"),
		post("wrong-mood", 1, models.MoodHappy, time.Minute, "regret"),
		post("wrong-tag", 1, models.MoodSad, time.Minute, "hope"),
	}

	got := Apply(posts, Options{Mood: "sad", Tag: "regret"})
	assert.Equal(t, []string{"match"}, ids(got))
}

func TestApplyTrendingTiebreak(t *testing.T) {
	posts := []models.Confession{
		post("old-3", 3, models.MoodNumb, 5*time.Hour),
		post("new-3", 3, models.MoodNumb, time.Hour),
		post("top", 9, models.MoodNumb, 10*time.Hour),
		post("zero", 0, models.MoodNumb, 0),
	}

	got := Apply(posts, Options{SortBy: models.SortTrending})
	assert.Equal(t, []string{"top", "new-3", "old-3", "zero"}, ids(got))
}

func TestApplyCapsAtPageSize(t *testing.T) {
	var posts []models.Confession
	for i := 0; i < 75; i++ {
		posts = append(posts, post(fmt.Sprintf("p%d", i), i, models.MoodHappy, time.Duration(i)*time.Minute))
	}

	got := Apply(posts, Options{SortBy: models.SortLatest})
	require.Len(t, got, models.PageSize)
	assert.Equal(t, "p0", got[0].ID)
	assert.Equal(t, "p49", got[49].ID)

	got = Apply(posts, Options{SortBy: models.SortLatest, Limit: 500})
	assert.Len(t, got, models.PageSize)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	posts := []models.Confession{
		post("a", 1, models.MoodHappy, time.Hour),
		post("b", 2, models.MoodHappy, 0),
	}
	Apply(posts, Options{SortBy: models.SortMostLiked})
	assert.Equal(t, []string{"a", "b"}, ids(posts))
}

func TestApplyOrderingProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	moods := []models.Mood{models.MoodHappy, models.MoodSad, models.MoodLove}
	tags := []string{"family", "career", "hope"}

	for round := 0; round < 50; round++ {
		var posts []models.Confession
		n := rng.Intn(120)
		for i := 0; i < n; i++ {
			posts = append(posts, post(
				fmt.Sprintf("r%d-%d", round, i),
				rng.Intn(6),
				moods[rng.Intn(len(moods))],
				time.Duration(rng.Intn(1000))*time.Minute,
				tags[rng.Intn(len(tags))],
			))
		}
		opts := Options{Mood: string(moods[rng.Intn(len(moods))])}
		if rng.Intn(2) == 0 {
			opts.Tag = tags[rng.Intn(len(tags))]
		}

		matching := 0
		for _, p := range posts {
			if Matches(p, opts) {
				matching++
			}
		}

		opts.SortBy = models.SortMostLiked
		got := Apply(posts, opts)
		assert.LessOrEqual(t, len(got), min(models.PageSize, matching))
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].LikeCount, got[i].LikeCount)
		}

		opts.SortBy = models.SortTrending
		got = Apply(posts, opts)
		assert.LessOrEqual(t, len(got), min(models.PageSize, matching))
		for i := 1; i < len(got); i++ {
			a, b := got[i-1], got[i]
			ok := a.LikeCount > b.LikeCount ||
				(a.LikeCount == b.LikeCount && !a.CreatedAt.Before(b.CreatedAt))
			assert.True(t, ok, "trending order broken at %d", i)
		}
	}
}

func TestSortByReports(t *testing.T) {
	posts := []models.Confession{
		{ID: "a", ReportCount: 1},
		{ID: "b", ReportCount: 4},
		{ID: "c", ReportCount: 0},
		{ID: "d", ReportCount: 4},
	}
	got := SortByReports(posts)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
	assert.Equal(t, "a", posts[0].ID)
}
