package stats

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterboxer.com/confessly/models"
)

func TestWindows(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2026, 5, 14, 16, 30, 0, 0, loc)
	today, week := Windows(now)
	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, loc), today)
	assert.Equal(t, time.Date(2026, 5, 7, 0, 0, 0, 0, loc), week)
}

func TestComputeBoundaries(t *testing.T) {
	now := time.Date(2026, 5, 14, 16, 30, 0, 0, time.UTC)
	today, week := Windows(now)

	samples := []models.MoodSample{
		{Mood: models.MoodHappy, CreatedAt: today},
		{Mood: models.MoodSad, CreatedAt: today.Add(-time.Second)},
		{Mood: models.MoodAngry, CreatedAt: week},
		{Mood: models.MoodNumb, CreatedAt: week.Add(-time.Second)},
	}

	got := Compute(samples, now)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, map[models.Mood]int{models.MoodHappy: 1}, got.TodayStats)
	assert.Equal(t, map[models.Mood]int{
		models.MoodHappy: 1,
		models.MoodSad:   1,
		models.MoodAngry: 1,
	}, got.WeekStats)
}

func TestComputeTodayIsSubsetOfWeek(t *testing.T) {
	now := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	var samples []models.MoodSample
	for i := 0; i < 200; i++ {
		m := models.Moods[i%len(models.Moods)].Value
		samples = append(samples, models.MoodSample{Mood: m, CreatedAt: now.Add(-time.Duration(i) * 90 * time.Minute)})
	}

	got := Compute(samples, now)
	for _, m := range models.Moods {
		assert.GreaterOrEqual(t, got.WeekStats[m.Value], got.TodayStats[m.Value], m.Value)
	}
	assert.Equal(t, 200, got.Total)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(4, 4))
}

func TestBreakdownUsesBucketSum(t *testing.T) {
	bucket := map[models.Mood]int{models.MoodLove: 1, models.MoodSad: 3}
	got := Breakdown(bucket)

	require.Len(t, got, len(models.Moods))
	assert.Equal(t, models.MoodHappy, got[0].Mood)
	for _, s := range got {
		switch s.Mood {
		case models.MoodLove:
			assert.Equal(t, 25, s.Percentage)
		case models.MoodSad:
			assert.Equal(t, 75, s.Percentage)
		default:
			assert.Zero(t, s.Percentage)
		}
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]models.Confession{
		{LikeCount: 2, ReportCount: 0},
		{LikeCount: 1, ReportCount: 1},
		{LikeCount: 4, ReportCount: 3},
	})
	assert.Equal(t, models.ModerationSummary{Total: 3, Reported: 2, HighlyReported: 1, TotalLikes: 7}, got)
}

func TestResolveLocation(t *testing.T) {
	assert.Equal(t, time.Local, ResolveLocation(""))
	assert.Equal(t, time.Local, ResolveLocation("Not/AZone"))
	assert.Equal(t, "Europe/Berlin", ResolveLocation("Europe/Berlin").String())
}
