// Package stats derives mood aggregates and moderation summaries.
package stats

import (
	"math"
	"time"

	"masterboxer.com/confessly/models"
)

// Windows returns local midnight of now and the midnight seven days earlier.
func Windows(now time.Time) (todayStart, weekStart time.Time) {
	todayStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart = todayStart.AddDate(0, 0, -7)
	return todayStart, weekStart
}

// Compute buckets samples into overlapping today and week windows.
func Compute(samples []models.MoodSample, now time.Time) models.MoodStats {
	todayStart, weekStart := Windows(now)

	out := models.MoodStats{
		TodayStats: make(map[models.Mood]int),
		WeekStats:  make(map[models.Mood]int),
		Total:      len(samples),
	}
	for _, s := range samples {
		if !s.CreatedAt.Before(todayStart) {
			out.TodayStats[s.Mood]++
		}
		if !s.CreatedAt.Before(weekStart) {
			out.WeekStats[s.Mood]++
		}
	}
	return out
}

func BucketTotal(bucket map[models.Mood]int) int {
	total := 0
	for _, n := range bucket {
		total += n
	}
	return total
}

func Percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// Breakdown lists every mood in display order with its share of the bucket.
func Breakdown(bucket map[models.Mood]int) []models.MoodShare {
	total := BucketTotal(bucket)
	out := make([]models.MoodShare, 0, len(models.Moods))
	for _, m := range models.Moods {
		count := bucket[m.Value]
		out = append(out, models.MoodShare{
			Mood:       m.Value,
			Emoji:      m.Emoji,
			Label:      m.Label,
			Count:      count,
			Percentage: Percentage(count, total),
		})
	}
	return out
}

func Summarize(posts []models.Confession) models.ModerationSummary {
	s := models.ModerationSummary{Total: len(posts)}
	for _, p := range posts {
		if p.ReportCount > 0 {
			s.Reported++
		}
		if p.ReportCount >= models.HighlyReportedMinimum {
			s.HighlyReported++
		}
		s.TotalLikes += p.LikeCount
	}
	return s
}

// ResolveLocation loads an IANA zone, falling back to the server zone.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
