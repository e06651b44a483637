package models

import "time"

type MoodSample struct {
	Mood      Mood      `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}

type MoodStats struct {
	TodayStats map[Mood]int `json:"today_stats"`
	WeekStats  map[Mood]int `json:"week_stats"`
	Total      int          `json:"total"`
}

type MoodShare struct {
	Mood       Mood   `json:"mood"`
	Emoji      string `json:"emoji"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type ModerationSummary struct {
	Total          int `json:"total_confessions"`
	Reported       int `json:"reported"`
	HighlyReported int `json:"highly_reported"`
	TotalLikes     int `json:"total_likes"`
}
