package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxConfessionLength   = 300
	MaxCommentLength      = 150
	MaxNicknameLength     = 30
	MaxTags               = 5
	PageSize              = 50
	DefaultNickname       = "Anonymous"
	HighlyReportedMinimum = 3
)

var ErrValidation = errors.New("validation failed")

type Confession struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Mood        Mood      `json:"mood"`
	Tags        []string  `json:"tags"`
	Nickname    string    `json:"nickname"`
	CreatedAt   time.Time `json:"created_at"`
	LikeCount   int       `json:"like_count"`
	ReportCount int       `json:"report_count"`
	DeviceID    string    `json:"-"`
}

func (c Confession) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type NewConfession struct {
	Text     string   `json:"text"`
	Mood     string   `json:"mood"`
	Tags     []string `json:"tags"`
	Nickname string   `json:"nickname"`
	DeviceID string   `json:"-"`
}

// Normalize trims and bounds the submission in place.
func (n *NewConfession) Normalize() error {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(n.Text) > MaxConfessionLength {
		return fmt.Errorf("%w: text must be at most %d characters", ErrValidation, MaxConfessionLength)
	}

	if n.Mood == "" {
		return fmt.Errorf("%w: mood is required", ErrValidation)
	}
	if !IsValidMood(n.Mood) {
		return fmt.Errorf("%w: unknown mood %q", ErrValidation, n.Mood)
	}

	tags, err := NormalizeTags(n.Tags)
	if err != nil {
		return err
	}
	n.Tags = tags

	n.Nickname = strings.TrimSpace(n.Nickname)
	if n.Nickname == "" {
		n.Nickname = DefaultNickname
	}
	if utf8.RuneCountInString(n.Nickname) > MaxNicknameLength {
		return fmt.Errorf("%w: nickname must be at most %d characters", ErrValidation, MaxNicknameLength)
	}
	return nil
}

// NormalizeTags lower-cases, trims and deduplicates tags, keeping first-seen order.
func NormalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed", ErrValidation, MaxTags)
	}
	return tags, nil
}

type SortOption string

const (
	SortLatest    SortOption = "latest"
	SortMostLiked SortOption = "most_liked"
	SortTrending  SortOption = "trending"
)

func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortMostLiked, SortTrending:
		return SortOption(s)
	default:
		return SortLatest
	}
}

type ConfessionQuery struct {
	SortBy SortOption
	Mood   string
	Tag    string
	Search string
	Limit  int
}

// EffectiveLimit caps the requested limit at the page size.
func (q ConfessionQuery) EffectiveLimit() int {
	if q.Limit <= 0 || q.Limit > PageSize {
		return PageSize
	}
	return q.Limit
}

type CounterDelta struct {
	Likes   int
	Reports int
}
