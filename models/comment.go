package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Comment struct {
	ID           string    `json:"id"`
	ConfessionID string    `json:"confession_id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	DeviceID     string    `json:"-"`
}

type NewComment struct {
	ConfessionID string `json:"confession_id"`
	Text         string `json:"text"`
	DeviceID     string `json:"-"`
}

func (n *NewComment) Normalize() error {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	if utf8.RuneCountInString(n.Text) > MaxCommentLength {
		return fmt.Errorf("%w: comment must be at most %d characters", ErrValidation, MaxCommentLength)
	}
	if n.ConfessionID == "" {
		return fmt.Errorf("%w: confession_id is required", ErrValidation)
	}
	return nil
}
