// Package gateway is the data access layer for confessions and comments.
package gateway

import (
	"context"
	"errors"

	"masterboxer.com/confessly/models"
)

var ErrNotFound = errors.New("not found")

type Gateway interface {
	ListConfessions(ctx context.Context, q models.ConfessionQuery) ([]models.Confession, error)
	GetConfession(ctx context.Context, id string) (models.Confession, error)
	GetConfessionsByIDs(ctx context.Context, ids []string) ([]models.Confession, error)
	InsertConfession(ctx context.Context, c models.NewConfession) (models.Confession, error)
	// AdjustCounters applies the deltas atomically, clamping each counter at zero.
	AdjustCounters(ctx context.Context, id string, delta models.CounterDelta) (models.Confession, error)
	DeleteConfession(ctx context.Context, id string) error
	ListMoodSamples(ctx context.Context) ([]models.MoodSample, error)
	ListHighlyReported(ctx context.Context, minReports int) ([]models.Confession, error)

	ListComments(ctx context.Context, confessionID string) ([]models.Comment, error)
	GetComment(ctx context.Context, id string) (models.Comment, error)
	InsertComment(ctx context.Context, c models.NewComment) (models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
