package services

import (
	"context"

	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/models"
)

func (s *ConfessionService) ListComments(ctx context.Context, confessionID string) ([]models.Comment, error) {
	return cache.Get(ctx, s.cache, commentsKey(confessionID), func(ctx context.Context) ([]models.Comment, error) {
		return s.gw.ListComments(ctx, confessionID)
	})
}

func (s *ConfessionService) CreateComment(ctx context.Context, device string, in models.NewComment) (models.Comment, cache.Notification, error) {
	if err := requireDevice(device); err != nil {
		return models.Comment{}, cache.Notification{}, err
	}
	in.DeviceID = device
	if err := in.Normalize(); err != nil {
		return models.Comment{}, cache.Notification{}, err
	}

	var created models.Comment
	n, err := s.cache.Mutate(ctx, cache.Mutation{
		Name: "create-comment",
		Run: func(ctx context.Context) error {
			c, err := s.gw.InsertComment(ctx, in)
			created = c
			return err
		},
		Invalidates: []cache.Key{commentsKey(in.ConfessionID)},
		Success:     "Comment added",
		Failure:     "Failed to add comment",
	})
	if err != nil {
		return models.Comment{}, n, err
	}
	return created, n, nil
}

// DeleteComment is allowed for the device that wrote the comment, or for
// an admin.
func (s *ConfessionService) DeleteComment(ctx context.Context, device, commentID string, admin bool) (cache.Notification, error) {
	if !admin {
		if err := requireDevice(device); err != nil {
			return cache.Notification{}, err
		}
	}

	c, err := s.gw.GetComment(ctx, commentID)
	if err != nil {
		return cache.Notification{}, err
	}
	if !admin && (c.DeviceID == "" || c.DeviceID != device) {
		return cache.Notification{}, ErrForbidden
	}

	return s.cache.Mutate(ctx, cache.Mutation{
		Name: "delete-comment",
		Run: func(ctx context.Context) error {
			return s.gw.DeleteComment(ctx, commentID)
		},
		Invalidates: []cache.Key{commentsKey(c.ConfessionID)},
		Success:     "Comment deleted",
		Failure:     "Failed to delete comment",
	})
}
