package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/models"
)

func TestCreateAndListComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.post(t, "author", "text", "sad")

	first, n, err := f.svc.CreateComment(ctx, "a", models.NewComment{ConfessionID: c.ID, Text: " you're not alone "})
	require.NoError(t, err)
	assert.Equal(t, "Comment added", n.Message)
	assert.Equal(t, "you're not alone", first.Text)

	_, _, err = f.svc.CreateComment(ctx, "b", models.NewComment{ConfessionID: c.ID, Text: "same here"})
	require.NoError(t, err)

	list, err := f.svc.ListComments(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestCreateCommentRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.post(t, "author", "text", "sad")

	_, _, err := f.svc.CreateComment(ctx, "a", models.NewComment{ConfessionID: c.ID, Text: strings.Repeat("x", 151)})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, n, err := f.svc.CreateComment(ctx, "a", models.NewComment{ConfessionID: "gone", Text: "hi"})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Equal(t, "Failed to add comment", n.Message)
}

func TestDeleteCommentPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.post(t, "author", "text", "sad")
	mine, _, err := f.svc.CreateComment(ctx, "writer", models.NewComment{ConfessionID: c.ID, Text: "one"})
	require.NoError(t, err)
	other, _, err := f.svc.CreateComment(ctx, "writer", models.NewComment{ConfessionID: c.ID, Text: "two"})
	require.NoError(t, err)

	_, err = f.svc.ListComments(ctx, c.ID)
	require.NoError(t, err)

	_, err = f.svc.DeleteComment(ctx, "author", mine.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := f.svc.DeleteComment(ctx, "writer", mine.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Comment deleted", n.Message)

	_, err = f.svc.DeleteComment(ctx, "", other.ID, true)
	require.NoError(t, err)

	list, err := f.svc.ListComments(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.DeleteComment(ctx, "writer", mine.ID, false)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
