package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMatches(t *testing.T) {
	feed := NewKey("confessions", "latest", "happy", "", "")

	assert.True(t, feed.Matches(NewKey("confessions")))
	assert.True(t, feed.Matches(NewKey("confessions", "latest")))
	assert.True(t, feed.Matches(feed))
	assert.False(t, feed.Matches(NewKey("confessions", "trending")))
	assert.False(t, feed.Matches(NewKey("confession")))
	assert.False(t, NewKey("confessions").Matches(feed))
	assert.False(t, feed.Matches(Key{}))
}

func TestKeyIDIsInjective(t *testing.T) {
	a := NewKey("comments", "a/b")
	b := NewKey("comments", "a", "b")
	assert.NotEqual(t, a.id(), b.id())
	assert.Equal(t, "comments/a/b", a.String())
}
