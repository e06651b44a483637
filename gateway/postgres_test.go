package gateway

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterboxer.com/confessly/models"
)

const testID = "6f1c2a34-8b1e-4c6e-9d55-0a7c1f2b3c4d"

var confessionCols = []string{"id", "text", "mood", "tags", "nickname", "device_id", "created_at", "like_count", "report_count"}

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func confessionRow(id, mood string, tags string, likes, reports int64, at time.Time) []driver.Value {
	return []driver.Value{id, "some text", mood, []byte(tags), "Anonymous", "device-1", at, likes, reports}
}

func TestBuildListQuery(t *testing.T) {
	query, args := buildListQuery(models.ConfessionQuery{})
	assert.Equal(t, "SELECT "+confessionColumns+" FROM confessions ORDER BY created_at DESC LIMIT $1", query)
	assert.Equal(t, []any{models.PageSize}, args)

	query, args = buildListQuery(models.ConfessionQuery{
		SortBy: models.SortTrending,
		Mood:   "sad",
		Tag:    "family",
		Search: "50%_off",
		Limit:  10,
	})
	assert.Equal(t, "SELECT "+confessionColumns+" FROM confessions"+
		" WHERE mood::text = $1 AND $2 = ANY(tags) AND (text ILIKE $3 OR $4 = ANY(tags))"+
		" ORDER BY like_count DESC, created_at DESC LIMIT $5", query)
	assert.Equal(t, []any{"sad", "family", `%50\%\_off%`, "50%_off", 10}, args)

	query, _ = buildListQuery(models.ConfessionQuery{SortBy: models.SortMostLiked})
	assert.Contains(t, query, "ORDER BY like_count DESC LIMIT")
}

func TestPostgresListConfessions(t *testing.T) {
	p, mock := newMock(t)
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM confessions WHERE $1 = ANY(tags) ORDER BY created_at DESC LIMIT $2")).
		WithArgs("family", models.PageSize).
		WillReturnRows(sqlmock.NewRows(confessionCols).
			AddRow(confessionRow(testID, "happy", "{family,hope}", 3, 0, at)...).
			AddRow(confessionRow(testID, "bogus", "{family}", 1, 2, at)...))

	got, err := p.ListConfessions(context.Background(), models.ConfessionQuery{Tag: "family"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"family", "hope"}, got[0].Tags)
	assert.Equal(t, models.MoodHappy, got[1].Mood, "unknown moods fall back to the first mood")
	assert.Equal(t, 2, got[1].ReportCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetConfession(t *testing.T) {
	p, mock := newMock(t)
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM confessions WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(confessionCols).AddRow(confessionRow(testID, "love", "{}", 0, 0, at)...))
	mock.ExpectQuery(regexp.QuoteMeta("FROM confessions WHERE id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(confessionCols))

	c, err := p.GetConfession(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, models.MoodLove, c.Mood)
	assert.Equal(t, []string{}, c.Tags)
	assert.Equal(t, "device-1", c.DeviceID)

	_, err = p.GetConfession(context.Background(), testID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.GetConfession(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdjustCounters(t *testing.T) {
	p, mock := newMock(t)
	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SET like_count = GREATEST(like_count + $2, 0)")).
		WithArgs(testID, -1, 0).
		WillReturnRows(sqlmock.NewRows(confessionCols).AddRow(confessionRow(testID, "sad", "{}", 0, 0, at)...))

	c, err := p.AdjustCounters(context.Background(), testID, models.CounterDelta{Likes: -1})
	require.NoError(t, err)
	assert.Zero(t, c.LikeCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertConfession(t *testing.T) {
	p, mock := newMock(t)
	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO confessions")).
		WithArgs(sqlmock.AnyArg(), "hello", "numb", sqlmock.AnyArg(), "Anonymous", "device-1").
		WillReturnRows(sqlmock.NewRows(confessionCols).AddRow(confessionRow(testID, "numb", "{regret}", 0, 0, at)...))

	c, err := p.InsertConfession(context.Background(), models.NewConfession{
		Text: "hello", Mood: "numb", Tags: []string{"regret"}, Nickname: "Anonymous", DeviceID: "device-1",
	})
	require.NoError(t, err)
	assert.Equal(t, testID, c.ID)
	assert.Equal(t, []string{"regret"}, c.Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteConfessionMissing(t *testing.T) {
	p, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM confessions WHERE id = $1")).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := p.DeleteConfession(context.Background(), testID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListComments(t *testing.T) {
	p, mock := newMock(t)
	at := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "confession_id", "text", "device_id", "created_at"}).
			AddRow("c1", testID, "first", "d", at).
			AddRow("c2", testID, "second", "d", at.Add(time.Second)))

	got, err := p.ListComments(context.Background(), testID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetConfessionsByIDsSkipsInvalid(t *testing.T) {
	p, mock := newMock(t)

	got, err := p.GetConfessionsByIDs(context.Background(), []string{"nope", ""})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
