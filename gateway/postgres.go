package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"masterboxer.com/confessly/models"
)

const confessionColumns = `id, text, mood, tags, nickname, device_id, created_at, like_count, report_count`

const commentColumns = `id, confession_id, text, device_id, created_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfession(rs rowScanner) (models.Confession, error) {
	var c models.Confession
	var mood string
	var tags []string
	if err := rs.Scan(
		&c.ID,
		&c.Text,
		&mood,
		pq.Array(&tags),
		&c.Nickname,
		&c.DeviceID,
		&c.CreatedAt,
		&c.LikeCount,
		&c.ReportCount,
	); err != nil {
		return c, err
	}
	c.Mood = models.NormalizeMood(mood)
	if tags == nil {
		tags = []string{}
	}
	c.Tags = tags
	return c, nil
}

func scanComment(rs rowScanner) (models.Comment, error) {
	var c models.Comment
	err := rs.Scan(&c.ID, &c.ConfessionID, &c.Text, &c.DeviceID, &c.CreatedAt)
	return c, err
}

func collectConfessions(rows *sql.Rows) ([]models.Confession, error) {
	defer rows.Close()

	confessions := []models.Confession{}
	for rows.Next() {
		c, err := scanConfession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan confession: %w", err)
		}
		confessions = append(confessions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate confessions: %w", err)
	}
	return confessions, nil
}

// validID filters out ids that can never match a UUID primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildListQuery(q models.ConfessionQuery) (string, []any) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Mood != "" {
		where = append(where, "mood::text = "+arg(q.Mood))
	}
	if q.Tag != "" {
		where = append(where, arg(q.Tag)+" = ANY(tags)")
	}
	if q.Search != "" {
		like := arg("%" + escapeLike(q.Search) + "%")
		exact := arg(q.Search)
		where = append(where, fmt.Sprintf("(text ILIKE %s OR %s = ANY(tags))", like, exact))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + confessionColumns + " FROM confessions")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	switch q.SortBy {
	case models.SortMostLiked:
		sb.WriteString(" ORDER BY like_count DESC")
	case models.SortTrending:
		sb.WriteString(" ORDER BY like_count DESC, created_at DESC")
	default:
		sb.WriteString(" ORDER BY created_at DESC")
	}
	sb.WriteString(" LIMIT " + arg(q.EffectiveLimit()))

	return sb.String(), args
}

func (p *Postgres) ListConfessions(ctx context.Context, q models.ConfessionQuery) ([]models.Confession, error) {
	query, args := buildListQuery(q)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list confessions: %w", err)
	}
	return collectConfessions(rows)
}

func (p *Postgres) GetConfession(ctx context.Context, id string) (models.Confession, error) {
	if !validID(id) {
		return models.Confession{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `SELECT `+confessionColumns+` FROM confessions WHERE id = $1`, id)
	c, err := scanConfession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("get confession: %w", err)
	}
	return c, nil
}

func (p *Postgres) GetConfessionsByIDs(ctx context.Context, ids []string) ([]models.Confession, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Confession{}, nil
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT `+confessionColumns+` FROM confessions WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC`,
		pq.Array(valid))
	if err != nil {
		return nil, fmt.Errorf("get confessions by ids: %w", err)
	}
	return collectConfessions(rows)
}

func (p *Postgres) InsertConfession(ctx context.Context, n models.NewConfession) (models.Confession, error) {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO confessions (id, text, mood, tags, nickname, device_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING `+confessionColumns,
		uuid.NewString(),
		n.Text,
		n.Mood,
		pq.Array(n.Tags),
		n.Nickname,
		n.DeviceID,
	)
	c, err := scanConfession(row)
	if err != nil {
		return c, fmt.Errorf("insert confession: %w", err)
	}
	return c, nil
}

func (p *Postgres) AdjustCounters(ctx context.Context, id string, delta models.CounterDelta) (models.Confession, error) {
	if !validID(id) {
		return models.Confession{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `
		UPDATE confessions
		SET like_count = GREATEST(like_count + $2, 0),
		    report_count = GREATEST(report_count + $3, 0)
		WHERE id = $1
		RETURNING `+confessionColumns,
		id, delta.Likes, delta.Reports,
	)
	c, err := scanConfession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("adjust counters: %w", err)
	}
	return c, nil
}

func (p *Postgres) DeleteConfession(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM confessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete confession: %w", err)
	}
	return requireAffected(res)
}

func (p *Postgres) ListMoodSamples(ctx context.Context) ([]models.MoodSample, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT mood, created_at FROM confessions`)
	if err != nil {
		return nil, fmt.Errorf("list mood samples: %w", err)
	}
	defer rows.Close()

	samples := []models.MoodSample{}
	for rows.Next() {
		var mood string
		var s models.MoodSample
		if err := rows.Scan(&mood, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood sample: %w", err)
		}
		s.Mood = models.NormalizeMood(mood)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood samples: %w", err)
	}
	return samples, nil
}

func (p *Postgres) ListHighlyReported(ctx context.Context, minReports int) ([]models.Confession, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+confessionColumns+`
		FROM confessions
		WHERE report_count >= $1
		ORDER BY report_count DESC, created_at DESC`,
		minReports)
	if err != nil {
		return nil, fmt.Errorf("list highly reported: %w", err)
	}
	return collectConfessions(rows)
}

func (p *Postgres) ListComments(ctx context.Context, confessionID string) ([]models.Comment, error) {
	if !validID(confessionID) {
		return []models.Comment{}, nil
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE confession_id = $1
		ORDER BY created_at ASC`,
		confessionID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (p *Postgres) GetComment(ctx context.Context, id string) (models.Comment, error) {
	if !validID(id) {
		return models.Comment{}, ErrNotFound
	}
	c, err := scanComment(p.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (p *Postgres) InsertComment(ctx context.Context, n models.NewComment) (models.Comment, error) {
	if !validID(n.ConfessionID) {
		return models.Comment{}, ErrNotFound
	}
	c, err := scanComment(p.db.QueryRowContext(ctx, `
		INSERT INTO comments (id, confession_id, text, device_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING `+commentColumns,
		uuid.NewString(), n.ConfessionID, n.Text, n.DeviceID,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return c, ErrNotFound
		}
		return c, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (p *Postgres) DeleteComment(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
