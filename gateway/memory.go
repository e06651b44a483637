package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/pipeline"
)

// Memory keeps everything in process and answers list queries with the
// in-memory pipeline.
type Memory struct {
	mu          sync.RWMutex
	confessions map[string]models.Confession
	comments    map[string]models.Comment
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		confessions: make(map[string]models.Confession),
		comments:    make(map[string]models.Comment),
		now:         time.Now,
	}
}

// WithClock replaces the creation-time source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Seed stores confessions as given, keeping their ids and timestamps.
func (m *Memory) Seed(confessions ...models.Confession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range confessions {
		m.confessions[c.ID] = cloneConfession(c)
	}
}

func cloneConfession(c models.Confession) models.Confession {
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)
	c.Tags = tags
	return c
}

func (m *Memory) snapshot() []models.Confession {
	out := make([]models.Confession, 0, len(m.confessions))
	for _, c := range m.confessions {
		out = append(out, cloneConfession(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) ListConfessions(_ context.Context, q models.ConfessionQuery) ([]models.Confession, error) {
	m.mu.RLock()
	all := m.snapshot()
	m.mu.RUnlock()
	return pipeline.Apply(all, pipeline.FromQuery(q)), nil
}

func (m *Memory) GetConfession(_ context.Context, id string) (models.Confession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.confessions[id]
	if !ok {
		return models.Confession{}, ErrNotFound
	}
	return cloneConfession(c), nil
}

func (m *Memory) GetConfessionsByIDs(_ context.Context, ids []string) ([]models.Confession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Confession{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := m.confessions[id]; ok {
			out = append(out, cloneConfession(c))
		}
	}
	pipeline.Sort(out, models.SortLatest)
	return out, nil
}

func (m *Memory) InsertConfession(_ context.Context, n models.NewConfession) (models.Confession, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	c := models.Confession{
		ID:        uuid.NewString(),
		Text:      n.Text,
		Mood:      models.NormalizeMood(n.Mood),
		Tags:      tags,
		Nickname:  n.Nickname,
		DeviceID:  n.DeviceID,
		CreatedAt: m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.confessions[c.ID] = cloneConfession(c)
	return cloneConfession(c), nil
}

func (m *Memory) AdjustCounters(_ context.Context, id string, delta models.CounterDelta) (models.Confession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.confessions[id]
	if !ok {
		return models.Confession{}, ErrNotFound
	}
	c.LikeCount = max(c.LikeCount+delta.Likes, 0)
	c.ReportCount = max(c.ReportCount+delta.Reports, 0)
	m.confessions[id] = c
	return cloneConfession(c), nil
}

func (m *Memory) DeleteConfession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.confessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.confessions, id)
	for cid, c := range m.comments {
		if c.ConfessionID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *Memory) ListMoodSamples(_ context.Context) ([]models.MoodSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.MoodSample, 0, len(m.confessions))
	for _, c := range m.confessions {
		out = append(out, models.MoodSample{Mood: c.Mood, CreatedAt: c.CreatedAt})
	}
	return out, nil
}

func (m *Memory) ListHighlyReported(_ context.Context, minReports int) ([]models.Confession, error) {
	m.mu.RLock()
	all := m.snapshot()
	m.mu.RUnlock()

	out := []models.Confession{}
	for _, c := range all {
		if c.ReportCount >= minReports {
			out = append(out, c)
		}
	}
	pipeline.Sort(out, models.SortLatest)
	return pipeline.SortByReports(out), nil
}

func (m *Memory) ListComments(_ context.Context, confessionID string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Comment{}
	for _, c := range m.comments {
		if c.ConfessionID == confessionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetComment(_ context.Context, id string) (models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) InsertComment(_ context.Context, n models.NewComment) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.confessions[n.ConfessionID]; !ok {
		return models.Comment{}, ErrNotFound
	}
	c := models.Comment{
		ID:           uuid.NewString(),
		ConfessionID: n.ConfessionID,
		Text:         n.Text,
		DeviceID:     n.DeviceID,
		CreatedAt:    m.now(),
	}
	m.comments[c.ID] = c
	return c, nil
}

func (m *Memory) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}
