package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"masterboxer.com/confessly/cache"
	"masterboxer.com/confessly/events"
	"masterboxer.com/confessly/gateway"
	"masterboxer.com/confessly/models"
	"masterboxer.com/confessly/pipeline"
	"masterboxer.com/confessly/preferences"
	"masterboxer.com/confessly/stats"
)

const (
	kindConfessions = "confessions"
	kindConfession  = "confession"
	kindMoodStats   = "mood-stats"
	kindComments    = "comments"
)

// ConfessionService is what the HTTP layer talks to. Reads go through the
// query cache; writes run as cache mutations so the right queries are
// invalidated and a user-facing message is produced.
type ConfessionService struct {
	gw     gateway.Gateway
	cache  *cache.Cache
	prefs  *preferences.Store
	events events.Publisher
	alerts Alerter
	now    func() time.Time

	likes keyedMutex
}

func NewConfessionService(
	gw gateway.Gateway,
	c *cache.Cache,
	prefs *preferences.Store,
	pub events.Publisher,
	alerts Alerter,
) *ConfessionService {
	if pub == nil {
		pub = events.Noop{}
	}
	if alerts == nil {
		alerts = NoopAlerter{}
	}
	return &ConfessionService{
		gw:     gw,
		cache:  c,
		prefs:  prefs,
		events: pub,
		alerts: alerts,
		now:    time.Now,
	}
}

type LikeResult struct {
	Liked      bool              `json:"liked"`
	Confession models.Confession `json:"confession"`
}

type TrendingView struct {
	Confessions    []models.Confession `json:"confessions"`
	Stats          models.MoodStats    `json:"stats"`
	TodayBreakdown []models.MoodShare  `json:"today_breakdown"`
	WeekBreakdown  []models.MoodShare  `json:"week_breakdown"`
	Timezone       string              `json:"timezone"`
}

type AdminView struct {
	Summary     models.ModerationSummary `json:"summary"`
	Confessions []models.Confession      `json:"confessions"`
}

func confessionsKey(q models.ConfessionQuery) cache.Key {
	return cache.NewKey(kindConfessions, string(q.SortBy), q.Mood, q.Tag, q.Search)
}

func confessionKey(id string) cache.Key { return cache.NewKey(kindConfession, id) }
func commentsKey(id string) cache.Key   { return cache.NewKey(kindComments, id) }
func moodStatsKey(tz string) cache.Key  { return cache.NewKey(kindMoodStats, tz) }
func allOf(kind string) cache.Key       { return cache.NewKey(kind) }

func requireDevice(device string) error {
	if strings.TrimSpace(device) == "" {
		return ErrDeviceRequired
	}
	return nil
}

func normalizeQuery(q models.ConfessionQuery) models.ConfessionQuery {
	q.SortBy = models.ParseSortOption(string(q.SortBy))
	q.Mood = strings.ToLower(strings.TrimSpace(q.Mood))
	q.Tag = strings.ToLower(strings.TrimSpace(q.Tag))
	q.Search = strings.TrimSpace(q.Search)
	q.Limit = q.EffectiveLimit()
	return q
}

func (s *ConfessionService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now().UTC()
	if err := s.events.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Printf("[Events] %v", err)
	}
}

func (s *ConfessionService) ListConfessions(ctx context.Context, q models.ConfessionQuery) ([]models.Confession, error) {
	q = normalizeQuery(q)
	return cache.Get(ctx, s.cache, confessionsKey(q), func(ctx context.Context) ([]models.Confession, error) {
		return s.gw.ListConfessions(ctx, q)
	})
}

func (s *ConfessionService) GetConfession(ctx context.Context, id string) (models.Confession, error) {
	return cache.Get(ctx, s.cache, confessionKey(id), func(ctx context.Context) (models.Confession, error) {
		return s.gw.GetConfession(ctx, id)
	})
}

func (s *ConfessionService) CreateConfession(ctx context.Context, device string, in models.NewConfession) (models.Confession, cache.Notification, error) {
	if err := requireDevice(device); err != nil {
		return models.Confession{}, cache.Notification{}, err
	}
	in.DeviceID = device
	if err := in.Normalize(); err != nil {
		return models.Confession{}, cache.Notification{}, err
	}

	var created models.Confession
	n, err := s.cache.Mutate(ctx, cache.Mutation{
		Name: "create-confession",
		Run: func(ctx context.Context) error {
			c, err := s.gw.InsertConfession(ctx, in)
			created = c
			return err
		},
		Invalidates: []cache.Key{allOf(kindConfessions), allOf(kindMoodStats)},
		Success:     "Your confession has been shared anonymously",
		Failure:     "Failed to post confession. Please try again.",
	})
	if err != nil {
		return models.Confession{}, n, err
	}

	s.publish(ctx, events.Event{Type: events.ConfessionCreated, ConfessionID: created.ID, Mood: string(created.Mood)})
	return created, n, nil
}

// ToggleLike flips the device's like and moves like_count with it. Toggles
// for the same device and confession run one at a time; the preference is
// restored if the counter update fails.
func (s *ConfessionService) ToggleLike(ctx context.Context, device, id string) (LikeResult, cache.Notification, error) {
	if err := requireDevice(device); err != nil {
		return LikeResult{}, cache.Notification{}, err
	}

	unlock := s.likes.Lock(device + "\x00" + id)
	defer unlock()

	prefs := s.prefs.Device(device)
	wasLiked := prefs.ToggleLiked(ctx, id)
	delta := 1
	if wasLiked {
		delta = -1
	}

	var updated models.Confession
	n, err := s.cache.Mutate(ctx, cache.Mutation{
		Name: "like-confession",
		Run: func(ctx context.Context) error {
			c, err := s.gw.AdjustCounters(ctx, id, models.CounterDelta{Likes: delta})
			updated = c
			return err
		},
		Invalidates: []cache.Key{allOf(kindConfessions), confessionKey(id)},
		Failure:     "Couldn't update your like. Please try again.",
	})
	if err != nil {
		if wasLiked {
			prefs.AddLiked(ctx, id)
		} else {
			prefs.RemoveLiked(ctx, id)
		}
		return LikeResult{Liked: wasLiked}, n, err
	}

	return LikeResult{Liked: !wasLiked, Confession: updated}, n, nil
}

func (s *ConfessionService) Report(ctx context.Context, device, id string) (models.Confession, cache.Notification, error) {
	if err := requireDevice(device); err != nil {
		return models.Confession{}, cache.Notification{}, err
	}

	var updated models.Confession
	n, err := s.cache.Mutate(ctx, cache.Mutation{
		Name: "report-confession",
		Run: func(ctx context.Context) error {
			c, err := s.gw.AdjustCounters(ctx, id, models.CounterDelta{Reports: 1})
			updated = c
			return err
		},
		Invalidates: []cache.Key{allOf(kindConfessions), confessionKey(id)},
		Success:     "Report submitted. Thank you for keeping the community safe.",
		Failure:     "Failed to submit report. Please try again.",
	})
	if err != nil {
		return models.Confession{}, n, err
	}

	s.publish(ctx, events.Event{Type: events.ConfessionReported, ConfessionID: id, ReportCount: updated.ReportCount})

	if updated.ReportCount == models.HighlyReportedMinimum {
		if err := s.alerts.HighlyReported(context.WithoutCancel(ctx), updated); err != nil {
			log.Printf("[Moderation] alert for %s failed: %v", id, err)
		}
	}
	return updated, n, nil
}

// DeleteConfession removes a confession on behalf of the device that
// posted it.
func (s *ConfessionService) DeleteConfession(ctx context.Context, device, id string) (cache.Notification, error) {
	if err := requireDevice(device); err != nil {
		return cache.Notification{}, err
	}

	c, err := s.gw.GetConfession(ctx, id)
	if err != nil {
		return cache.Notification{}, err
	}
	if c.DeviceID == "" || c.DeviceID != device {
		return cache.Notification{}, ErrForbidden
	}
	return s.deleteConfession(ctx, id)
}

func (s *ConfessionService) AdminDeleteConfession(ctx context.Context, id string) (cache.Notification, error) {
	return s.deleteConfession(ctx, id)
}

func (s *ConfessionService) deleteConfession(ctx context.Context, id string) (cache.Notification, error) {
	n, err := s.cache.Mutate(ctx, cache.Mutation{
		Name: "delete-confession",
		Run: func(ctx context.Context) error {
			return s.gw.DeleteConfession(ctx, id)
		},
		Invalidates: []cache.Key{
			allOf(kindConfessions),
			confessionKey(id),
			allOf(kindMoodStats),
			commentsKey(id),
		},
		Success: "Confession deleted",
		Failure: "Failed to delete confession. Please try again.",
	})
	if err != nil {
		return n, err
	}

	s.publish(ctx, events.Event{Type: events.ConfessionDeleted, ConfessionID: id})
	return n, nil
}

// SavedConfessions returns the device's bookmarks, newest first. Ids whose
// confession no longer exists are dropped from the saved list.
func (s *ConfessionService) SavedConfessions(ctx context.Context, device string) ([]models.Confession, error) {
	if err := requireDevice(device); err != nil {
		return nil, err
	}

	prefs := s.prefs.Device(device)
	ids := prefs.Saved(ctx)
	if len(ids) == 0 {
		return []models.Confession{}, nil
	}

	found, err := s.gw.GetConfessionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load saved confessions: %w", err)
	}

	existing := make(map[string]struct{}, len(found))
	for _, c := range found {
		existing[c.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			prefs.RemoveSaved(ctx, id)
		}
	}

	pipeline.Sort(found, models.SortLatest)
	return found, nil
}

func (s *ConfessionService) Save(ctx context.Context, device, id string) error {
	if err := requireDevice(device); err != nil {
		return err
	}
	if _, err := s.GetConfession(ctx, id); err != nil {
		return err
	}
	s.prefs.Device(device).AddSaved(ctx, id)
	return nil
}

func (s *ConfessionService) Unsave(ctx context.Context, device, id string) error {
	if err := requireDevice(device); err != nil {
		return err
	}
	s.prefs.Device(device).RemoveSaved(ctx, id)
	return nil
}

func (s *ConfessionService) DevicePreferences(ctx context.Context, device string) (preferences.Snapshot, error) {
	if err := requireDevice(device); err != nil {
		return preferences.Snapshot{}, err
	}
	return s.prefs.Device(device).Snapshot(ctx), nil
}

// MoodStats buckets every confession by mood for today and the last seven
// days, with day boundaries taken in loc.
func (s *ConfessionService) MoodStats(ctx context.Context, loc *time.Location) (models.MoodStats, error) {
	if loc == nil {
		loc = time.Local
	}
	return cache.Get(ctx, s.cache, moodStatsKey(loc.String()), func(ctx context.Context) (models.MoodStats, error) {
		samples, err := s.gw.ListMoodSamples(ctx)
		if err != nil {
			return models.MoodStats{}, err
		}
		return stats.Compute(samples, s.now().In(loc)), nil
	})
}

func (s *ConfessionService) Trending(ctx context.Context, loc *time.Location) (TrendingView, error) {
	if loc == nil {
		loc = time.Local
	}

	list, err := s.ListConfessions(ctx, models.ConfessionQuery{SortBy: models.SortTrending})
	if err != nil {
		return TrendingView{}, err
	}
	ms, err := s.MoodStats(ctx, loc)
	if err != nil {
		return TrendingView{}, err
	}

	return TrendingView{
		Confessions:    list,
		Stats:          ms,
		TodayBreakdown: stats.Breakdown(ms.TodayStats),
		WeekBreakdown:  stats.Breakdown(ms.WeekStats),
		Timezone:       loc.String(),
	}, nil
}

// AdminOverview is the moderation queue: the latest page re-ordered by
// report count, plus counts over that page.
func (s *ConfessionService) AdminOverview(ctx context.Context) (AdminView, error) {
	latest, err := s.ListConfessions(ctx, models.ConfessionQuery{SortBy: models.SortLatest})
	if err != nil {
		return AdminView{}, err
	}
	return AdminView{
		Summary:     stats.Summarize(latest),
		Confessions: pipeline.SortByReports(latest),
	}, nil
}

// HighlyReported bypasses the cache; it backs the moderation digest job.
func (s *ConfessionService) HighlyReported(ctx context.Context) ([]models.Confession, error) {
	return s.gw.ListHighlyReported(ctx, models.HighlyReportedMinimum)
}

func (s *ConfessionService) SendModerationDigest(ctx context.Context) (int, error) {
	flagged, err := s.HighlyReported(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.alerts.Digest(ctx, flagged); err != nil {
		return len(flagged), err
	}
	return len(flagged), nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gateway.ErrNotFound)
}
