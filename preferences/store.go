// Package preferences tracks, per device, which confessions were liked or
// saved. Storage problems never surface to callers: unreadable lists are
// treated as empty and failed writes are only logged.
package preferences

import (
	"context"
	"encoding/json"
	"log"
	"slices"
	"sync"
)

const (
	LikedKey = "confessly_liked"
	SavedKey = "confessly_saved"
)

type Store struct {
	kv KV
	mu sync.Mutex
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Device scopes the store to one device id.
func (s *Store) Device(deviceID string) *Device {
	return &Device{store: s, id: deviceID}
}

type Device struct {
	store *Store
	id    string
}

type Snapshot struct {
	Liked []string `json:"liked"`
	Saved []string `json:"saved"`
}

func storageKey(list, deviceID string) string {
	return list + ":" + deviceID
}

func (s *Store) load(ctx context.Context, key string) []string {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Printf("[Preferences] read %s failed, treating as empty: %v", key, err)
		return []string{}
	}
	if !ok || raw == "" {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Printf("[Preferences] corrupt value under %s, treating as empty: %v", key, err)
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *Store) save(ctx context.Context, key string, ids []string) {
	b, err := json.Marshal(ids)
	if err != nil {
		log.Printf("[Preferences] encode %s failed: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		log.Printf("[Preferences] write %s failed: %v", key, err)
	}
}

func (s *Store) add(ctx context.Context, key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load(ctx, key)
	if slices.Contains(ids, id) {
		return
	}
	s.save(ctx, key, append(ids, id))
}

func (s *Store) remove(ctx context.Context, key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load(ctx, key)
	filtered := slices.DeleteFunc(ids, func(v string) bool { return v == id })
	s.save(ctx, key, filtered)
}

// toggle flips id's membership in key and reports whether it was present.
func (s *Store) toggle(ctx context.Context, key, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load(ctx, key)
	if slices.Contains(ids, id) {
		s.save(ctx, key, slices.DeleteFunc(ids, func(v string) bool { return v == id }))
		return true
	}
	s.save(ctx, key, append(ids, id))
	return false
}

func (d *Device) likedKey() string { return storageKey(LikedKey, d.id) }
func (d *Device) savedKey() string { return storageKey(SavedKey, d.id) }

func (d *Device) IsLiked(ctx context.Context, id string) bool {
	return slices.Contains(d.store.load(ctx, d.likedKey()), id)
}

func (d *Device) IsSaved(ctx context.Context, id string) bool {
	return slices.Contains(d.store.load(ctx, d.savedKey()), id)
}

func (d *Device) AddLiked(ctx context.Context, id string)    { d.store.add(ctx, d.likedKey(), id) }
func (d *Device) RemoveLiked(ctx context.Context, id string) { d.store.remove(ctx, d.likedKey(), id) }

// ToggleLiked flips the like for id and returns the state it had before.
func (d *Device) ToggleLiked(ctx context.Context, id string) (wasLiked bool) {
	return d.store.toggle(ctx, d.likedKey(), id)
}

func (d *Device) AddSaved(ctx context.Context, id string)    { d.store.add(ctx, d.savedKey(), id) }
func (d *Device) RemoveSaved(ctx context.Context, id string) { d.store.remove(ctx, d.savedKey(), id) }

func (d *Device) Liked(ctx context.Context) []string { return d.store.load(ctx, d.likedKey()) }
func (d *Device) Saved(ctx context.Context) []string { return d.store.load(ctx, d.savedKey()) }

func (d *Device) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{Liked: d.Liked(ctx), Saved: d.Saved(ctx)}
}
