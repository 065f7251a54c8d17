package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

const DefaultHabitCacheTTL = 30 * time.Minute

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository keeps each user's habit list and single habits in
// Redis. Every write invalidates both keys; Redis failures fall through to next.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration) *CachedHabitRepository {
	if ttl <= 0 {
		ttl = DefaultHabitCacheTTL
	}
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func listKey(userID string) string {
	return "habit-stats:habits:" + userID
}

func habitKey(id string) string {
	return "habit-stats:habit:" + id
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID, habitID string) {
	if err := r.cache.Del(ctx, listKey(userID), habitKey(habitID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate habit %s for user %s: %v", habitID, userID, err)
	}
}

// load reports whether key held a decodable value. Corrupt entries are dropped.
func (r *CachedHabitRepository) load(ctx context.Context, key string, dst any) bool {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Redis read error on %s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		log.Printf("[CACHE] Corrupted data under %s, cleaning up key", key)
		r.cache.Del(ctx, key)
		return false
	}
	return true
}

func (r *CachedHabitRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[CACHE] Failed to encode %s: %v", key, err)
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
		log.Printf("[CACHE] Redis set error on %s: %v", key, err)
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := listKey(userID)

	var cached []*domain.Habit
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, habits)
	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	key := habitKey(id)

	var cached domain.Habit
	if r.load(ctx, key, &cached) {
		return &cached, nil
	}

	habit, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, habit)
	return habit, nil
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, habit.ID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, habit.ID)
	return nil
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.next.UpdateStreaks(ctx, id, current, best); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, id)
	return nil
}
