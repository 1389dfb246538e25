package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"threadfeed/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	postTTL    = 7 * 24 * time.Hour
	summaryTTL = 24 * time.Hour
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func rankKey(scope string, sort model.SortMode) string {
	return fmt.Sprintf("feed:rank:%s:%s", strings.ToLower(scope), sort)
}

func postKey(id string) string {
	return fmt.Sprintf("feed:post:%s", id)
}

func filtersKey(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("feed:filters:%s", profile)
}

func summaryKey(postID string) string {
	return fmt.Sprintf("feed:summary:%s", postID)
}

// ReplaceRanked swaps the scope leaderboard for the posts of one collection
// run and returns how many were stored. The keep highest scored posts are
// written to a staging key that is renamed over the live key, so an entry
// never outlives the run that ranked it. The leaderboard expires with its
// post blobs when collection stops; an empty run deletes it.
func (s *RedisStore) ReplaceRanked(ctx context.Context, scope string, sort model.SortMode, ranked []model.RankedPost, keep int) (int, error) {
	live := rankKey(scope, sort)
	ranked = topScores(ranked, keep)
	if len(ranked) == 0 {
		return 0, s.rdb.Del(ctx, live).Err()
	}

	staging := live + ":next:" + uuid.NewString()
	zs := make([]redis.Z, 0, len(ranked))
	pipe := s.rdb.TxPipeline()
	for _, r := range ranked {
		b, err := json.Marshal(r.Post)
		if err != nil {
			return 0, err
		}
		pipe.Set(ctx, postKey(r.Post.ID), b, postTTL)
		zs = append(zs, redis.Z{Score: r.Score, Member: r.Post.ID})
	}
	pipe.ZAdd(ctx, staging, zs...)
	pipe.Rename(ctx, staging, live)
	pipe.Expire(ctx, live, postTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(ranked), nil
}

// topScores orders posts by score, drops repeated ids and keeps the first
// keep entries; keep <= 0 keeps all.
func topScores(ranked []model.RankedPost, keep int) []model.RankedPost {
	out := make([]model.RankedPost, len(ranked))
	copy(out, ranked)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	seen := make(map[string]struct{}, len(out))
	n := 0
	for _, r := range out {
		if _, dup := seen[r.Post.ID]; dup || r.Post.ID == "" {
			continue
		}
		seen[r.Post.ID] = struct{}{}
		out[n] = r
		n++
		if keep > 0 && n == keep {
			break
		}
	}
	return out[:n]
}

// TopRanked retrieves the top n posts of a leaderboard. Members whose post
// blob expired are skipped and removed.
func (s *RedisStore) TopRanked(ctx context.Context, scope string, sort model.SortMode, n int) ([]model.RankedPost, error) {
	if n <= 0 {
		return nil, nil
	}
	key := rankKey(scope, sort)
	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.RankedPost, 0, len(zs))
	var stale []any
	for _, z := range zs {
		id, _ := z.Member.(string)
		b, err := s.rdb.Get(ctx, postKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var p model.Post
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, err
		}
		out = append(out, model.RankedPost{Post: p, Score: z.Score})
	}
	if len(stale) > 0 {
		if err := s.rdb.ZRem(ctx, key, stale...).Err(); err != nil {
			slog.Warn("storage: prune stale leaderboard members", "key", key, "error", err)
		}
	}
	return out, nil
}

// SaveFilters persists the filter set of a profile.
func (s *RedisStore) SaveFilters(ctx context.Context, profile string, f model.FilterState) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, filtersKey(profile), b, 0).Err()
}

// LoadFilters returns the persisted filter set of a profile; ok is false when
// none was saved.
func (s *RedisStore) LoadFilters(ctx context.Context, profile string) (f model.FilterState, ok bool, err error) {
	b, err := s.rdb.Get(ctx, filtersKey(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.FilterState{}, false, nil
	}
	if err != nil {
		return model.FilterState{}, false, err
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return model.FilterState{}, false, err
	}
	return f.Normalized(), true, nil
}

// GetSummary returns a cached thread summary, or "" when none is cached.
func (s *RedisStore) GetSummary(ctx context.Context, postID string) (string, error) {
	res, err := s.rdb.Get(ctx, summaryKey(postID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return res, err
}

// SetSummary caches a thread summary.
func (s *RedisStore) SetSummary(ctx context.Context, postID, summary string) error {
	return s.rdb.Set(ctx, summaryKey(postID), summary, summaryTTL).Err()
}
