package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-assistant/internal/model"
)

// TranscriptRepo mirrors chat turns into a Redis list per session so the
// history endpoint survives restarts.  Keys expire after TTL of inactivity.
type TranscriptRepo struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	limit  int64
}

// NewTranscriptRepo returns a repo that keeps at most limit turns per
// session.  A nil client yields a nil repo; callers check for that.
func NewTranscriptRepo(rdb *redis.Client, ttl time.Duration, limit int64) *TranscriptRepo {
	if rdb == nil {
		return nil
	}
	return &TranscriptRepo{rdb: rdb, prefix: "bv:chat:", ttl: ttl, limit: limit}
}

func (r *TranscriptRepo) key(session string) string { return r.prefix + session }

// Append pushes turns to the session list, trims it to the newest limit
// entries and refreshes the expiry, all in one pipeline.
func (r *TranscriptRepo) Append(ctx context.Context, session string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	vals := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	k := r.key(session)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, k, vals...)
	if r.limit > 0 {
		pipe.LTrim(ctx, k, -r.limit, -1)
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, k, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored turns oldest first.  Undecodable entries are
// skipped.
func (r *TranscriptRepo) List(ctx context.Context, session string) ([]model.Turn, error) {
	raw, err := r.rdb.LRange(ctx, r.key(session), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Turn, 0, len(raw))
	for _, s := range raw {
		var t model.Turn
		if json.Unmarshal([]byte(s), &t) == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// Clear deletes a session's transcript.
func (r *TranscriptRepo) Clear(ctx context.Context, session string) error {
	return r.rdb.Del(ctx, r.key(session)).Err()
}
