package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"doc-qa/internal/document"
)

const (
	metaPrefix       = "session:"
	transcriptPrefix = "transcript:"
)

// RedisStore shares sessions between replicas. Session metadata is a JSON
// string and the transcript an append-only list; both expire together.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Create(ctx context.Context) (*Session, error) {
	s := &Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := r.saveMeta(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	s, err := r.loadMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := r.client.LRange(ctx, transcriptPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	s.Transcript = make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode transcript entry: %w", err)
		}
		s.Transcript = append(s.Transcript, e)
	}
	r.refresh(ctx, id)
	return s, nil
}

func (r *RedisStore) Append(ctx context.Context, id string, entries ...Entry) error {
	if _, err := r.loadMeta(ctx, id); err != nil {
		return err
	}
	values := make([]any, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values[i] = data
	}
	if len(values) == 0 {
		return nil
	}
	if err := r.client.RPush(ctx, transcriptPrefix+id, values...).Err(); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	r.refresh(ctx, id)
	return nil
}

func (r *RedisStore) SetDraft(ctx context.Context, id, draft string) error {
	s, err := r.loadMeta(ctx, id)
	if err != nil {
		return err
	}
	s.Draft = draft
	return r.saveMeta(ctx, s)
}

func (r *RedisStore) SetDocument(ctx context.Context, id string, doc *document.Document) error {
	s, err := r.loadMeta(ctx, id)
	if err != nil {
		return err
	}
	s.Document = doc
	return r.saveMeta(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, metaPrefix+id, transcriptPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) loadMeta(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, metaPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) saveMeta(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, metaPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	r.refresh(ctx, s.ID)
	return nil
}

// refresh slides both keys' expiry forward.
func (r *RedisStore) refresh(ctx context.Context, id string) {
	if r.ttl <= 0 {
		return
	}
	pipe := r.client.Pipeline()
	pipe.Expire(ctx, metaPrefix+id, r.ttl)
	pipe.Expire(ctx, transcriptPrefix+id, r.ttl)
	_, _ = pipe.Exec(ctx)
}
