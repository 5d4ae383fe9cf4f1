package learnpath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuizStore holds the most recently generated quiz for each session key.
// A Put replaces whatever was stored for the key.
type QuizStore interface {
	Put(ctx context.Context, key string, quiz *Quiz) error
	// Get returns ErrNotFound when nothing is stored for key
	Get(ctx context.Context, key string) (*Quiz, error)
	Delete(ctx context.Context, key string) error
}

// MemoryQuizStore keeps quizzes in process memory
type MemoryQuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*Quiz
}

// NewMemoryQuizStore creates an empty in-memory store
func NewMemoryQuizStore() *MemoryQuizStore {
	return &MemoryQuizStore{
		quizzes: make(map[string]*Quiz),
	}
}

// Put stores quiz under key, replacing any previous quiz
func (ms *MemoryQuizStore) Put(_ context.Context, key string, quiz *Quiz) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.quizzes[key] = quiz
	return nil
}

// Get retrieves the quiz stored under key
func (ms *MemoryQuizStore) Get(_ context.Context, key string) (*Quiz, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	quiz, ok := ms.quizzes[key]
	if !ok {
		return nil, fmt.Errorf("quiz for session %s: %w", key, ErrNotFound)
	}
	return quiz, nil
}

// Delete removes the quiz stored under key
func (ms *MemoryQuizStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.quizzes, key)
	return nil
}

// Size returns the number of stored quizzes
func (ms *MemoryQuizStore) Size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.quizzes)
}

// RedisQuizStore keeps quizzes in Redis as JSON with an expiry
type RedisQuizStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQuizStore creates a store on client. A zero ttl keeps quizzes until overwritten.
func NewRedisQuizStore(client *redis.Client, ttl time.Duration) *RedisQuizStore {
	return &RedisQuizStore{client: client, ttl: ttl}
}

func (rs *RedisQuizStore) key(key string) string {
	return "learnpath:quiz:" + key
}

// Put stores quiz under key, replacing any previous quiz
func (rs *RedisQuizStore) Put(ctx context.Context, key string, quiz *Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz: %w", err)
	}
	if err := rs.client.Set(ctx, rs.key(key), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store quiz: %w", err)
	}
	return nil
}

// Get retrieves the quiz stored under key
func (rs *RedisQuizStore) Get(ctx context.Context, key string) (*Quiz, error) {
	data, err := rs.client.Get(ctx, rs.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("quiz for session %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz: %w", err)
	}
	return &quiz, nil
}

// Delete removes the quiz stored under key
func (rs *RedisQuizStore) Delete(ctx context.Context, key string) error {
	return rs.client.Del(ctx, rs.key(key)).Err()
}

// OpenQuizStore returns a Redis backed store when cfg.RedisAddr is set and an
// in-memory store otherwise
func OpenQuizStore(ctx context.Context, cfg *Config) (QuizStore, error) {
	if cfg.RedisAddr == "" {
		return NewMemoryQuizStore(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisQuizStore(client, cfg.QuizTTL), nil
}
