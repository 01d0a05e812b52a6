package services

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/votopopular/civic-api/internal/models"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
)

type KeyKind string

const (
	KeyIP  KeyKind = "ip"
	KeyCPF KeyKind = "cpf"
)

// AttemptStore keeps failed attempts per hashed key inside a rolling window.
type AttemptStore interface {
	Add(ctx context.Context, key string, at time.Time, window time.Duration) error
	Count(ctx context.Context, key string, since time.Time) (int, error)
	Reset(ctx context.Context, key string) error
}

// Antifraud throttles identities with too many recent failures. Store errors
// are logged and the check fails open so the primary operation proceeds.
type Antifraud struct {
	store  AttemptStore
	max    int
	window time.Duration
	secret []byte
	now    func() time.Time
}

func NewAntifraud(store AttemptStore, maxAttempts int, window time.Duration, secret string) *Antifraud {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Antifraud{
		store:  store,
		max:    maxAttempts,
		window: window,
		secret: key,
		now:    time.Now,
	}
}

// Key hashes the identity so raw CPFs and addresses are never stored.
func (f *Antifraud) Key(kind KeyKind, value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	h, err := blake2b.New256(f.secret)
	if err != nil {
		// Only reachable with an oversized key, which NewAntifraud rules out.
		panic(err)
	}
	h.Write([]byte(string(kind) + ":" + value))
	return hex.EncodeToString(h.Sum(nil))
}

// Blocked reports whether any of the keys reached the attempt limit.
func (f *Antifraud) Blocked(ctx context.Context, keys ...string) bool {
	since := f.now().Add(-f.window)
	for _, key := range keys {
		if key == "" {
			continue
		}
		n, err := f.store.Count(ctx, key, since)
		if err != nil {
			slog.Error("antifraud count failed", "error", err)
			continue
		}
		if n >= f.max {
			return true
		}
	}
	return false
}

func (f *Antifraud) Fail(ctx context.Context, keys ...string) {
	now := f.now()
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := f.store.Add(ctx, key, now, f.window); err != nil {
			slog.Error("antifraud record failed", "error", err)
		}
	}
}

func (f *Antifraud) Reset(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := f.store.Reset(ctx, key); err != nil {
			slog.Error("antifraud reset failed", "error", err)
		}
	}
}

// GormAttemptStore keeps attempts in the login_attempts table.
type GormAttemptStore struct {
	db *gorm.DB
}

func NewGormAttemptStore(db *gorm.DB) *GormAttemptStore {
	return &GormAttemptStore{db: db}
}

func (s *GormAttemptStore) Add(ctx context.Context, key string, at time.Time, window time.Duration) error {
	db := s.db.WithContext(ctx)
	if err := db.Create(&models.LoginAttempt{Key: key, CreatedAt: at}).Error; err != nil {
		return err
	}
	return db.Where("attempt_key = ? AND created_at < ?", key, at.Add(-window)).Delete(&models.LoginAttempt{}).Error
}

func (s *GormAttemptStore) Count(ctx context.Context, key string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.LoginAttempt{}).
		Where("attempt_key = ? AND created_at >= ?", key, since).
		Count(&n).Error
	return int(n), err
}

func (s *GormAttemptStore) Reset(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("attempt_key = ?", key).Delete(&models.LoginAttempt{}).Error
}

// RedisAttemptStore keeps attempts in a sorted set per key, scored by time,
// so several processes share one window.
type RedisAttemptStore struct {
	rdb *redis.Client
}

func NewRedisAttemptStore(rdb *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{rdb: rdb}
}

const attemptPrefix = "antifraud:"

func (s *RedisAttemptStore) Add(ctx context.Context, key string, at time.Time, window time.Duration) error {
	k := attemptPrefix + key
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, k, "-inf", "("+strconv.FormatInt(at.Add(-window).UnixMilli(), 10))
	pipe.Expire(ctx, k, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisAttemptStore) Count(ctx context.Context, key string, since time.Time) (int, error) {
	n, err := s.rdb.ZCount(ctx, attemptPrefix+key, strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	return int(n), err
}

func (s *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, attemptPrefix+key).Err()
}
