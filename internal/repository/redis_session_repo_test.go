package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hitoshi/pulse/internal/model"
)

// fakeRedis はredisKVのインメモリ実装。TTLは記録のみ行う。
type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisSessionRepo_CreateAndFind(t *testing.T) {
	fake := newFakeRedis()
	repo := NewRedisSessionRepo(fake)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	session := &model.Session{ID: "tok", UserID: 5, ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got := fake.ttls[sessionKeyPrefix+"tok"]; got != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", got)
	}

	got, err := repo.FindByID(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil || got.UserID != 5 || got.ID != "tok" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRedisSessionRepo_FindByID_Missing(t *testing.T) {
	repo := NewRedisSessionRepo(newFakeRedis())

	got, err := repo.FindByID(context.Background(), "none")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRedisSessionRepo_FindByID_ExpiredBeforeTTL(t *testing.T) {
	fake := newFakeRedis()
	repo := NewRedisSessionRepo(fake)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	session := &model.Session{ID: "tok", UserID: 5, ExpiresAt: now.Add(time.Minute), CreatedAt: now}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	repo.now = func() time.Time { return now.Add(time.Minute) }
	got, err := repo.FindByID(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired session to be nil, got %+v", got)
	}
}

func TestRedisSessionRepo_Create_AlreadyExpired(t *testing.T) {
	repo := NewRedisSessionRepo(newFakeRedis())
	past := time.Now().Add(-time.Minute)

	err := repo.Create(context.Background(), &model.Session{ID: "x", UserID: 1, ExpiresAt: past})
	if err == nil {
		t.Fatal("expected error for expired session, got nil")
	}
}

func TestRedisSessionRepo_FindByID_Error(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	repo := NewRedisSessionRepo(fake)

	if _, err := repo.FindByID(context.Background(), "tok"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRedisSessionRepo_DeleteByID_Idempotent(t *testing.T) {
	fake := newFakeRedis()
	repo := NewRedisSessionRepo(fake)
	fake.data[sessionKeyPrefix+"tok"] = `{"user_id":1}`

	for i := 0; i < 2; i++ {
		if err := repo.DeleteByID(context.Background(), "tok"); err != nil {
			t.Fatalf("DeleteByID #%d error: %v", i, err)
		}
	}
	if _, ok := fake.data[sessionKeyPrefix+"tok"]; ok {
		t.Error("session key still present after delete")
	}
}

func TestRedisSessionRepo_DeleteExpired_NoOp(t *testing.T) {
	repo := NewRedisSessionRepo(newFakeRedis())

	n, err := repo.DeleteExpired(context.Background())
	if err != nil || n != 0 {
		t.Errorf("DeleteExpired = (%d, %v), want (0, nil)", n, err)
	}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	if _, err := NewRedisClient("not-a-url"); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
