package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ""), mr
}

func TestStoreLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.LoadState(context.Background()); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("LoadState() error = %v, want ErrStateNotFound", err)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	st := domain.NewAppState(45)
	st.Theme = domain.ThemeDark
	st.Favorites = []string{"p1", "p2"}
	if err := s.SaveState(ctx, st); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	if !mr.Exists(KeyState) {
		t.Fatalf("key %s not written", KeyState)
	}
	if ttl := mr.TTL(KeyState); ttl != 0 {
		t.Errorf("TTL = %s, want none", ttl)
	}

	back, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if back.Theme != domain.ThemeDark || len(back.Favorites) != 2 {
		t.Errorf("loaded state = %+v", back)
	}
	if back.CacheMetadata.RefreshIntervalMinutes != 45 {
		t.Errorf("RefreshIntervalMinutes = %d, want 45", back.CacheMetadata.RefreshIntervalMinutes)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	s, mr := newTestStore(t)
	if err := mr.Set(KeyState, `{"prompts": [`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadState(context.Background()); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("LoadState() error = %v, want ErrCorruptState", err)
	}
}

func TestStoreQuarantine(t *testing.T) {
	s, mr := newTestStore(t)
	const payload = `{"prompts": [`
	if err := mr.Set(KeyState, payload); err != nil {
		t.Fatal(err)
	}

	if err := s.Quarantine(context.Background()); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}

	backup := BackupKey(KeyState)
	got, err := mr.Get(backup)
	if err != nil {
		t.Fatalf("backup key %s: %v", backup, err)
	}
	if got != payload {
		t.Errorf("backup = %q, want %q", got, payload)
	}
	if ttl := mr.TTL(backup); ttl != 7*24*time.Hour {
		t.Errorf("backup TTL = %s, want 168h", ttl)
	}
	if still, _ := mr.Get(KeyState); still != payload {
		t.Errorf("state key changed to %q", still)
	}
}

func TestStoreQuarantineMissing(t *testing.T) {
	s, mr := newTestStore(t)
	if err := s.Quarantine(context.Background()); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	if mr.Exists(BackupKey(KeyState)) {
		t.Error("backup written for a missing state")
	}
}

func TestStorePing(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
