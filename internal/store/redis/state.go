package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
)

const (
	// backupTTL keeps a corrupt payload around long enough to inspect it.
	backupTTL = 7 * 24 * time.Hour
)

var (
	// ErrStateNotFound is returned when nothing was persisted yet.
	ErrStateNotFound = errors.New("state not found")
	// ErrCorruptState wraps payloads that cannot be decoded.
	ErrCorruptState = errors.New("corrupt state")
)

// Store persists the whole AppState as one JSON value with no TTL.
type Store struct {
	client redis.UniversalClient
	key    string
}

// NewStore creates a store writing under key (KeyState when blank).
func NewStore(client redis.UniversalClient, key string) *Store {
	return &Store{
		client: client,
		key:    StateKey(key),
	}
}

// Key returns the key the state is stored under.
func (s *Store) Key() string { return s.key }

// LoadState reads the persisted state.
// It returns ErrStateNotFound when the key is absent and an error wrapping
// ErrCorruptState when the payload does not decode.
func (s *Store) LoadState(ctx context.Context) (*domain.AppState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return decodeState(data)
}

// SaveState overwrites the persisted state.
func (s *Store) SaveState(ctx context.Context, state *domain.AppState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Quarantine copies the current payload to BackupKey and leaves the state
// key untouched; the next SaveState overwrites it.
func (s *Store) Quarantine(ctx context.Context) error {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read state for backup: %w", err)
	}
	if err := s.client.Set(ctx, BackupKey(s.key), data, backupTTL).Err(); err != nil {
		return fmt.Errorf("failed to back up state: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func encodeState(state *domain.AppState) ([]byte, error) {
	if state == nil {
		return nil, errors.New("nil state")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*domain.AppState, error) {
	var state domain.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return &state, nil
}
