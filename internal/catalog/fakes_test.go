package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/promptvault/internal/domain"
	"github.com/MrSnakeDoc/promptvault/internal/events"
	"github.com/MrSnakeDoc/promptvault/internal/sources/remote"
	store "github.com/MrSnakeDoc/promptvault/internal/store/redis"
)

const testBaseURL = "https://cdn.test/"

// memStore keeps the encoded state like the redis store does.
type memStore struct {
	mu          sync.Mutex
	raw         []byte
	saves       int
	quarantined bool

	// loadGate, when set, holds LoadState until it is closed; loadEntered
	// is closed once LoadState is waiting on it.
	loadGate    chan struct{}
	loadEntered chan struct{}
}

func (m *memStore) LoadState(ctx context.Context) (*domain.AppState, error) {
	if m.loadGate != nil {
		close(m.loadEntered)
		<-m.loadGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, store.ErrStateNotFound
	}
	var st domain.AppState
	if err := json.Unmarshal(m.raw, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorruptState, err)
	}
	return &st, nil
}

func (m *memStore) SaveState(ctx context.Context, st *domain.AppState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = b
	m.saves++
	return nil
}

func (m *memStore) Quarantine(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quarantined = true
	return nil
}

func (m *memStore) stored(t *testing.T) *domain.AppState {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var st domain.AppState
	if err := json.Unmarshal(m.raw, &st); err != nil {
		t.Fatalf("decode stored state: %v", err)
	}
	return &st
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) seed(t *testing.T, st *domain.AppState) {
	t.Helper()
	b, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal seed state: %v", err)
	}
	m.raw = b
}

// fakeSource serves a fixed index and category files.
type fakeSource struct {
	mu       sync.Mutex
	index    *remote.IndexDocument
	indexErr error
	files    map[string][]remote.RemotePrompt
	fileErr  map[string]error

	// block, when set, holds FetchIndex until it is closed.
	block chan struct{}

	indexCalls atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		index: &remote.IndexDocument{
			Categories: []remote.RemoteCategory{
				{Name: "Fun Stuff", SortOrder: 2, FilePathName: "fun.json"},
				{Name: "General", SortOrder: 1, FilePathName: "general.json"},
			},
		},
		files: map[string][]remote.RemotePrompt{
			testBaseURL + "general.json": {
				{ID: "g1", Title: "Summarize", Content: "Summarize [text]", Category: "wrong"},
				{ID: "g2", Title: "Translate", Content: "Translate [text] to [language/French/German]"},
			},
			testBaseURL + "fun.json": {
				{ID: "f1", Title: "Joke", Content: "Tell a joke about [topic]", Tags: []string{"humor"}},
			},
		},
		fileErr: map[string]error{},
	}
}

func (f *fakeSource) FetchIndex(ctx context.Context) (*remote.IndexDocument, error) {
	f.indexCalls.Add(1)
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	doc := *f.index
	return &doc, nil
}

func (f *fakeSource) FetchPrompts(ctx context.Context, url string) ([]remote.RemotePrompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fileErr[url]; err != nil {
		return nil, err
	}
	return append([]remote.RemotePrompt(nil), f.files[url]...), nil
}

func (f *fakeSource) setIndexErr(err error) {
	f.mu.Lock()
	f.indexErr = err
	f.mu.Unlock()
}

func (f *fakeSource) setFileErr(name string, err error) {
	f.mu.Lock()
	f.fileErr[testBaseURL+name] = err
	f.mu.Unlock()
}

func (f *fakeSource) setBlock(ch chan struct{}) {
	f.mu.Lock()
	f.block = ch
	f.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	sync   *Synchronizer
	store  *memStore
	source *fakeSource
	clock  *fakeClock
	bus    *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  &memStore{},
		source: newFakeSource(),
		clock:  newFakeClock(),
		bus:    events.New(),
	}
	f.sync = New(Options{
		Store:                  f.store,
		Source:                 f.source,
		Bus:                    f.bus,
		BaseURL:                testBaseURL,
		FetchConcurrency:       2,
		RefreshTimeout:         5 * time.Second,
		DefaultIntervalMinutes: 60,
		Now:                    f.clock.Now,
	})
	return f
}

// initialized returns a fixture whose catalog was loaded once.
func initialized(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.sync.Initialize(context.Background())
	return f
}

func promptIDs(ps []domain.Prompt) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func categoryCounts(cs []domain.Category) map[string]int {
	out := make(map[string]int, len(cs))
	for _, c := range cs {
		out[c.ID] = c.PromptCount
	}
	return out
}
