package config

import (
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantPanic bool
	}{
		{name: "variable set", key: "PV_TEST_VAR", value: "test_value"},
		{name: "variable not set", key: "PV_TEST_VAR_MISSING", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestRequireEnvInt(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		expected  int
		wantPanic bool
	}{
		{name: "valid integer", key: "PV_TEST_INT", value: "42", expected: 42},
		{name: "invalid integer", key: "PV_TEST_INT_INVALID", value: "not_a_number", wantPanic: true},
		{name: "missing variable", key: "PV_TEST_INT_MISSING", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnvInt() should have panicked")
					}
				}()
			}

			result := requireEnvInt(tt.key)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("requireEnvInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("PV_TEST_GETENV_INT", "7")
	t.Setenv("PV_TEST_GETENV_INT_BAD", "seven")

	if got := getenvInt("PV_TEST_GETENV_INT", 1); got != 7 {
		t.Errorf("getenvInt() = %d, want 7", got)
	}
	if got := getenvInt("PV_TEST_GETENV_INT_BAD", 3); got != 3 {
		t.Errorf("getenvInt() with invalid value = %d, want default 3", got)
	}
	if got := getenvInt("PV_TEST_GETENV_INT_MISSING", 9); got != 9 {
		t.Errorf("getenvInt() with missing value = %d, want default 9", got)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", key: "PV_TEST_DURATION", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", key: "PV_TEST_DURATION_INVALID", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", key: "PV_TEST_DURATION_MISSING", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "PV_TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "PV_TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "PV_TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "PV_TEST_BOOL_MISSING", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "10.0.0.0/8", expected: []string{"10.0.0.0/8"}},
		{name: "spaces and quotes", input: ` "a.example", 'b.example' ,, c.example `, expected: []string{"a.example", "b.example", "c.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestEnsureTrailingSlash(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"https://cdn.example/p":   "https://cdn.example/p/",
		"https://cdn.example/p/":  "https://cdn.example/p/",
	}
	for in, want := range cases {
		if got := ensureTrailingSlash(in); got != want {
			t.Errorf("ensureTrailingSlash(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROMPTVAULT_REDIS_ADDR", "localhost:6379")
	t.Setenv("PROMPTVAULT_REDIS_DB", "2")
	t.Setenv("PROMPTVAULT_REDIS_PASSWORD_REQUIRED", "false")
	t.Setenv("PROMPTVAULT_BASE_URL", "https://mirror.example/prompts")
	t.Setenv("PROMPTVAULT_FETCH_CONCURRENCY", "0")

	cfg := Load()

	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if cfg.IndexURL != DefaultIndexURL {
		t.Errorf("IndexURL = %q, want default", cfg.IndexURL)
	}
	if cfg.BaseURL != "https://mirror.example/prompts/" {
		t.Errorf("BaseURL = %q, want trailing slash", cfg.BaseURL)
	}
	if cfg.StateKey != DefaultStateKey {
		t.Errorf("StateKey = %q, want %q", cfg.StateKey, DefaultStateKey)
	}
	if cfg.RefreshInterval != 60 {
		t.Errorf("RefreshInterval = %d, want 60", cfg.RefreshInterval)
	}
	if cfg.FetchConcurrency != 1 {
		t.Errorf("FetchConcurrency = %d, want clamped to 1", cfg.FetchConcurrency)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadPanicsWithoutPassword(t *testing.T) {
	t.Setenv("PROMPTVAULT_REDIS_ADDR", "localhost:6379")
	t.Setenv("PROMPTVAULT_REDIS_DB", "0")
	t.Setenv("PROMPTVAULT_REDIS_PASSWORD_REQUIRED", "true")
	t.Setenv("PROMPTVAULT_REDIS_PASSWORD", "")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked without a redis password")
		}
	}()
	Load()
}
