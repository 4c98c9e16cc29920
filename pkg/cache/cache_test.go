package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var errPermanent = errors.New("permanent")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Padding: 50, LevelSpacing: 150})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Padding: 50, LevelSpacing: 200})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Padding: 50, LevelSpacing: 150}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:"+keyVersion+":") {
		t.Errorf("LayoutKey unexpected prefix: %s", lk1)
	}
	if k.LayoutKey("other", LayoutKeyOpts{Padding: 50, LevelSpacing: 150}) == lk1 {
		t.Error("Different map hashes should produce different keys")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Labels: true})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Labels: true})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Labels: true, Highlight: "lead"})
	if ak1 == ak3 {
		t.Error("Highlight should change the artifact key")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte("data"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit || string(data) != "data" {
		t.Fatalf("Get = %q, %v, %v; want data, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "layout:v1:abc", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, hit, _ := c.Get(ctx, "layout:v1:abc"); !hit {
		t.Error("entry should live for its TTL")
	}
	now = now.Add(2 * time.Second)
	if _, hit, _ := c.Get(ctx, "layout:v1:abc"); hit {
		t.Error("expired entry should be a miss")
	}

	// Zero TTL never expires.
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	now = now.Add(365 * 24 * time.Hour)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without TTL should hit")
	}
}

func TestFileCacheStoresRawBytes(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	png := []byte("\x89PNG\r\n\x1a\n\x00\x01")
	if err := c.Set(ctx, "artifact:v1:abc", png, time.Hour); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(c.path("artifact:v1:abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), entryMagic+" ") || !strings.HasSuffix(string(raw), string(png)) {
		t.Errorf("entry file = %q", raw)
	}
	if !strings.Contains(filepath.ToSlash(c.path("artifact:v1:abc")), "/artifact/") {
		t.Errorf("artifact stored outside its stage dir: %s", c.path("artifact:v1:abc"))
	}

	got, hit, err := c.Get(ctx, "artifact:v1:abc")
	if err != nil || !hit || string(got) != string(png) {
		t.Errorf("Get = %q, %v, %v", got, hit, err)
	}
}

func TestFileCacheUsage(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for key, size := range map[string]int{
		"layout:v1:a":   10,
		"layout:v1:b":   20,
		"artifact:v1:a": 100,
	} {
		if err := c.Set(ctx, key, make([]byte, size), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	usage, err := c.Usage()
	if err != nil {
		t.Fatalf("Usage error: %v", err)
	}
	if len(usage) != 2 || usage[0].Stage != "artifact" || usage[1].Stage != "layout" {
		t.Fatalf("usage = %+v", usage)
	}
	if usage[1].Entries != 2 || usage[0].Entries != 1 {
		t.Errorf("entries = %+v", usage)
	}
	if usage[0].Bytes <= 100 {
		t.Errorf("artifact bytes = %d, want data plus header", usage[0].Bytes)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Base: time.Millisecond, Attempts: 3}
	unavailable := fmt.Errorf("%w: connection refused", ErrBackend)

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"recovers", 2, unavailable, 3, nil},
		{"gives up", 5, unavailable, 3, ErrBackend},
		{"permanent", 5, errPermanent, 1, errPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(ctx, func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Base: time.Hour, Attempts: 3}.Do(ctx, func(context.Context) error {
		return ErrBackend
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffZeroAttempts(t *testing.T) {
	calls := 0
	_ = Backoff{}.Do(context.Background(), func(context.Context) error {
		calls++
		return ErrBackend
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
