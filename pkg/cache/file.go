package cache

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// entryMagic starts every cache file, followed by the expiry in Unix
// milliseconds (0 for none) and a newline. The raw data follows.
const entryMagic = "metromap-cache"

// FileCache keeps one file per entry under <dir>/<stage>/<xx>/<digest>,
// where stage is the key prefix before the first colon ("layout",
// "artifact"). Artifacts are stored unencoded, so a cached PNG is the
// PNG plus one header line.
type FileCache struct {
	dir string
	now func() time.Time
}

var _ Cache = (*FileCache)(nil)

// NewFileCache creates dir if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expires, data, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && c.now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixMilli()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s %d\n", entryMagic, expires)
	_, _ = w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry and returns how many were removed. Emptied
// stage and shard directories are removed as well.
func (c *FileCache) Clear() (int, error) {
	removed := 0
	var dirs []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case os.IsNotExist(err):
			return fs.SkipAll
		case err != nil, path == c.dir:
			return nil
		case d.IsDir():
			dirs = append(dirs, path)
		case os.Remove(path) == nil:
			removed++
		}
		return nil
	})
	slices.Reverse(dirs)
	for _, d := range dirs {
		_ = os.Remove(d)
	}
	return removed, err
}

// StageUsage is the disk usage of one cache stage.
type StageUsage struct {
	Stage   string
	Entries int
	Bytes   int64
}

// Usage reports entries and bytes per stage, sorted by stage name.
// Expired entries are counted until the next Get removes them.
func (c *FileCache) Usage() ([]StageUsage, error) {
	byStage := map[string]*StageUsage{}
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, _ := filepath.Rel(c.dir, path)
		stage, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		info, err := d.Info()
		if err != nil {
			return nil
		}
		u := byStage[stage]
		if u == nil {
			u = &StageUsage{Stage: stage}
			byStage[stage] = u
		}
		u.Entries++
		u.Bytes += info.Size()
		return nil
	})
	out := make([]StageUsage, 0, len(byStage))
	for _, u := range byStage {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b StageUsage) int { return strings.Compare(a.Stage, b.Stage) })
	return out, err
}

func (c *FileCache) path(key string) string {
	stage, _, found := strings.Cut(key, ":")
	if !found || !validStage(stage) {
		stage = "other"
	}
	digest := Hash([]byte(key))
	return filepath.Join(c.dir, stage, digest[:2], digest[2:])
}

func validStage(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

func decodeEntry(raw []byte) (expires time.Time, data []byte, ok bool) {
	header, data, found := bytes.Cut(raw, []byte("\n"))
	if !found {
		return time.Time{}, nil, false
	}
	magic, secs, found := strings.Cut(string(header), " ")
	if !found || magic != entryMagic {
		return time.Time{}, nil, false
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, nil, false
	}
	if n > 0 {
		expires = time.UnixMilli(n)
	}
	return expires, data, true
}
