package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stage directories under the cache root. Keys carry their pipeline stage
// as a prefix ("graph:...", "layout:...", "artifact:..."), and entries are
// partitioned by stage on disk so `clarity cache clear` statistics and
// selective cleanup stay cheap.
var stageDirs = map[string]string{
	"graph":    "graph",
	"layout":   "layout",
	"artifact": "artifact",
}

// FileCache stores pipeline results on the local filesystem, one JSON
// entry file per key, partitioned by pipeline stage.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk entry format. Key and Stage make entries
// self-describing so a cache directory can be inspected and pruned
// without the keyer that produced it.
type fileEntry struct {
	Key       string    `json:"key"`
	Stage     string    `json:"stage"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Data      []byte    `json:"data"`
}

// Get retrieves a value. Expired and corrupt entries are removed and read
// as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a value. A zero ttl stores without expiry; a negative ttl
// means already expired and removes any existing entry instead.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		return c.Delete(ctx, key)
	}

	entry := fileEntry{
		Key:      key,
		Stage:    stageOf(key),
		StoredAt: time.Now().UTC(),
		Data:     data,
	}
	if ttl > 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Write-then-rename so a concurrent Get never reads a torn entry.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// stageOf extracts the pipeline stage from a key's prefix. Keys without a
// known stage prefix (scoped keyers prepend their own) fall into "misc".
func stageOf(key string) string {
	for prefix, dir := range stageDirs {
		if strings.HasPrefix(key, prefix+":") {
			return dir
		}
	}
	return "misc"
}

// path converts a cache key to its entry file path:
// <dir>/<stage>/<hh>/<hash>.json, with a two-character fan-out directory
// so one stage never collects thousands of files in a single directory.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, stageOf(key), hash[:2], hash[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
