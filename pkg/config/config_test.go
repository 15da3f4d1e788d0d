package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", c.Cache.Backend)
	}
	if c.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", c.Store.Backend)
	}
	if c.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %q", c.OpenAI.APIKeyEnv)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	doc := `
[layout]
mode = "simple"
min_group_size = 3

[render]
formats = ["svg", "json"]

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://db.internal:27017"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Layout.Mode != "simple" {
		t.Errorf("Layout.Mode = %q", c.Layout.Mode)
	}
	if c.Layout.MinGroupSize != 3 {
		t.Errorf("MinGroupSize = %d", c.Layout.MinGroupSize)
	}
	if len(c.Render.Formats) != 2 {
		t.Errorf("Formats = %v", c.Render.Formats)
	}
	if c.Cache.Backend != "redis" || c.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if c.Store.Backend != "mongo" {
		t.Errorf("Store.Backend = %q", c.Store.Backend)
	}
	// Defaults still fill unset fields.
	if c.OpenAI.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %q", c.OpenAI.APIKeyEnv)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if c.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", c.Cache.Backend)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("cache = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed toml should fail")
	}
}
