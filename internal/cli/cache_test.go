package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ruleviz/pkg/config"
)

func TestFileCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	c := New(io.Discard, log.InfoLevel)

	dir, err := c.fileCacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("default dir = %q, %v", dir, err)
	}

	c.Config.Cache.Dir = "/srv/ruleviz-cache"
	if dir, _ := c.fileCacheDir(); dir != "/srv/ruleviz-cache" {
		t.Errorf("configured dir = %q", dir)
	}

	c.Config.Cache.Backend = config.BackendRedis
	if _, err := c.fileCacheDir(); err == nil {
		t.Error("redis backend has no cache directory")
	}
}

func TestCacheClearCommand(t *testing.T) {
	// execute points XDG_CACHE_HOME at a fresh temp dir; seed it through a
	// config file instead so the test can inspect the directory.
	dir := t.TempDir()
	entry := filepath.Join(dir, "layout", "entry")
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Errorf("entry should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache root should be recreated: %v", err)
	}

	out, err := execute(t, "", "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}
