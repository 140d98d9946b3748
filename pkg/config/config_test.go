package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/term"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Animation != animate.DefaultTimings() {
		t.Error("default animation timings differ from animate.DefaultTimings")
	}
	if cfg.TermCodec().Rewrite != term.DefaultRewrite {
		t.Error("default codec should use the crossref rewrite")
	}
	if cfg.Session.Blocks != 10 {
		t.Errorf("Session.Blocks = %d, want 10", cfg.Session.Blocks)
	}
	if cfg.Render.Workers != 4 {
		t.Errorf("Render.Workers = %d, want 4", cfg.Render.Workers)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[stimuli]
location = "./stimuli"
[stimuli.kinds]
arith = "tree"
lists = "string"

[animation]
stagger = "250ms"
move_easing = "linear"

[diagram]
cell_size = 40.0
[diagram.layout]
radius = 12.0

[codec]
heads = [".2"]
zero_arity = true

[cache]
backend = "none"

[session]
blocks = 3
skip_descriptions = true
`)
	cfg, err := Parse(data, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Stimuli.Location != "./stimuli" {
		t.Errorf("Location = %q", cfg.Stimuli.Location)
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		t.Fatal(err)
	}
	if kinds["arith"] != alignment.KindTree || kinds["lists"] != alignment.KindString {
		t.Errorf("Kinds() = %v", kinds)
	}
	if cfg.Animation.Stagger != 250*time.Millisecond {
		t.Errorf("Stagger = %v, want 250ms", cfg.Animation.Stagger)
	}
	if cfg.Animation.MoveEasing != animate.EaseLinear {
		t.Errorf("MoveEasing = %v, want linear", cfg.Animation.MoveEasing)
	}
	// untouched keys keep their defaults
	if cfg.Animation.Hold != animate.DefaultTimings().Hold {
		t.Errorf("Hold = %v, want default", cfg.Animation.Hold)
	}
	if cfg.Diagram.CellSize != 40 || cfg.Diagram.Layout.Radius != 12 {
		t.Errorf("Diagram = %+v", cfg.Diagram)
	}
	if cfg.Diagram.RowGap == 0 {
		t.Error("diagram defaults should fill unset fields")
	}

	codec := cfg.TermCodec()
	if codec.Rewrite == nil || !codec.Rewrite.ZeroArity || len(codec.Rewrite.Heads) != 1 || codec.Rewrite.Heads[0] != ".2" {
		t.Errorf("TermCodec() = %+v", codec.Rewrite)
	}

	fc := cfg.FlowConfig()
	if !fc.SkipDescriptions || fc.MaxListLen != 15 {
		t.Errorf("FlowConfig() = %+v", fc)
	}

	c, err := cfg.OpenCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("OpenCache() = %T, want NullCache", c)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", `[stimuli`, errors.ErrCodeInvalidFormat},
		{"unknown key", "[render]\ncolour = \"red\"", errors.ErrCodeInvalidFormat},
		{"bad kind", "[stimuli.kinds]\nx = \"graph\"", errors.ErrCodeInvalidInput},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"negative timing", "[animation]\nsoak = \"-1s\"", errors.ErrCodeInvalidInput},
		{"negative workers", "[render]\nworkers = -1", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), Default())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestLiteralCodec(t *testing.T) {
	cfg := Default()
	cfg.Codec.Literal = true
	if cfg.TermCodec().Rewrite != nil {
		t.Error("literal codec should not rewrite")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"), false)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml"), true); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("required missing file error = %v", err)
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
}

func TestDefaultPath(t *testing.T) {
	old, had := os.LookupEnv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	defer func() {
		if had {
			os.Setenv("XDG_CONFIG_HOME", old)
		} else {
			os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, filepath.Join(appName, "config.toml")) {
		t.Errorf("DefaultPath() = %q", path)
	}
}
