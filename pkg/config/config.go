// Package config loads ruleviz settings from a TOML file.
//
// Every section is optional; missing values fall back to the same defaults
// the library packages use. A typical file:
//
//	[stimuli]
//	location = "https://example.org/stimuli"
//	[stimuli.kinds]
//	arith = "tree"
//
//	[animation]
//	stagger = "700ms"
//	move_easing = "cubic-in-out"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/animate"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/diagram"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/flow"
	"github.com/matzehuels/ruleviz/pkg/term"
)

const appName = "ruleviz"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root of the configuration file.
type Config struct {
	Stimuli   StimuliConfig   `toml:"stimuli"`
	Diagram   diagram.Config  `toml:"diagram"`
	Animation animate.Timings `toml:"animation"`
	Codec     CodecConfig     `toml:"codec"`
	Render    RenderConfig    `toml:"render"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Session   SessionConfig   `toml:"session"`
}

// StimuliConfig locates the stimulus feed.
type StimuliConfig struct {
	// Location is a directory or an http(s) base URL.
	Location string `toml:"location"`
	// Kinds overrides the detected stimulus kind per domain.
	Kinds map[string]string `toml:"kinds"`
}

// CodecConfig controls the crossref rewrite applied to tree encodings.
type CodecConfig struct {
	// Heads lists the combinator symbols to fold. Empty means ".2" and ".3".
	Heads     []string `toml:"heads"`
	ZeroArity bool     `toml:"zero_arity"`
	// Literal disables the rewrite.
	Literal bool `toml:"literal"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Style string  `toml:"style"`
	Scale float64 `toml:"scale"`
	// Chrome is the browser used for animation frame capture.
	Chrome    string `toml:"chrome"`
	NoSandbox bool   `toml:"no_sandbox"`
	// Workers bounds concurrent trials for render --all.
	Workers int `toml:"workers"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// ServerConfig configures ruleviz serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Records is the file trial records are appended to. Empty keeps them
	// in memory only.
	Records      string        `toml:"records"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// SessionConfig configures ruleviz session. PerBlock caps trials per block;
// 0 means one block per rule.
type SessionConfig struct {
	Blocks           int           `toml:"blocks"`
	PerBlock         int           `toml:"per_block"`
	Condition        int           `toml:"condition"`
	MaxListLen       int           `toml:"max_list_len"`
	MaxElement       int           `toml:"max_element"`
	FeedbackDelay    time.Duration `toml:"feedback_delay"`
	SkipDescriptions bool          `toml:"skip_descriptions"`
	Seed             uint64        `toml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Diagram:   diagram.Config{}.WithDefaults(),
		Animation: animate.DefaultTimings(),
		Render:    RenderConfig{Style: "simple", Scale: 2, Workers: 4},
		Cache:     CacheConfig{Backend: BackendFile, Redis: cache.RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"}},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Session: SessionConfig{
			Blocks:        flow.DefaultBlocks,
			PerBlock:      11,
			MaxListLen:    flow.DefaultMaxListLen,
			MaxElement:    flow.DefaultMaxElement,
			FeedbackDelay: flow.DefaultFeedbackDelay,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ruleviz/config.toml (or the OS
// equivalent).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "config.toml"), nil
}

// Load reads path over the defaults. A missing file is only an error when
// mustExist is set, so the default path may be absent.
func Load(path string, mustExist bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !mustExist {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q", undecoded[0].String())
	}
	cfg.Diagram = cfg.Diagram.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if err := c.Animation.Validate(); err != nil {
		return err
	}
	if _, err := c.Kinds(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Render.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render scale must not be negative, got %v", c.Render.Scale)
	}
	if c.Render.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render workers must not be negative, got %d", c.Render.Workers)
	}
	if c.Session.Blocks < 0 || c.Session.PerBlock < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "session blocks and per_block must not be negative")
	}
	return nil
}

// Kinds parses the per-domain kind overrides.
func (c Config) Kinds() (map[string]alignment.Kind, error) {
	kinds := make(map[string]alignment.Kind, len(c.Stimuli.Kinds))
	for domain, s := range c.Stimuli.Kinds {
		k, err := alignment.ParseKind(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stimuli.kinds.%s", domain)
		}
		kinds[domain] = k
	}
	return kinds, nil
}

// TermCodec builds the codec described by the codec section.
func (c Config) TermCodec() term.Codec {
	if c.Codec.Literal {
		return term.Codec{}
	}
	if len(c.Codec.Heads) == 0 && !c.Codec.ZeroArity {
		return term.DefaultCodec
	}
	rule := &term.RewriteRule{Heads: term.DefaultRewrite.Heads, ZeroArity: c.Codec.ZeroArity}
	if len(c.Codec.Heads) > 0 {
		rule.Heads = make([]term.Symbol, len(c.Codec.Heads))
		for i, h := range c.Codec.Heads {
			rule.Heads[i] = term.Symbol(h)
		}
	}
	return term.Codec{Rewrite: rule}
}

// FlowConfig returns the session scoring settings.
func (c Config) FlowConfig() flow.Config {
	return flow.Config{
		Condition:        c.Session.Condition,
		MaxListLen:       c.Session.MaxListLen,
		MaxElement:       c.Session.MaxElement,
		FeedbackDelay:    c.Session.FeedbackDelay,
		SkipDescriptions: c.Session.SkipDescriptions,
	}.WithDefaults()
}

// OpenCache opens the configured backend. An empty Cache.Dir means
// cache.DefaultDir.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.Cache.Redis)
	}
	dir := c.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.NewFileCache(dir)
}
