// Package config loads where-playset and where-playsetd settings from the
// environment. Every variable carries the WHERE_ prefix, for example
// WHERE_STORE_DIR or WHERE_REMOTE_PEERS.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "where"

// Config holds all application configuration.
type Config struct {
	Store  StoreConfig
	Server ServerConfig
	Remote RemoteConfig
	Log    LogConfig
}

// StoreConfig locates the local content table and category index.
type StoreConfig struct {
	// Backend names a casregistry backend; empty means localfs under Dir.
	Backend   string `envconfig:"BACKEND"`
	Dir       string `envconfig:"DIR" default:"./where-data/cas"`
	IndexDir  string `envconfig:"INDEX_DIR" default:"./where-data/index"`
	CASConfig string `envconfig:"CAS_CONFIG"`
}

// ServerConfig holds daemon listener configuration.
type ServerConfig struct {
	Listen      string `envconfig:"LISTEN" default:"127.0.0.1:7420"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// RemoteConfig describes the peers reachable for export.
type RemoteConfig struct {
	Peers       Peers         `envconfig:"PEERS"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	RPCTimeout  time.Duration `envconfig:"RPC_TIMEOUT" default:"30s"`
	MaxMsgBytes int           `envconfig:"MAX_MSG_BYTES" default:"0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:      "./where-data/cas",
			IndexDir: "./where-data/index",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:7420",
		},
		Remote: RemoteConfig{
			Peers:       Peers{},
			DialTimeout: 5 * time.Second,
			RPCTimeout:  30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Peers maps a destination store id to its gRPC target.
//
// The text form is a comma separated list of id=target pairs:
//
//	alice=10.0.0.5:7420,bob=dns:///bob.example:7420
type Peers map[string]string

// Decode implements envconfig.Decoder.
func (p *Peers) Decode(value string) error {
	out := Peers{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, target, ok := strings.Cut(pair, "=")
		id, target = strings.TrimSpace(id), strings.TrimSpace(target)
		if !ok || id == "" || target == "" {
			return fmt.Errorf("invalid peer %q: want id=target", pair)
		}
		if _, dup := out[id]; dup {
			return fmt.Errorf("duplicate peer id %q", id)
		}
		out[id] = target
	}
	*p = out
	return nil
}

// Set implements flag.Value. Pairs accumulate across repeated flags.
func (p *Peers) Set(value string) error {
	var add Peers
	if err := add.Decode(value); err != nil {
		return err
	}
	if *p == nil {
		*p = Peers{}
	}
	for id, target := range add {
		(*p)[id] = target
	}
	return nil
}

func (p Peers) String() string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+"="+p[id])
	}
	return strings.Join(parts, ",")
}
