package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/banshee-data/pointselect/internal/selection"
)

// DefaultConfigPath is the path to the canonical selection service defaults.
const DefaultConfigPath = "config/selection.defaults.json"

// SelectionConfig is the root configuration for the selection service.
// Omitted fields fall back to the defaults returned by the Get* methods,
// so partial files are safe.
type SelectionConfig struct {
	// Transport
	ListenAddr      *string `json:"listen_addr,omitempty"`
	MaxMessageBytes *int    `json:"max_message_bytes,omitempty"`

	// Worker pool
	Workers        *int    `json:"workers,omitempty"`
	QueueDepth     *int    `json:"queue_depth,omitempty"`
	RequestTimeout *string `json:"request_timeout,omitempty"` // duration string like "30s"
	SlowRequest    *string `json:"slow_request,omitempty"`    // duration string like "250ms"

	// Kernel sharding
	Shards         *int `json:"shards,omitempty"` // 0 = one per CPU
	MinShardPoints *int `json:"min_shard_points,omitempty"`
}

// EmptySelectionConfig returns a SelectionConfig with all fields unset.
func EmptySelectionConfig() *SelectionConfig {
	return &SelectionConfig{}
}

// LoadSelectionConfig loads a SelectionConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadSelectionConfig(path string) (*SelectionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySelectionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *SelectionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/selection/rpc/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSelectionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that set values are usable.
func (c *SelectionConfig) Validate() error {
	if c.ListenAddr != nil && *c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.MaxMessageBytes != nil && *c.MaxMessageBytes < 4*1024 {
		return fmt.Errorf("max_message_bytes must be at least 4096, got %d", *c.MaxMessageBytes)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.QueueDepth != nil && *c.QueueDepth < 0 {
		return fmt.Errorf("queue_depth must be non-negative, got %d", *c.QueueDepth)
	}
	if c.Shards != nil && *c.Shards < 0 {
		return fmt.Errorf("shards must be non-negative, got %d", *c.Shards)
	}
	if c.MinShardPoints != nil && *c.MinShardPoints < 0 {
		return fmt.Errorf("min_shard_points must be non-negative, got %d", *c.MinShardPoints)
	}
	if c.RequestTimeout != nil && *c.RequestTimeout != "" {
		d, err := time.ParseDuration(*c.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout '%s': %w", *c.RequestTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("request_timeout must be positive, got %s", *c.RequestTimeout)
		}
	}
	if c.SlowRequest != nil && *c.SlowRequest != "" {
		if _, err := time.ParseDuration(*c.SlowRequest); err != nil {
			return fmt.Errorf("invalid slow_request '%s': %w", *c.SlowRequest, err)
		}
	}
	return nil
}

// GetListenAddr returns the listen_addr value or the default.
func (c *SelectionConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return "localhost:50061"
	}
	return *c.ListenAddr
}

// GetMaxMessageBytes returns the max_message_bytes value or the default.
// The default fits roughly ten million points per request.
func (c *SelectionConfig) GetMaxMessageBytes() int {
	if c.MaxMessageBytes == nil {
		return 128 * 1024 * 1024
	}
	return *c.MaxMessageBytes
}

// GetWorkers returns the workers value or the default.
func (c *SelectionConfig) GetWorkers() int {
	if c.Workers == nil {
		return 2
	}
	return *c.Workers
}

// GetQueueDepth returns the queue_depth value or the default.
func (c *SelectionConfig) GetQueueDepth() int {
	if c.QueueDepth == nil {
		return 16
	}
	return *c.QueueDepth
}

// GetRequestTimeout parses and returns request_timeout.
func (c *SelectionConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == nil || *c.RequestTimeout == "" {
		return 30 * time.Second // default
	}
	d, err := time.ParseDuration(*c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second // default on parse error
	}
	return d
}

// GetSlowRequest parses and returns slow_request. Zero disables slow
// request logging.
func (c *SelectionConfig) GetSlowRequest() time.Duration {
	if c.SlowRequest == nil || *c.SlowRequest == "" {
		return 250 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.SlowRequest)
	if err != nil {
		return 250 * time.Millisecond // default on parse error
	}
	return d
}

// GetShards returns the shards value, resolving 0 to the CPU count.
func (c *SelectionConfig) GetShards() int {
	if c.Shards == nil || *c.Shards == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Shards
}

// GetMinShardPoints returns the min_shard_points value or the default.
func (c *SelectionConfig) GetMinShardPoints() int {
	if c.MinShardPoints == nil {
		return 64 * 1024
	}
	return *c.MinShardPoints
}

// ShardOptions returns the kernel sharding options for this config.
func (c *SelectionConfig) ShardOptions() selection.ShardOptions {
	return selection.ShardOptions{
		Shards:         c.GetShards(),
		MinShardPoints: c.GetMinShardPoints(),
	}
}
