package longdoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Boundary detection engines selectable from a Config.
const (
	EngineRE2      = "re2"
	EngineRegexp2  = "regexp2"
	EngineMarkdown = "markdown"
)

// Config holds the tunable parameters of segmentation and loading. The zero value of any field
// means "use the default".
type Config struct {
	// Pattern is the boundary expression. Empty selects DefaultPattern.
	Pattern string `yaml:"pattern"`
	// Engine picks the boundary detector: re2 (default), regexp2 or markdown.
	Engine string `yaml:"engine"`
	// MarkdownLevel is the deepest heading level that starts a segment for the markdown engine.
	MarkdownLevel int `yaml:"markdownLevel"`
	// BatchSize is the number of segments per batch.
	BatchSize int `yaml:"batchSize"`
	// MaxFileBytes bounds accepted document size. Zero selects the 32 MiB default and negative
	// values mean no limit.
	MaxFileBytes int64 `yaml:"maxFileBytes"`
	// Extensions is the accepted file extension whitelist, with leading dots.
	Extensions []string `yaml:"extensions"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Pattern:       DefaultPattern,
		Engine:        EngineRE2,
		MarkdownLevel: 2,
		BatchSize:     DefaultBatchSize,
		MaxFileBytes:  32 << 20,
		Extensions:    []string{".txt", ".text", ".md", ".markdown"},
	}
}

// ParseConfig decodes a YAML configuration and fills unset fields with defaults.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	def := DefaultConfig()
	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}
	if cfg.Engine == "" {
		cfg.Engine = def.Engine
	}
	if cfg.MarkdownLevel <= 0 {
		cfg.MarkdownLevel = def.MarkdownLevel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxFileBytes == 0 {
		cfg.MaxFileBytes = def.MaxFileBytes
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}

	switch cfg.Engine {
	case EngineRE2, EngineRegexp2, EngineMarkdown:
	default:
		return Config{}, fmt.Errorf("unknown boundary engine %q", cfg.Engine)
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}
