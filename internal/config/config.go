// Package config loads service configuration from YAML with environment overrides.
package config

import (
	"time"

	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName       = "bilibili-study-tool"
	defaultServiceVersion    = "1.0.0"
	defaultServicePort       = 8080
	defaultCatalogPath       = "content_filter_keywords.txt"
	defaultQueryWeight       = 10
	defaultItemWeight        = 1
	defaultMaxItems          = 5
	defaultZoneConfidence    = 0.9
	defaultDatabasePath      = "study_tool.db"
	defaultSemanticModel     = "claude-sonnet-4-5-20250929"
	defaultSemanticMaxTokens = 1024
	defaultSemanticTimeout   = 30 * time.Second
	defaultSemanticRPS       = 2
	defaultSemanticBurst     = 4
	defaultBiliBaseURL       = "https://api.bilibili.com"
	defaultBiliTimeout       = 10 * time.Second
	defaultBiliUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// Config holds all configuration for the service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Filter   FilterConfig   `yaml:"filter"`
	Semantic SemanticConfig `yaml:"semantic"`
	Bili     BiliConfig     `yaml:"bili"`
	Database DatabaseConfig `yaml:"database"`
	Logging  logger.Config  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"STUDY_TOOL_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// FilterConfig holds content filter configuration.
type FilterConfig struct {
	CatalogPath    string  `env:"CATALOG_PATH" yaml:"catalog_path"`
	QueryWeight    float64 `yaml:"query_weight"`
	ItemWeight     float64 `yaml:"item_weight"`
	MaxItems       int     `yaml:"max_items"`
	ZoneConfidence float64 `yaml:"zone_confidence"`
}

// SemanticConfig holds configuration for the LLM escalation path.
type SemanticConfig struct {
	Enabled   bool          `yaml:"enabled"`
	APIKey    string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string        `env:"SEMANTIC_MODEL"    yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	RPS       int           `yaml:"rps"`
	Burst     int           `yaml:"burst"`
}

// BiliConfig holds configuration for the bilibili web API client.
type BiliConfig struct {
	BaseURL   string        `env:"BILI_BASE_URL" yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Cookie    string        `env:"BILI_COOKIE" yaml:"cookie"`
}

// DatabaseConfig holds SQLite database configuration.
type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" yaml:"path"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}
	if c.Filter.CatalogPath == "" {
		c.Filter.CatalogPath = defaultCatalogPath
	}
	if c.Filter.QueryWeight == 0 {
		c.Filter.QueryWeight = defaultQueryWeight
	}
	if c.Filter.ItemWeight == 0 {
		c.Filter.ItemWeight = defaultItemWeight
	}
	if c.Filter.MaxItems == 0 {
		c.Filter.MaxItems = defaultMaxItems
	}
	if c.Filter.ZoneConfidence == 0 {
		c.Filter.ZoneConfidence = defaultZoneConfidence
	}
	if c.Semantic.Model == "" {
		c.Semantic.Model = defaultSemanticModel
	}
	if c.Semantic.MaxTokens == 0 {
		c.Semantic.MaxTokens = defaultSemanticMaxTokens
	}
	if c.Semantic.Timeout == 0 {
		c.Semantic.Timeout = defaultSemanticTimeout
	}
	if c.Semantic.RPS == 0 {
		c.Semantic.RPS = defaultSemanticRPS
	}
	if c.Semantic.Burst == 0 {
		c.Semantic.Burst = defaultSemanticBurst
	}
	if c.Bili.BaseURL == "" {
		c.Bili.BaseURL = defaultBiliBaseURL
	}
	if c.Bili.Timeout == 0 {
		c.Bili.Timeout = defaultBiliTimeout
	}
	if c.Bili.UserAgent == "" {
		c.Bili.UserAgent = defaultBiliUserAgent
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	c.Logging.SetDefaults()
}
