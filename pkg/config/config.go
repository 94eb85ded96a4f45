// Package config loads and caches the router configuration. The decision
// thresholds and score weights are policy constants that live here so they
// can be tuned in one place without touching decision logic.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Classifier decision thresholds (defaults). The staircase order is fixed;
// only the values are tunable.
const (
	DefaultChitChatThreshold  = 0.80
	DefaultEBSThreshold       = 0.60
	DefaultAmbiguousThreshold = 0.30
)

// Router gate defaults.
const (
	DefaultConfidenceThreshold = 0.70
	DefaultClosenessGap        = 0.05
	DefaultMaxAlternatives     = 3
)

// DefaultVagueWords is the documented bilingual vague-term vocabulary used
// for the ambiguity penalty. Configurable via router.vague_words.
var DefaultVagueWords = []string{
	"status", "check", "health",
	"durum", "kontrol", "sağlık",
}

// ScoreWeights defines the per-component weights of the final score.
type ScoreWeights struct {
	KeywordMatch     float64 `yaml:"keyword_match"`
	IntentMatch      float64 `yaml:"intent_match"`
	SQLShape         float64 `yaml:"sql_shape"`
	Recency          float64 `yaml:"recency"`
	Priority         float64 `yaml:"priority"`
	AmbiguityPenalty float64 `yaml:"ambiguity_penalty"`
}

// DefaultScoreWeights returns the documented policy weight set. The maximum
// attainable score before penalty is 1.05.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		KeywordMatch:     0.40,
		IntentMatch:      0.35,
		SQLShape:         0.10,
		Recency:          0.10,
		Priority:         0.10,
		AmbiguityPenalty: 0.05,
	}
}

// MaxAttainable returns the sum of the positive weights.
func (w ScoreWeights) MaxAttainable() float64 {
	return w.KeywordMatch + w.IntentMatch + w.SQLShape + w.Recency + w.Priority
}

// ClassifierConfig configures the intent classifier thresholds.
type ClassifierConfig struct {
	ChitChatThreshold  float64 `yaml:"chit_chat_threshold"`
	EBSThreshold       float64 `yaml:"ebs_control_threshold"`
	AmbiguousThreshold float64 `yaml:"ambiguous_threshold"`

	// ExtraNegativeSamples extends the built-in chit-chat sample set.
	ExtraNegativeSamples []string `yaml:"extra_negative_samples,omitempty"`
}

// RouterConfig configures scoring and gating.
type RouterConfig struct {
	Weights             ScoreWeights `yaml:"weights"`
	ConfidenceThreshold float64      `yaml:"confidence_threshold"`
	ClosenessGap        float64      `yaml:"closeness_gap"`
	MaxAlternatives     int          `yaml:"max_alternatives"`
	VagueWords          []string     `yaml:"vague_words,omitempty"`
}

// GuardConfig configures the prompt guard chain.
type GuardConfig struct {
	MaxPromptLength int `yaml:"max_prompt_length"`
}

// RedisConfig configures the redis audit store backend.
type RedisConfig struct {
	Address    string `yaml:"address"`
	Database   int    `yaml:"database"`
	Password   string `yaml:"password"`
	KeyPrefix  string `yaml:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// AuditConfig configures decision recording.
type AuditConfig struct {
	MaxRecords int         `yaml:"max_records"`
	Backend    string      `yaml:"backend"` // "memory" or "redis"
	Redis      RedisConfig `yaml:"redis"`
}

// Config is the root configuration.
type Config struct {
	CatalogDir  string           `yaml:"catalog_dir"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Router      RouterConfig     `yaml:"router"`
	Guard       GuardConfig      `yaml:"guard"`
	Audit       AuditConfig      `yaml:"audit"`
	MetricsPort int              `yaml:"metrics_port"`
}

var (
	cfg    *Config
	cfgErr error
	once   sync.Once
	mu     sync.RWMutex
)

// Load parses the config file once and caches it globally.
func Load(path string) (*Config, error) {
	once.Do(func() {
		c, err := Parse(path)
		if err != nil {
			cfgErr = err
			return
		}
		mu.Lock()
		cfg = c
		mu.Unlock()
	})
	if cfgErr != nil {
		return nil, cfgErr
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg, nil
}

// Parse reads and validates a config file without touching the global cache.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	c.applyDefaults()

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a config with every default applied, for callers that run
// without a config file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Get returns the cached configuration (nil before Load).
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Replace swaps the globally cached config. Safe for concurrent readers.
func Replace(newCfg *Config) {
	mu.Lock()
	cfg = newCfg
	cfgErr = nil
	mu.Unlock()
}

func (c *Config) applyDefaults() {
	if c.CatalogDir == "" {
		c.CatalogDir = "knowledge/controls"
	}
	if c.Classifier.ChitChatThreshold == 0 {
		c.Classifier.ChitChatThreshold = DefaultChitChatThreshold
	}
	if c.Classifier.EBSThreshold == 0 {
		c.Classifier.EBSThreshold = DefaultEBSThreshold
	}
	if c.Classifier.AmbiguousThreshold == 0 {
		c.Classifier.AmbiguousThreshold = DefaultAmbiguousThreshold
	}
	if c.Router.Weights == (ScoreWeights{}) {
		c.Router.Weights = DefaultScoreWeights()
	}
	if c.Router.ConfidenceThreshold == 0 {
		c.Router.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.Router.ClosenessGap == 0 {
		c.Router.ClosenessGap = DefaultClosenessGap
	}
	if c.Router.MaxAlternatives == 0 {
		c.Router.MaxAlternatives = DefaultMaxAlternatives
	}
	if len(c.Router.VagueWords) == 0 {
		c.Router.VagueWords = append([]string(nil), DefaultVagueWords...)
	}
	if c.Guard.MaxPromptLength == 0 {
		c.Guard.MaxPromptLength = 2000
	}
	if c.Audit.MaxRecords == 0 {
		c.Audit.MaxRecords = 200
	}
	if c.Audit.Backend == "" {
		c.Audit.Backend = "memory"
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = 9190
	}
}

func (c *Config) validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: %s must be in [0,1], got %v", name, v)
		}
		return nil
	}
	checks := []error{
		inUnit("classifier.chit_chat_threshold", c.Classifier.ChitChatThreshold),
		inUnit("classifier.ebs_control_threshold", c.Classifier.EBSThreshold),
		inUnit("classifier.ambiguous_threshold", c.Classifier.AmbiguousThreshold),
		inUnit("router.confidence_threshold", c.Router.ConfidenceThreshold),
		inUnit("router.closeness_gap", c.Router.ClosenessGap),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if c.Router.Weights.MaxAttainable() <= 0 {
		return fmt.Errorf("config: router.weights must have a positive sum")
	}
	switch c.Audit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: audit.backend must be memory or redis, got %q", c.Audit.Backend)
	}
	if c.Audit.Backend == "redis" && c.Audit.Redis.Address == "" {
		return fmt.Errorf("config: audit.redis.address is required for the redis backend")
	}
	return nil
}
