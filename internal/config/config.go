package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults match the throughput profile of a mid-size model on a single
// accelerator; override them in the config file to emulate other setups.
const (
	DefaultHost             = "127.0.0.1"
	DefaultPort             = 8000
	DefaultModel            = "emulated-vllm"
	DefaultPrefillTPS       = 8000
	DefaultDecodeTPS        = 50
	DefaultCompletionTokens = 128
	DefaultThinkingTokens   = 32
	DefaultCharsPerToken    = 4
)

// DefaultTriggerPatterns is the ordered catalog of literal substrings
// whose presence in the last user message selects the tool-call response
// branch. Catalog order decides ties, so earlier entries win.
var DefaultTriggerPatterns = []string{
	"def ", "class ", "import ", "from ", "async def ", "await ",
	"__init__", "if __name__ == '__main__'", "template<", "std::vector",
	"#include <iostream>", "int main(", "constexpr", "nullptr",
	"using namespace std", "std::move", "printf(", "struct ", "TODO:",
	"FIXME:", "http://", "https://", "0x", "lambda ", "console.log(",
	"function(", "SELECT ", "className=", "useState(", "pytest",
	"#define ", "std::unique_ptr", "raise ", "return ",
}

// Config holds every process-wide tunable of the emulator. It is read
// once at startup and treated as immutable afterwards; each server
// instance receives its own value so tests can run several differently
// tuned servers side by side.
type Config struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Model string `yaml:"model"`

	PrefillTPS       int `yaml:"prefill_tps"`
	DecodeTPS        int `yaml:"decode_tps"`
	CompletionTokens int `yaml:"default_completion_tokens"`
	ThinkingTokens   int `yaml:"thinking_tokens"`
	CharsPerToken    int `yaml:"chars_per_token"`

	TriggerPatterns []string `yaml:"trigger_patterns"`

	LogLevel string `yaml:"log_level"`
	// MetricsPath exposes Prometheus metrics when set. Empty (the
	// default) keeps the HTTP surface limited to the chat endpoint.
	MetricsPath string `yaml:"metrics_path"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file and fills unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.PrefillTPS == 0 {
		c.PrefillTPS = DefaultPrefillTPS
	}
	if c.DecodeTPS == 0 {
		c.DecodeTPS = DefaultDecodeTPS
	}
	if c.CompletionTokens == 0 {
		c.CompletionTokens = DefaultCompletionTokens
	}
	if c.ThinkingTokens == 0 {
		c.ThinkingTokens = DefaultThinkingTokens
	}
	if c.CharsPerToken == 0 {
		c.CharsPerToken = DefaultCharsPerToken
	}
	if c.TriggerPatterns == nil {
		c.TriggerPatterns = DefaultTriggerPatterns
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Addr returns the host:port pair the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
