// Package config assembles runtime configuration. Values come from, in
// increasing priority: built-in defaults, a YAML file, a .env file in the
// working directory, SHERPA_* environment variables and finally flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/watcher"
)

// Config is the full application configuration.
type Config struct {
	// Mode is the default pedagogical mode.
	Mode string `yaml:"mode" validate:"oneof=tutorial guided challenge debug"`
	// Language is the default exercise language.
	Language string `yaml:"language" validate:"oneof=python py go golang"`
	// OutDir receives exercise files. Empty means the working directory.
	OutDir string `yaml:"out_dir"`
	// PaperDir is searched for paper text files named by --paper.
	PaperDir string `yaml:"paper_dir"`

	Skeleton skeleton.Config     `yaml:"skeleton"`
	Watcher  watcher.Config      `yaml:"watcher"`
	Review   review.Config       `yaml:"review"`
	Policy   adaptive.Thresholds `yaml:"policy"`
	LLM      LLMConfig           `yaml:"llm"`
	Log      LogConfig           `yaml:"log"`
}

// LLMConfig holds the provider settings that may live in the config file.
// API keys are read from the environment only.
type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
	MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`
	RateBurst   int           `yaml:"rate_burst" validate:"gte=0"`
}

// LogConfig controls the log file written alongside the console output.
type LogConfig struct {
	// File is the JSON log path. Empty disables file logging.
	File  string `yaml:"file"`
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	lc := llm.DefaultConfig()
	return Config{
		Mode:     "tutorial",
		Language: "python",
		Skeleton: skeleton.DefaultConfig(),
		Watcher:  watcher.DefaultConfig(),
		Review:   review.DefaultConfig(),
		Policy:   adaptive.DefaultThresholds(),
		LLM: LLMConfig{
			Timeout:     lc.Timeout,
			MinInterval: lc.MinInterval,
			RateBurst:   lc.RateBurst,
		},
		Log: LogConfig{Level: "debug"},
	}
}

// Load builds the configuration. path names an explicit config file; when
// empty, $SHERPA_CONFIG and then the default location are tried, and a
// missing file is not an error.
func Load(path string) (Config, error) {
	// A .env file only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("SHERPA_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(&cfg, path, explicit); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/sherpa/config.yaml, or the
// ~/.config equivalent.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sherpa", "config.yaml")
}

func loadFile(cfg *Config, path string, required bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	// Unmarshal over the defaults so absent keys keep their values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHERPA_MODE"); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("SHERPA_LANG"); v != "" {
		cfg.Language = strings.ToLower(v)
	}
	if v := os.Getenv("SHERPA_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("SHERPA_PAPER_DIR"); v != "" {
		cfg.PaperDir = v
	}
	if v := os.Getenv("SHERPA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SHERPA_REVIEW_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Review.Timeout = d
		}
	}
	if v := os.Getenv("SHERPA_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watcher.Debounce = d
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section. The first failing field is reported by
// its YAML path.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s: failed %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// fieldPath turns "Config.Watcher.Debounce" into "watcher.debounce".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

// LLMProvider merges the file settings into the environment-derived provider
// configuration. The environment wins for provider and model; the file
// only fills what the environment left unset.
func (c Config) LLMProvider(base llm.Config) llm.Config {
	if os.Getenv("SHERPA_LLM_PROVIDER") == "" && c.LLM.Provider != "" {
		base.Provider = c.LLM.Provider
	}
	if c.LLM.Model != "" {
		switch base.Provider {
		case "anthropic":
			if os.Getenv("SHERPA_ANTHROPIC_MODEL") == "" {
				base.Anthropic.Model = c.LLM.Model
			}
		case "openai":
			if os.Getenv("SHERPA_OPENAI_MODEL") == "" {
				base.OpenAI.Model = c.LLM.Model
			}
		case "gemini":
			if os.Getenv("SHERPA_GEMINI_MODEL") == "" {
				base.Gemini.Model = c.LLM.Model
			}
		case "openrouter":
			if os.Getenv("SHERPA_OPENROUTER_MODEL") == "" {
				base.OpenRouter.Model = c.LLM.Model
			}
		}
	}
	if c.LLM.BaseURL != "" {
		switch base.Provider {
		case "anthropic":
			if base.Anthropic.BaseURL == "" {
				base.Anthropic.BaseURL = c.LLM.BaseURL
			}
		case "openai":
			if base.OpenAI.BaseURL == "" {
				base.OpenAI.BaseURL = c.LLM.BaseURL
			}
		case "openrouter":
			if base.OpenRouter.BaseURL == "" {
				base.OpenRouter.BaseURL = c.LLM.BaseURL
			}
		}
	}
	if os.Getenv("SHERPA_LLM_TIMEOUT") == "" {
		base.Timeout = c.LLM.Timeout
	}
	base.MinInterval = c.LLM.MinInterval
	base.RateBurst = c.LLM.RateBurst
	return base
}
