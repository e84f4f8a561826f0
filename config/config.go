package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"modul_ajar_generator/exporter"
	"modul_ajar_generator/generator"
)

const DefaultAPIKeyEnv = "API_KEY"

// Config is the whole application configuration. It is loaded once and
// passed explicitly to the components that need it.
type Config struct {
	ServerAddr  string        `yaml:"server_addr"`
	LogMode     string        `yaml:"log_mode" validate:"omitempty,oneof=dev prod production"`
	SessionTTL  time.Duration `yaml:"session_ttl" validate:"gte=0"`
	MaxSessions int           `yaml:"max_sessions" validate:"gte=0"`
	LLM         LLMConfig     `yaml:"llm"`
	PDF         PDFConfig     `yaml:"pdf"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider" validate:"required,oneof=gemini openai deepseek mock"`
	Model     string        `yaml:"model" validate:"required"`
	APIKey    string        `yaml:"api_key"`
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url" validate:"required_if=Provider deepseek"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
}

type PDFConfig struct {
	Format        string        `yaml:"format" validate:"required,oneof=a4 letter legal"`
	MarginPt      float64       `yaml:"margin_pt" validate:"gte=0"`
	RenderWidthPx int           `yaml:"render_width_px" validate:"gt=0"`
	BrowserBin    string        `yaml:"browser_bin"`
	DebuggerURL   string        `yaml:"debugger_url"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Default returns a configuration that works with only API_KEY set.
func Default() Config {
	return Config{
		ServerAddr:  ":8080",
		LogMode:     "dev",
		SessionTTL:  2 * time.Hour,
		MaxSessions: 1000,
		LLM: LLMConfig{
			Provider:  generator.ProviderGemini,
			Model:     generator.DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   60 * time.Second,
		},
		PDF: PDFConfig{
			Format:        exporter.DefaultFormat,
			MarginPt:      exporter.DefaultMarginPt,
			RenderWidthPx: exporter.DefaultRenderWidth,
			Timeout:       60 * time.Second,
		},
	}
}

// Load reads YAML (or JSON) from path over the defaults. An empty path
// yields the defaults. The credential is resolved from the environment
// when api_key is not set literally; a missing credential is not an error here.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.resolveCredential(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional is Load that falls back to defaults when path does not exist.
func LoadOptional(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

func (c *Config) resolveCredential(getenv func(string) string) {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey != "" {
		return
	}
	env := c.LLM.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	c.LLM.APIKey = strings.TrimSpace(getenv(env))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	c.PDF.Format = strings.ToLower(c.PDF.Format)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.PageLayout().Validate()
}

// LLMSettings is the generation client's view of the config.
func (c Config) LLMSettings() generator.LLMSettings {
	return generator.LLMSettings{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLM.Timeout,
	}
}

func (c Config) PageLayout() exporter.PageLayout {
	return exporter.PageLayout{
		Format:        strings.ToLower(c.PDF.Format),
		MarginPt:      c.PDF.MarginPt,
		RenderWidthPx: c.PDF.RenderWidthPx,
	}
}

func (c Config) ChromeConfig() exporter.ChromeConfig {
	return exporter.ChromeConfig{
		Bin:         c.PDF.BrowserBin,
		DebuggerURL: c.PDF.DebuggerURL,
		Timeout:     c.PDF.Timeout,
	}
}
