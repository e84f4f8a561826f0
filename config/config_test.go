package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaultsWithEnvCredential(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, " secret ")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)

	l := cfg.PageLayout()
	assert.Equal(t, "a4", l.Format)
	assert.Equal(t, 30.0, l.MarginPt)
	assert.Equal(t, 1200, l.RenderWidthPx)
}

func TestLoadMissingCredentialIsNotAnError(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.LLMSettings().APIKey)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("MY_KEY", "from-env")
	p := writeFile(t, "config.yaml", `
server_addr: ":9090"
log_mode: prod
llm:
  provider: deepseek
  model: deepseek-chat
  api_key_env: MY_KEY
  base_url: https://api.deepseek.com
  timeout: 45s
pdf:
  format: Letter
  margin_pt: 36
  render_width_px: 1000
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	s := cfg.LLMSettings()
	assert.Equal(t, "deepseek", s.Provider)
	assert.Equal(t, "from-env", s.APIKey)
	assert.Equal(t, 45*time.Second, s.Timeout)
	assert.Equal(t, "letter", cfg.PageLayout().Format)
	assert.Equal(t, 60*time.Second, cfg.ChromeConfig().Timeout)
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, "config.json", `{"llm": {"provider": "openai", "model": "gpt-4o-mini", "api_key": "literal"}}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "literal", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "a4", cfg.PDF.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"provider":     "llm: {provider: claude}",
		"deepseek url": "llm: {provider: deepseek}",
		"format":       "pdf: {format: a3}",
		"render width": "pdf: {render_width_px: 0}",
		"print scale":  "pdf: {render_width_px: 9000}",
		"session ttl":  "session_ttl: -1m",
		"margin":       "pdf: {margin_pt: 400}",
		"log mode":     "log_mode: verbose",
		"bad yaml":     "llm: [",
	}
	for name, body := range cases {
		_, err := Load(writeFile(t, "c.yaml", body))
		assert.Error(t, err, name)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().LLM.Model, cfg.LLM.Model)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
