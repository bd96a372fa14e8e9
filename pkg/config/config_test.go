package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "01/02/2006", cfg.ReportCards.DefaultDateFormat)
	assert.Equal(t, 10*time.Minute, cfg.RenderCache.TTL)
	assert.False(t, cfg.RenderCache.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
	v.Set("RENDER_CACHE_TTL", "not-a-duration")
	v.Set("JWT_EXPIRATION", "90m")
	v.Set("REPORT_CARD_DATE_FORMAT", "2006-01-02")

	cfg := fromViper(v)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.RenderCache.TTL)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "2006-01-02", cfg.ReportCards.DefaultDateFormat)
}

func TestLoadReadsEnvironment(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_RENDER_CACHE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.RenderCache.Enabled)
}

func TestLoadRejectsLayoutWithoutTokens(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("REPORT_CARD_DATE_FORMAT", "MM/dd/yyyy")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "REPORT_CARD_DATE_FORMAT")
}

func TestValidateAcceptsGoLayouts(t *testing.T) {
	for _, layout := range []string{"01/02/2006", "2006-01-02", "02 Jan 2006"} {
		cfg := &Config{ReportCards: ReportCardConfig{DefaultDateFormat: layout}}
		assert.NoError(t, cfg.validate(), layout)
	}
}
