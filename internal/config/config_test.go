package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("SUMMARY_CACHE_TTL", "")
	t.Setenv("CORS_ORIGIN", "")

	cfg := Load()
	assert.Equal(t, "4000", cfg.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, "jjc-attendance", cfg.CloudinaryFolder)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "7")
	t.Setenv("CORS_ALLOW_VERCEL_PREVIEWS", "1")
	t.Setenv("CORS_ORIGIN", " https://App.example.com/ ,http://localhost:5173,")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7, cfg.RateLimitPerMin)
	assert.True(t, cfg.CORSAllowPreviews)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")

	cfg := Load()
	assert.Equal(t, 8*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, App{}.Location())
	assert.Equal(t, time.UTC, App{Timezone: "UTC"}.Location())
	assert.Equal(t, time.Local, App{Timezone: "Mars/Olympus"}.Location())
}
