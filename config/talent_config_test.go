package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	t.Setenv("WORKER_ID", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SideEffectsInline, cfg.SideEffectMode)
	assert.Equal(t, "consultant-cvs", cfg.CVBucket)
	assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.ConsumerBlock())
	assert.NotEmpty(t, cfg.WorkerID)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.SupabaseStorageEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SIDE_EFFECT_MODE", "stream")
	t.Setenv("WORKER_ID", "worker-7")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("WRITE_RATE_WINDOW", "30s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.SupabaseStorageEnabled())
	assert.Equal(t, "worker-7", cfg.WorkerID)
	assert.Equal(t, 30*time.Second, cfg.WriteRateWindow)
	assert.Equal(t, []string{
		"https://a.example.com",
		"https://b.example.com",
		"https://app.example.com",
	}, cfg.AllowedOrigins)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database", map[string]string{"DATABASE_URL": ""}, "DATABASE_URL is required"},
		{"stream without redis", map[string]string{"SIDE_EFFECT_MODE": "stream", "REDIS_URL": ""}, "requires REDIS_URL"},
		{"unknown mode", map[string]string{"SIDE_EFFECT_MODE": "kafka"}, `unknown SIDE_EFFECT_MODE "kafka"`},
		{"bad duration", map[string]string{"PROFILE_CACHE_TTL": "soon"}, "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/talent")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.ErrorContains(t, err, tt.want)
		})
	}
}
