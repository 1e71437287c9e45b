package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 3*time.Minute, cfg.LLMTimeout)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.R2.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"PORT":                  "9000",
		"APP_ENV":               "production",
		"SESSION_SECRET":        "s3cret",
		"SESSION_MAX_AGE":       "2h",
		"LLM_TIMEOUT":           "45s",
		"REDIS_ADDR":            "localhost:6379",
		"REDIS_DB":              "3",
		"MAX_UPLOAD_BYTES":      "1024",
		"CLOUDFLARE_ACCOUNT_ID": "acc",
		"R2_BUCKET_NAME":        "bucket",
		"R2_ACCESS_KEY_ID":      "id",
		"R2_SECRET_ACCESS_KEY":  "secret",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.R2.Enabled())
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"secret required in prod": {"APP_ENV": "prod"},
		"bad duration":            {"LLM_TIMEOUT": "soon"},
		"negative duration":       {"SESSION_MAX_AGE": "-1h"},
		"bad redis db":            {"REDIS_DB": "x"},
		"zero upload limit":       {"MAX_UPLOAD_BYTES": "0"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookup(vars))
			assert.Error(t, err)
		})
	}
}
