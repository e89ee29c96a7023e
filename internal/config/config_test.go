package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                        "",
		"QUOTE_DEFAULT_BUSINESS_SIZE": "",
		"QUOTE_MAX_ITEMS":             "",
		"QUOTE_DRAFT_TTL":             "",
		"OBS_TRACING_SAMPLING_RATIO":  "",
		"RATE_LIMIT_PER_MINUTE":       "",
		"TRUST_FORWARD_HEADER":        "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "individual", cfg.DefaultBusinessSize)
	require.Equal(t, 50, cfg.MaxItems)
	require.Equal(t, 24*time.Hour, cfg.DraftTTL)
	require.Equal(t, int64(120), cfg.RateLimitPerMinute)
	require.InDelta(t, 1.0, cfg.TracingSampling, 0.0001)
	require.False(t, cfg.TrustForwardHeader)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                        ":9090",
		"CORS_ALLOWED_ORIGINS":        "https://a.test, https://b.test ,",
		"QUOTE_DEFAULT_BUSINESS_SIZE": "XS",
		"QUOTE_MAX_ITEMS":             "12",
		"QUOTE_DRAFT_TTL":             "90m",
		"OBS_ENABLE_PROMETHEUS":       "false",
		"SECURITY_HEADERS_ENABLED":    "0",
		"TRUST_FORWARD_HEADER":        "true",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "xs", cfg.DefaultBusinessSize)
	require.Equal(t, 12, cfg.MaxItems)
	require.Equal(t, 90*time.Minute, cfg.DraftTTL)
	require.False(t, cfg.MetricsEnabled)
	require.False(t, cfg.SecurityHeadersEnabled)
	require.True(t, cfg.TrustForwardHeader)
}

func TestLoadRejectsUnknownBusinessSize(t *testing.T) {
	_, err := LoadForTests(map[string]string{"QUOTE_DEFAULT_BUSINESS_SIZE": "galactic"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "QUOTE_DEFAULT_BUSINESS_SIZE")
}

func TestLoadRejectsNonPositiveMaxItems(t *testing.T) {
	_, err := LoadForTests(map[string]string{"QUOTE_MAX_ITEMS": "0"})
	require.Error(t, err)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{"QUOTE_DRAFT_TTL": "soon"})
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.DraftTTL)
}
