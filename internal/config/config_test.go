package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5.0, cfg.GSTRatePercent)
	assert.Equal(t, 50, cfg.FeedLimit)
	assert.Equal(t, 20, cfg.FeedPageSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	roles := cfg.Roles()
	assert.True(t, roles.IsFullAccess("46e786df-0272-4f22-aec2-56d2a517fa9d"))
	assert.True(t, roles.IsExecutive("1fe1759c-dc14-4933-947a-c240c046bcde"))
}

func TestParseRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("ROLE_EXECUTIVE_ID", "exec-role")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "exec-role", cfg.Roles().Executive)
}

func TestParseRejectsInvalidTaxRate(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("GST_RATE_PERCENT", "150")

	_, err := Parse()
	assert.Error(t, err)
}
