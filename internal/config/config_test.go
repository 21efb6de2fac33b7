package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SEARCH_URL", "")
	t.Setenv("STATS_CONCURRENCY", "")

	cfg := Load()

	assert.Equal(t, "https://www.ebsi.co.kr/ebs/xip/xipc/previousPaperListAjax.ajax", cfg.SearchURL)
	assert.Equal(t, "223120002", cfg.WorksheetSubjectID)
	assert.Equal(t, "99", cfg.WorksheetPaperTypeID)
	assert.Equal(t, 8, cfg.StatsConcurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 6*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, 10*time.Minute, cfg.SessionSweepInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STATS_URL", "http://localhost:9999/stats")
	t.Setenv("STATS_CONCURRENCY", "3")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("STATS_CACHE_TTL", "1h")

	cfg := Load()

	assert.Equal(t, "http://localhost:9999/stats", cfg.StatsURL)
	assert.Equal(t, 3, cfg.StatsConcurrency)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, time.Hour, cfg.StatsCacheTTL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STATS_CONCURRENCY", "many")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 8, cfg.StatsConcurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}
