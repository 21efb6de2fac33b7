package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort string
	LogLevel string

	// Remote endpoints
	SearchURL        string
	SearchReferer    string
	StatsURL         string
	StatsReferer     string
	WorksheetURL     string
	WorksheetReferer string

	WorksheetSubjectID   string
	WorksheetPaperTypeID string

	// Cookie header forwarded to the remote site (logged-in session)
	Cookie string

	RequestTimeout   time.Duration
	StatsConcurrency int
	RateLimit        float64 // requests per second, 0 disables limiting

	RedisURL      string
	StatsCacheTTL time.Duration

	MongoURL string
	MongoDB  string

	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8090"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		SearchURL:        getEnv("SEARCH_URL", "https://www.ebsi.co.kr/ebs/xip/xipc/previousPaperListAjax.ajax"),
		SearchReferer:    getEnv("SEARCH_REFERER", "https://www.ebsi.co.kr/ebs/xip/xipc/previousPaperList.ebs?targetCd=D100"),
		StatsURL:         getEnv("STATS_URL", "https://ai-plus.ebs.co.kr/ebs/xip/retrieveSCVWebPaperStat.ajax"),
		StatsReferer:     getEnv("STATS_REFERER", "https://ai-plus.ebs.co.kr/ebs/xip/solvePaper.ebs"),
		WorksheetURL:     getEnv("WORKSHEET_URL", "https://ai-plus.ebs.co.kr/ebs/ai/xipa/createPaperAjax.ajax"),
		WorksheetReferer: getEnv("WORKSHEET_REFERER", "https://ai-plus.ebs.co.kr/ebs/ai/xipa/ItemSearchPaper.ebs?sbjId=S01&globalGradeCd=1"),

		WorksheetSubjectID:   getEnv("WORKSHEET_SUBJECT_ID", "223120002"),
		WorksheetPaperTypeID: getEnv("WORKSHEET_PAPER_TYPE_ID", "99"),

		Cookie: getEnv("EBSI_COOKIE", ""),

		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		StatsConcurrency: getEnvInt("STATS_CONCURRENCY", 8),
		RateLimit:        getEnvFloat("RATE_LIMIT", 0),

		RedisURL:      getEnv("REDIS_URL", ""),
		StatsCacheTTL: getEnvDuration("STATS_CACHE_TTL", 24*time.Hour),

		MongoURL: getEnv("MONGO_URL", ""),
		MongoDB:  getEnv("MONGO_DB", "ebsi_csat"),

		SessionIdleTTL:       getEnvDuration("SESSION_IDLE_TTL", 6*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
