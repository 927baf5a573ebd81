package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/D3fc0n3-1/Deal-hunter/logger"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"
)

// KnownPlatforms lists every marketplace identifier a Config may enable.
var KnownPlatforms = []string{"ebay", "amazon", "walmart", "bestbuy"}

// Config represents the application configuration. It is loaded once at
// startup and read-only afterward; changing it requires a restart.
type Config struct {
	// Files
	InputFile    string
	OutputFile   string
	DatabaseFile string // empty disables the sqlite store

	// Scheduling
	ScheduleInterval time.Duration

	// Logging
	LogLevel string

	// Platforms, in the order their results are merged
	EnabledPlatforms []string

	// Scraping parameters shared by all backends
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	UserAgent      string
	BlockTime      time.Duration

	// Optional fuzzy title-relevance floor, 0-100; 0 disables
	MinTitleSimilarity float64

	// Search URL templates; %s is replaced with the encoded query
	EbayURL    string
	AmazonURL  string
	WalmartURL string
	BestBuyURL string

	// API credentials
	BestBuyAPIKey string

	// Memcache platform-block cache; empty disables
	MemcacheAddr string

	// Redis listing publisher; empty addr disables
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	intervalMinutes := getEnvInt("SCHEDULE_INTERVAL_MINUTES", 60)
	timeoutSeconds := getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)
	delaySeconds := getEnvInt("REQUEST_DELAY_SECONDS", 2)
	blockSeconds := getEnvInt("PLATFORM_BLOCK_SECONDS", 300)
	minSimilarity := getEnvFloat("MIN_TITLE_SIMILARITY", 0)
	redisDB := getEnvInt("REDIS_DB", 0)
	redisStreamCount := getEnvInt("REDIS_STREAM_COUNT", 1)
	redisStreamMaxLen := getEnvInt("REDIS_STREAM_MAX_LENGTH", 500)

	return &Config{
		InputFile:        getEnv("INPUT_FILE", "input.json"),
		OutputFile:       getEnv("OUTPUT_FILE", "output.json"),
		DatabaseFile:     getEnv("DATABASE_FILE", ""),
		ScheduleInterval: time.Duration(intervalMinutes) * time.Minute,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnabledPlatforms: splitList(getEnv("ENABLED_PLATFORMS", "ebay,amazon,walmart")),
		RequestTimeout:   time.Duration(timeoutSeconds) * time.Second,
		RequestDelay:     time.Duration(delaySeconds) * time.Second,
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36"),
		BlockTime:            time.Duration(blockSeconds) * time.Second,
		MinTitleSimilarity:   minSimilarity,
		EbayURL:              getEnv("EBAY_URL", "https://www.ebay.com/sch/i.html?_nkw=%s&_sacat=0&LH_BIN=1"),
		AmazonURL:            getEnv("AMAZON_URL", "https://www.amazon.com/s?k=%s"),
		WalmartURL:           getEnv("WALMART_URL", "https://www.walmart.com/search?q=%s"),
		BestBuyURL:           getEnv("BESTBUY_URL", "https://api.bestbuy.com/v1/products(search=%s)"),
		BestBuyAPIKey:        getEnv("BESTBUY_API_KEY", ""),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLen,
		Environment:          getEnv("DEALHUNTER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the process cannot start with.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return apperr.NewConfiguration("INPUT_FILE must not be empty", nil)
	}
	if c.OutputFile == "" {
		return apperr.NewConfiguration("OUTPUT_FILE must not be empty", nil)
	}
	if c.ScheduleInterval <= 0 {
		return apperr.NewConfiguration("SCHEDULE_INTERVAL_MINUTES must be a positive integer", nil)
	}
	if c.RequestTimeout <= 0 {
		return apperr.NewConfiguration("REQUEST_TIMEOUT_SECONDS must be a positive integer", nil)
	}
	if c.RequestDelay < 0 {
		return apperr.NewConfiguration("REQUEST_DELAY_SECONDS must not be negative", nil)
	}
	if len(c.EnabledPlatforms) == 0 {
		return apperr.NewConfiguration("ENABLED_PLATFORMS must name at least one platform", nil)
	}
	for _, name := range c.EnabledPlatforms {
		if !isKnownPlatform(name) {
			return apperr.NewConfiguration(
				fmt.Sprintf("unknown platform %q in ENABLED_PLATFORMS (known: %s)",
					name, strings.Join(KnownPlatforms, ", ")), nil)
		}
	}
	if c.MinTitleSimilarity < 0 || c.MinTitleSimilarity > 100 {
		return apperr.NewConfiguration("MIN_TITLE_SIMILARITY must be within 0-100", nil)
	}
	return nil
}

func isKnownPlatform(name string) bool {
	for _, known := range KnownPlatforms {
		if name == known {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty entries. Order is preserved.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer environment variable. An unparseable value
// keeps the default instead of silently becoming zero.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("Ignoring %s=%q: not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvFloat parses a float environment variable, keeping the default on
// parse failure.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("Ignoring %s=%q: not a number, using %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
