package config

import (
	"os"
	"testing"
	"time"

	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	cfg := LoadConfig()
	assert.Equal(t, "input.json", cfg.InputFile)
	assert.Equal(t, "output.json", cfg.OutputFile)
	assert.Equal(t, 60*time.Minute, cfg.ScheduleInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, []string{"ebay", "amazon", "walmart"}, cfg.EnabledPlatforms)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.DatabaseFile)

	// Test with environment variables
	os.Setenv("INPUT_FILE", "items.json")
	os.Setenv("SCHEDULE_INTERVAL_MINUTES", "15")
	os.Setenv("ENABLED_PLATFORMS", "bestbuy, ebay")
	os.Setenv("REQUEST_DELAY_SECONDS", "0")
	os.Setenv("EBAY_URL", "https://example.com/search?q=%s")

	cfg = LoadConfig()
	assert.Equal(t, "items.json", cfg.InputFile)
	assert.Equal(t, 15*time.Minute, cfg.ScheduleInterval)
	assert.Equal(t, []string{"bestbuy", "ebay"}, cfg.EnabledPlatforms)
	assert.Equal(t, time.Duration(0), cfg.RequestDelay)
	assert.Equal(t, "https://example.com/search?q=%s", cfg.EbayURL)

	// Clean up
	os.Unsetenv("INPUT_FILE")
	os.Unsetenv("SCHEDULE_INTERVAL_MINUTES")
	os.Unsetenv("ENABLED_PLATFORMS")
	os.Unsetenv("REQUEST_DELAY_SECONDS")
	os.Unsetenv("EBAY_URL")
}

func TestLoadConfigUnparseableNumbersKeepDefaults(t *testing.T) {
	os.Setenv("REQUEST_DELAY_SECONDS", "abc")
	os.Setenv("SCHEDULE_INTERVAL_MINUTES", "soon")
	os.Setenv("MIN_TITLE_SIMILARITY", "high")
	defer func() {
		os.Unsetenv("REQUEST_DELAY_SECONDS")
		os.Unsetenv("SCHEDULE_INTERVAL_MINUTES")
		os.Unsetenv("MIN_TITLE_SIMILARITY")
	}()

	cfg := LoadConfig()
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, 60*time.Minute, cfg.ScheduleInterval)
	assert.Equal(t, 0.0, cfg.MinTitleSimilarity)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			InputFile:        "input.json",
			OutputFile:       "output.json",
			ScheduleInterval: time.Minute,
			RequestTimeout:   10 * time.Second,
			RequestDelay:     time.Second,
			EnabledPlatforms: []string{"ebay"},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.ScheduleInterval = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))

	cfg = valid()
	cfg.EnabledPlatforms = nil
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.EnabledPlatforms = []string{"ebay", "etsy"}
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "etsy")

	cfg = valid()
	cfg.MinTitleSimilarity = 120
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RequestDelay = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
	assert.Nil(t, splitList(""))
}
