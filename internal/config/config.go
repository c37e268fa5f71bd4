package config

import (
	"os"
	"strconv"
	"time"
)

// Load builds the configuration from environment variables, falling back to
// defaults for anything unset. It never fails; invalid values keep defaults.
func Load() *Config {
	cfg := &Config{
		// Default values
		Port:            "3000",
		AssetsDir:       "./assets/haircuts",
		DetectorURL:     "http://localhost:5001",
		DetectorTimeout: 10 * time.Second,
		JPEGQuality:     85,
		SessionTTL:      30 * time.Minute,
		SessionMerge:    false,
		Env:             "development",
	}

	if val := getStringSetting("APP_PORT"); val != "" {
		cfg.Port = val
	}
	if val := getStringSetting("ASSETS_DIR"); val != "" {
		cfg.AssetsDir = val
	}
	if val := getStringSetting("DETECTOR_URL"); val != "" {
		cfg.DetectorURL = val
	}
	if val := getDurationSetting("DETECTOR_TIMEOUT"); val > 0 {
		cfg.DetectorTimeout = val
	}
	if val := getIntSetting("JPEG_QUALITY"); val > 0 && val <= 100 {
		cfg.JPEGQuality = val
	}
	if val, ok := getDurationSettingOK("SESSION_TTL"); ok {
		cfg.SessionTTL = val
	}
	if val, ok := getBoolSetting("SESSION_MERGE"); ok {
		cfg.SessionMerge = val
	}
	if val := getStringSetting("APP_ENV"); val != "" {
		cfg.Env = val
	}

	return cfg
}

// getStringSetting retrieves a string setting from the environment
func getStringSetting(key string) string {
	return os.Getenv(key)
}

// getIntSetting retrieves an integer setting from the environment
func getIntSetting(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}

// getDurationSetting retrieves a duration setting from the environment
func getDurationSetting(key string) time.Duration {
	d, _ := getDurationSettingOK(key)
	return d
}

// getDurationSettingOK reports whether the key was set and parseable, so a
// deliberate "0" can disable a feature rather than fall back to the default.
func getDurationSettingOK(key string) (time.Duration, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

// getBoolSetting retrieves a boolean setting from the environment
func getBoolSetting(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
