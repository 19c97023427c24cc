package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const envPrefix = "PHOTOFINISH_"

// LoadDotEnv reads .env files into the process environment. Missing files are
// reported as an error that callers may ignore. With no paths, ".env" is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is the float64 counterpart of GetEnvInt.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// ApplyEnv overrides fields from PHOTOFINISH_* environment variables and
// re-validates the result.
func (c *Config) ApplyEnv() {
	c.LogLevel = GetEnv(envPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = GetEnv(envPrefix+"LOG_FORMAT", c.LogFormat)
	c.Direction = GetEnv(envPrefix+"DIRECTION", c.Direction)
	c.DurationMs = GetEnvInt(envPrefix+"DURATION_MS", c.DurationMs)
	c.PixelsPerMs = GetEnvFloat(envPrefix+"PIXELS_PER_MS", c.PixelsPerMs)
	c.VideoBoxX = GetEnvInt(envPrefix+"VIDEO_BOX_X", c.VideoBoxX)
	c.VideoBoxY = GetEnvInt(envPrefix+"VIDEO_BOX_Y", c.VideoBoxY)
	c.VideoBoxHeight = GetEnvInt(envPrefix+"VIDEO_BOX_HEIGHT", c.VideoBoxHeight)
	c.VideoBoxWidthPerMs = GetEnvFloat(envPrefix+"VIDEO_BOX_WIDTH_PER_MS", c.VideoBoxWidthPerMs)
	c.Source = GetEnv(envPrefix+"SOURCE", c.Source)
	c.SourcePath = GetEnv(envPrefix+"SOURCE_PATH", c.SourcePath)
	c.Device = GetEnv(envPrefix+"DEVICE", c.Device)
	c.FrameRate = GetEnvInt(envPrefix+"FRAME_RATE", c.FrameRate)
	c.ExportDir = GetEnv(envPrefix+"EXPORT_DIR", c.ExportDir)
	c.ExportPrefix = GetEnv(envPrefix+"EXPORT_PREFIX", c.ExportPrefix)
	c.ListenAddr = GetEnv(envPrefix+"LISTEN_ADDR", c.ListenAddr)
	if s := os.Getenv(envPrefix + "DEBUG"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			c.Debug = b
		}
	}
	_ = c.Validate()
}
