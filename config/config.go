package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds runtime configuration for the photo finish capture and app behavior.
// Fields may be loaded from a JSON or TOML file and overridden by environment variables.
type Config struct {
	Debug     bool   `json:"debug" toml:"debug"`
	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`

	// Photo finish geometry. Fixed for the lifetime of a capture session.
	Direction          string  `json:"direction" toml:"direction"`
	DurationMs         int     `json:"duration_ms" toml:"duration_ms"`
	PixelsPerMs        float64 `json:"pixels_per_ms" toml:"pixels_per_ms"`
	VideoBoxX          int     `json:"video_box_x" toml:"video_box_x"`
	VideoBoxY          int     `json:"video_box_y" toml:"video_box_y"`
	VideoBoxHeight     int     `json:"video_box_height" toml:"video_box_height"`
	VideoBoxWidthPerMs float64 `json:"video_box_width_per_ms" toml:"video_box_width_per_ms"`
	Interpolation      string  `json:"interpolation" toml:"interpolation"`

	// Video source
	Source      string `json:"source" toml:"source"`
	SourcePath  string `json:"source_path" toml:"source_path"`
	Device      string `json:"device" toml:"device"`
	FrameWidth  int    `json:"frame_width" toml:"frame_width"`
	FrameHeight int    `json:"frame_height" toml:"frame_height"`
	FrameRate   int    `json:"frame_rate" toml:"frame_rate"`

	// Screen source selection rectangle (zero size means full screen)
	SelectionX int `json:"selection_x" toml:"selection_x"`
	SelectionY int `json:"selection_y" toml:"selection_y"`
	SelectionW int `json:"selection_w" toml:"selection_w"`
	SelectionH int `json:"selection_h" toml:"selection_h"`

	// Export
	ExportDir    string `json:"export_dir" toml:"export_dir"`
	ExportPrefix string `json:"export_prefix" toml:"export_prefix"`

	// Remote control server
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
}

// Source kinds understood by the capture layer.
const (
	SourceScreen = "screen"
	SourceWebcam = "webcam"
	SourceFile   = "file"
	SourceFrames = "frames"
)

const appDirName = "photo-finish"

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		LogLevel:           "info",
		LogFormat:          "",
		Direction:          "left-to-right",
		DurationMs:         15000,
		PixelsPerMs:        1,
		VideoBoxX:          320,
		VideoBoxY:          0,
		VideoBoxHeight:     480,
		VideoBoxWidthPerMs: 0.2,
		Interpolation:      "approx-bilinear",
		Source:             SourceWebcam,
		Device:             "/dev/video0",
		FrameWidth:         640,
		FrameHeight:        480,
		FrameRate:          30,
		ExportDir:          defaultExportDir(),
		ExportPrefix:       "photo-finish",
		ListenAddr:         ":8080",
	}
}

func defaultExportDir() string {
	if xdg.UserDirs.Pictures != "" {
		return filepath.Join(xdg.UserDirs.Pictures, appDirName)
	}
	return appDirName
}

// DefaultPath returns the config file location under the XDG config home.
// A config.toml there takes precedence over config.json.
func DefaultPath() string {
	if p := DefaultTOMLPath(); fileExists(p) {
		return p
	}
	return filepath.Join(xdg.ConfigHome, appDirName, "config.json")
}

// DefaultTOMLPath is where `config init` writes its template.
func DefaultTOMLPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, "config.toml")
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	def := DefaultConfig()
	switch strings.ToLower(strings.TrimSpace(c.Direction)) {
	case "left-to-right", "ltr", "left to right":
		c.Direction = "left-to-right"
	case "right-to-left", "rtl", "right to left":
		c.Direction = "right-to-left"
	default:
		c.Direction = def.Direction
	}
	if c.DurationMs <= 0 {
		c.DurationMs = def.DurationMs
	}
	if c.PixelsPerMs <= 0 {
		c.PixelsPerMs = def.PixelsPerMs
	}
	if c.VideoBoxX < 0 {
		c.VideoBoxX = 0
	}
	if c.VideoBoxY < 0 {
		c.VideoBoxY = 0
	}
	if c.VideoBoxHeight <= 0 {
		c.VideoBoxHeight = def.VideoBoxHeight
	}
	if c.VideoBoxWidthPerMs <= 0 {
		c.VideoBoxWidthPerMs = def.VideoBoxWidthPerMs
	}
	switch c.Interpolation {
	case "nearest", "approx-bilinear", "bilinear", "catmull-rom":
	default:
		c.Interpolation = def.Interpolation
	}
	switch c.Source {
	case SourceScreen, SourceWebcam, SourceFile, SourceFrames:
	default:
		c.Source = def.Source
	}
	if c.FrameWidth <= 0 {
		c.FrameWidth = def.FrameWidth
	}
	if c.FrameHeight <= 0 {
		c.FrameHeight = def.FrameHeight
	}
	if c.FrameRate <= 0 {
		c.FrameRate = def.FrameRate
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	if strings.TrimSpace(c.ExportPrefix) == "" {
		c.ExportPrefix = def.ExportPrefix
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		c.ExportDir = def.ExportDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load attempts to read configuration from the given file path. If the file does not
// exist it returns DefaultConfig(). On decode error it returns defaults with the error.
// Files ending in .toml are decoded as TOML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if isTOML(path) {
		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
		}
	} else {
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, creating parent directories.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isTOML(path) {
		return c.Encode(f, "toml")
	}
	return c.Encode(f, "json")
}

// Encode writes the configuration as "toml" or "json".
func (c *Config) Encode(w io.Writer, format string) error {
	switch format {
	case "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(c)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	return fmt.Errorf("unknown config format %q", format)
}
