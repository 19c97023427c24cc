package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_MatchesPhotoFinishPreset(t *testing.T) {
	c := DefaultConfig()
	if c.Direction != "left-to-right" || c.DurationMs != 15000 || c.PixelsPerMs != 1 {
		t.Fatalf("unexpected geometry defaults: %+v", c)
	}
	if c.VideoBoxX != 320 || c.VideoBoxY != 0 || c.VideoBoxHeight != 480 || c.VideoBoxWidthPerMs != 0.2 {
		t.Fatalf("unexpected video box defaults: %+v", c)
	}
	if c.ExportPrefix != "photo-finish" {
		t.Fatalf("unexpected export prefix %q", c.ExportPrefix)
	}
}

func TestValidate_NormalizesInvalidValues(t *testing.T) {
	c := &Config{
		Direction:          "rtl",
		DurationMs:         -1,
		PixelsPerMs:        0,
		VideoBoxX:          -5,
		VideoBoxHeight:     0,
		VideoBoxWidthPerMs: -0.2,
		Interpolation:      "cubic-ish",
		Source:             "carrier-pigeon",
		SelectionW:         -3,
	}
	_ = c.Validate()
	if c.Direction != "right-to-left" {
		t.Fatalf("direction alias not normalized: %q", c.Direction)
	}
	if c.DurationMs != 15000 || c.PixelsPerMs != 1 || c.VideoBoxHeight != 480 || c.VideoBoxWidthPerMs != 0.2 {
		t.Fatalf("geometry not reset: %+v", c)
	}
	if c.VideoBoxX != 0 {
		t.Fatalf("expected negative box x clamped to 0, got %d", c.VideoBoxX)
	}
	if c.Interpolation != "approx-bilinear" || c.Source != SourceWebcam {
		t.Fatalf("enum fields not reset: interp=%q source=%q", c.Interpolation, c.Source)
	}
	if c.SelectionW != 0 || c.SelectionH != 0 {
		t.Fatalf("selection not cleared: %dx%d", c.SelectionW, c.SelectionH)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DurationMs != 15000 {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestSaveLoad_JSONAndTOML(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			c := DefaultConfig()
			c.Direction = "right-to-left"
			c.DurationMs = 5000
			c.PixelsPerMs = 0.5
			c.Source = SourceFrames
			c.SourcePath = "/tmp/frames"
			if err := c.Save(path); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Direction != "right-to-left" || got.DurationMs != 5000 || got.PixelsPerMs != 0.5 {
				t.Fatalf("geometry lost: %+v", got)
			}
			if got.Source != SourceFrames || got.SourcePath != "/tmp/frames" {
				t.Fatalf("source lost: %+v", got)
			}
		})
	}
}

func TestLoad_MalformedReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if c == nil || c.DurationMs != 15000 {
		t.Fatalf("expected defaults alongside error, got %+v", c)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("PHOTOFINISH_DIRECTION", "right to left")
	t.Setenv("PHOTOFINISH_DURATION_MS", "2000")
	t.Setenv("PHOTOFINISH_PIXELS_PER_MS", "2.5")
	t.Setenv("PHOTOFINISH_EXPORT_PREFIX", "race")
	t.Setenv("PHOTOFINISH_DEBUG", "true")
	t.Setenv("PHOTOFINISH_FRAME_RATE", "not-a-number")
	c := DefaultConfig()
	c.ApplyEnv()
	if c.Direction != "right-to-left" || c.DurationMs != 2000 || c.PixelsPerMs != 2.5 {
		t.Fatalf("env overrides not applied: %+v", c)
	}
	if c.ExportPrefix != "race" || !c.Debug {
		t.Fatalf("env overrides not applied: prefix=%q debug=%v", c.ExportPrefix, c.Debug)
	}
	if c.FrameRate != 30 {
		t.Fatalf("invalid int should keep fallback, got %d", c.FrameRate)
	}
}

func TestLoadDotEnv_SetsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PHOTOFINISH_TEST_DOTENV=hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PHOTOFINISH_TEST_DOTENV") })
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := GetEnv("PHOTOFINISH_TEST_DOTENV", ""); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestEncode_RejectsUnknownFormat(t *testing.T) {
	var buf strings.Builder
	if err := DefaultConfig().Encode(&buf, "yaml"); err == nil {
		t.Fatalf("expected error for yaml")
	}
	if err := DefaultConfig().Encode(&buf, "toml"); err != nil {
		t.Fatalf("toml: %v", err)
	}
	if !strings.Contains(buf.String(), "duration_ms = 15000") {
		t.Fatalf("unexpected toml output:\n%s", buf.String())
	}
}
