package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/photo-finish-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the editable photo finish settings form. ApplyChanges writes
// edits into the shared *config.Config and saves it; the recorder geometry
// follows on the next launch.
type ConfigPanel interface {
	Build(startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges()
}

// settingField binds one form row to a config value.
type settingField struct {
	label string
	show  func(*config.Config) string
	parse func(*config.Config, string) error
}

func intSetting(label string, p func(*config.Config) *int) settingField {
	return settingField{
		label: label,
		show:  func(c *config.Config) string { return strconv.Itoa(*p(c)) },
		parse: func(c *config.Config, s string) error {
			n, ok := parseIntField(s)
			if !ok {
				return fmt.Errorf("%s: %q is not a whole number", label, s)
			}
			*p(c) = n
			return nil
		},
	}
}

func floatSetting(label string, p func(*config.Config) *float64) settingField {
	return settingField{
		label: label,
		show:  func(c *config.Config) string { return strconv.FormatFloat(*p(c), 'f', -1, 64) },
		parse: func(c *config.Config, s string) error {
			f, ok := parseFloatField(s)
			if !ok {
				return fmt.Errorf("%s: %q is not a number", label, s)
			}
			*p(c) = f
			return nil
		},
	}
}

// textSetting keeps the current value when the field is left blank.
func textSetting(label string, p func(*config.Config) *string) settingField {
	return settingField{
		label: label,
		show:  func(c *config.Config) string { return *p(c) },
		parse: func(c *config.Config, s string) error {
			if s != "" {
				*p(c) = s
			}
			return nil
		},
	}
}

var settingFields = []settingField{
	textSetting("Direction (ltr/rtl)", func(c *config.Config) *string { return &c.Direction }),
	intSetting("Duration (ms)", func(c *config.Config) *int { return &c.DurationMs }),
	floatSetting("Pixels per ms", func(c *config.Config) *float64 { return &c.PixelsPerMs }),
	intSetting("Video box X", func(c *config.Config) *int { return &c.VideoBoxX }),
	intSetting("Video box Y", func(c *config.Config) *int { return &c.VideoBoxY }),
	intSetting("Video box height", func(c *config.Config) *int { return &c.VideoBoxHeight }),
	floatSetting("Video box width per ms", func(c *config.Config) *float64 { return &c.VideoBoxWidthPerMs }),
	textSetting("Interpolation", func(c *config.Config) *string { return &c.Interpolation }),
	textSetting("Export dir", func(c *config.Config) *string { return &c.ExportDir }),
	textSetting("Export prefix", func(c *config.Config) *string { return &c.ExportPrefix }),
}

type configPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	inputs  []*TextWidget
	apply   *ButtonWidget
	status  *LabelWidget
}

// NewConfigPanel creates the form bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	if logger == nil {
		logger = slog.Default()
	}
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

func (v *configPanel) Build(startRow int) int {
	row := startRow
	v.inputs = v.inputs[:0]
	for _, f := range settingFields {
		Grid(Label(Txt(f.label), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		in := Text(Height(1), Width(16))
		Grid(in, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		if v.cfg != nil {
			in.Insert("1.0", f.show(v.cfg))
		}
		v.inputs = append(v.inputs, in)
		row++
	}
	v.apply = Button(Txt("Apply Changes"), Command(v.ApplyChanges))
	Grid(v.apply, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	v.status = Label(Txt(""), Anchor("w"))
	Grid(v.status, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
	return row + 1
}

func (v *configPanel) SetEditable(enabled bool) {
	st := "disabled"
	if enabled {
		st = "normal"
	}
	for _, in := range v.inputs {
		in.Configure(State(st))
	}
	if v.apply != nil {
		v.apply.Configure(State(st))
	}
}

// ApplyChanges parses every row into a copy of the config. The copy replaces
// the live config only when all rows parse and the result validates.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil || len(v.inputs) != len(settingFields) {
		return
	}
	next := *v.cfg
	for i, f := range settingFields {
		raw := strings.TrimSpace(strings.Join(v.inputs[i].Get("1.0", END), ""))
		if err := f.parse(&next, raw); err != nil {
			v.report(err)
			return
		}
	}
	if err := next.Validate(); err != nil {
		v.report(err)
		return
	}
	*v.cfg = next
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.report(err)
		return
	}
	v.logger.Info("config saved", "path", v.cfgPath)
	v.setStatus("Saved")
}

func (v *configPanel) report(err error) {
	v.logger.Warn("settings not applied", "error", err)
	v.setStatus(err.Error())
}

func (v *configPanel) setStatus(s string) {
	if v.status != nil {
		v.status.Configure(Txt(s))
	}
}

func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	return i, err == nil
}
