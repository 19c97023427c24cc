package theme

// Centralized theming for the photo finish UI. The Start button uses the
// primary style, Stop and Clear use the danger style, and the source size
// label uses the accent style.

import (
	tk "modernc.org/tk9.0"
)

// Palette holds the resolved colors for one mode.
type Palette struct {
	AppBg     string
	Surface   string
	Primary   string
	Danger    string
	Accent    string
	StateText string
}

var (
	light = Palette{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		StateText: "white",
	}
	dark = Palette{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		StateText: "#f0fdf4",
	}
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
)

var darkMode bool

// Current returns the palette for the active mode.
func Current() Palette {
	if darkMode {
		return dark
	}
	return light
}

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(Current()) }

// SetDark switches mode and reapplies styles.
func SetDark(on bool) {
	darkMode = on
	applyStyles(Current())
}

// IsDark reports the current mode.
func IsDark() bool { return darkMode }

func applyStyles(p Palette) {
	name := "azure light"
	if darkMode {
		name = "azure dark"
	}
	_ = tk.ActivateTheme(name)
	tk.App.Configure(tk.Background(p.AppBg))

	tk.StyleConfigure(StylePrimaryButton, tk.Background(p.Primary), tk.Foreground("white"), tk.Padding("4p 3p"), tk.Borderwidth(1), tk.Relief("ridge"))
	tk.StyleConfigure(StyleDangerButton, tk.Background(p.Danger), tk.Foreground("white"), tk.Padding("4p 3p"), tk.Borderwidth(1), tk.Relief("ridge"))
	tk.StyleConfigure(StyleAccentLabel, tk.Foreground(p.Primary), tk.Background(p.Surface), tk.Padding("2p 1p"))
	tk.StyleConfigure(StyleStateLabel, tk.Foreground(p.StateText), tk.Background(p.Accent), tk.Padding("4p 2p"), tk.Borderwidth(1), tk.Relief("groove"))
}
