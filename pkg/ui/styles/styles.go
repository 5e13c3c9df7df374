// Package styles defines the visual styling for execfmt's terminal output.
//
// Styles have semantic names and adaptive colors that follow light and dark
// terminal themes. The definitions live in the embedded styles.yaml.
package styles

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/execfmt/pkg/workspace"
)

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Width      int    `yaml:"width,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

var registry map[string]lipgloss.Style

func init() {
	if err := LoadStylesFromData(embeddedStyles); err != nil {
		registry = make(map[string]lipgloss.Style)
	}
}

// LoadStylesFromData replaces the registry with the styles in data.
func LoadStylesFromData(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse styles data: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(config.Colors))
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	loaded := make(map[string]lipgloss.Style, len(config.Styles))
	for name, def := range config.Styles {
		loaded[name] = buildStyle(def, colors)
	}
	registry = loaded
	return nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if color, ok := colors[def.Foreground]; ok {
		style = style.Foreground(color)
	}
	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	return style
}

// GetStyle safely retrieves a style from the registry
func GetStyle(name string) lipgloss.Style {
	if style, ok := registry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// MergeStyles combines multiple styles
func MergeStyles(names ...string) lipgloss.Style {
	result := lipgloss.NewStyle()
	for _, name := range names {
		result = result.Inherit(GetStyle(name))
	}
	return result
}

// ForStatus returns the style used to print a file outcome.
func ForStatus(status workspace.Status) lipgloss.Style {
	switch status {
	case workspace.StatusFormatted:
		return MergeStyles("Status", "Success")
	case workspace.StatusWouldChange:
		return MergeStyles("Status", "Warning")
	case workspace.StatusFailed:
		return MergeStyles("Status", "Error")
	default:
		return MergeStyles("Status", "Muted")
	}
}
