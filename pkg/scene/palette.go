package scene

import (
	"fmt"
	"maps"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FallbackColor is used for categories missing from a palette.
const FallbackColor = "#808080"

// HighlightColor fills hovered nodes and their neighbours.
const HighlightColor = "#ffffff"

// Palette maps node categories to hex fill colours.
type Palette map[string]string

// DefaultPalette returns the built-in category colours.
func DefaultPalette() Palette {
	return Palette{
		"C++":                          "#7fffd4", // aquamarine
		"Docker":                       "#1e90ff", // dodgerblue
		"CSS":                          "#00ffff", // aqua
		"Java":                         "#ff0000",
		"SpringBoot":                   "#bc2200",
		"HTML":                         "#ff7f50", // coral
		"MongoDB":                      "#7fff00", // chartreuse
		"AWS":                          "#696969", // dimgrey
		"Web Development":              "#808080",
		"Javascript":                   "#006400", // darkgreen
		"TypeScript":                   "#4884c8",
		"GIT":                          "#808000", // olive
		"SQL":                          "#8b008b", // darkmagenta
		"Shell":                        "#000000",
		"Python":                       "#0000ff",
		"Machine Learning":             "#ffff00",
		"Visual Basic for Application": "#008000",
		"Apache Kafka":                 "#c8c8c8",
	}
}

// Color returns the hex colour for category, or FallbackColor.
func (p Palette) Color(category string) string {
	if c, ok := p[category]; ok {
		return c
	}
	return FallbackColor
}

// Merge returns a copy of p with overrides applied. Every override must be a
// valid hex colour; values are normalised to lower-case #rrggbb.
func (p Palette) Merge(overrides map[string]string) (Palette, error) {
	out := maps.Clone(p)
	if out == nil {
		out = Palette{}
	}
	for category, hex := range overrides {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", category, err)
		}
		out[category] = c.Hex()
	}
	return out, nil
}
