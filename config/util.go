package config

import (
	"regexp"
)

var hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// ValidColor reports whether color is one of the predefined color names or
// a 3 or 6 digit hex color value
func ValidColor(color string) bool {
	switch color {
	case DefaultColor, ColorGood, ColorWarning, ColorDanger:
		return true
	}
	return hexColorRegex.MatchString(color)
}
