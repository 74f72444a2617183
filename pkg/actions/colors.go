package actions

import "strings"

// Color pairs a human color name with its hex value.
type Color struct {
	Name string
	Hex  string
}

// colorTable is the fixed palette the prompt advertises to the model. Values
// are the CSS keyword colors so rendering matches what users expect from the
// names.
var colorTable = []Color{
	{"black", "#000000"},
	{"white", "#ffffff"},
	{"gray", "#808080"},
	{"light-gray", "#d3d3d3"},
	{"red", "#ff0000"},
	{"green", "#008000"},
	{"blue", "#0000ff"},
	{"yellow", "#ffff00"},
	{"orange", "#ffa500"},
	{"purple", "#800080"},
	{"pink", "#ffc0cb"},
	{"brown", "#a52a2a"},
	{"cyan", "#00ffff"},
	{"magenta", "#ff00ff"},
}

// ColorTable returns the color-name-to-hex palette in a stable order.
func ColorTable() []Color {
	out := make([]Color, len(colorTable))
	copy(out, colorTable)
	return out
}

// ColorHex resolves a color name to its hex value. Lookup is case-insensitive
// and tolerates spaces or underscores in place of hyphens ("light gray").
func ColorHex(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "-")
	key = strings.ReplaceAll(key, "_", "-")
	for _, c := range colorTable {
		if c.Name == key {
			return c.Hex, true
		}
	}
	return "", false
}
