package export

import "github.com/lucasb-eyer/go-colorful"

// hslToRGB returns the 0-255 components of a card hue at the fixed
// saturation and lightness used for attributes.
func hslToRGB(hue int) (int, int, int) {
	r, g, b := colorful.Hsl(float64(hue), 0.70, 0.85).RGB255()
	return int(r), int(g), int(b)
}
