package board

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// IDGenerator produces collision-resistant card identifiers.
type IDGenerator interface {
	NewID() string
}

// ColorGenerator produces a display attribute for new or recoloured cards.
type ColorGenerator interface {
	NewColor() string
}

// UUIDGenerator generates random (version 4) UUIDs, optionally prefixed.
type UUIDGenerator struct {
	Prefix string
}

// NewID returns a fresh identifier such as "c_0f8fad5b-d9cb-469f-a165-70867728950e".
func (g UUIDGenerator) NewID() string {
	return g.Prefix + uuid.New().String()
}

// HSLGenerator picks a random hue with fixed pastel saturation and lightness.
type HSLGenerator struct {
	rnd *rand.Rand
}

// NewHSLGenerator returns a generator drawing hues from rnd.
// A nil rnd uses the global random source.
func NewHSLGenerator(rnd *rand.Rand) *HSLGenerator {
	return &HSLGenerator{rnd: rnd}
}

// NewColor returns a CSS colour string, e.g. "hsl(212 70% 85%)".
func (g *HSLGenerator) NewColor() string {
	var hue int
	if g.rnd != nil {
		hue = g.rnd.IntN(360)
	} else {
		hue = rand.IntN(360)
	}
	return FormatHSL(hue)
}

// FormatHSL renders a hue in the attribute format used by HSLGenerator.
func FormatHSL(hue int) string {
	return fmt.Sprintf("hsl(%d 70%% 85%%)", hue)
}

// ParseHSL extracts the hue from an attribute produced by FormatHSL.
func ParseHSL(attr string) (int, bool) {
	var hue int
	if _, err := fmt.Sscanf(attr, "hsl(%d 70%% 85%%)", &hue); err != nil {
		return 0, false
	}
	if hue < 0 || hue >= 360 {
		return 0, false
	}
	return hue, true
}
