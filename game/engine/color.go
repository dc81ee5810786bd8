package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// IntNSource is the part of *rand.Rand the generator needs. Tests supply
// scripted sources through it.
type IntNSource interface {
	IntN(n int) int
}

// ColorGenerator draws tile colors from the palette
type ColorGenerator struct {
	src IntNSource
}

// NewColorGenerator creates a generator backed by a PCG source. A zero seed
// is replaced with one read from crypto/rand.
func NewColorGenerator(seed uint64) *ColorGenerator {
	if seed == 0 {
		var b [8]byte
		_, _ = crand.Read(b[:])
		seed = binary.LittleEndian.Uint64(b[:])
	}
	return &ColorGenerator{src: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewColorGeneratorFromSource wraps an arbitrary source
func NewColorGeneratorFromSource(src IntNSource) *ColorGenerator {
	return &ColorGenerator{src: src}
}

// Generate returns a uniformly random color that is not in exclusions.
// Excluding the whole palette is a caller bug and panics.
func (g *ColorGenerator) Generate(exclusions ...int) int {
	if countDistinctColors(exclusions) >= PaletteSize {
		panic(fmt.Sprintf("engine: cannot generate a color excluding %v", exclusions))
	}
	for {
		color := g.src.IntN(PaletteSize) + MinColor
		if !containsColor(exclusions, color) {
			return color
		}
	}
}

// ForPosition picks a color for (x, y) while the board is being filled row
// by row: it never equals the left or the top neighbor.
func (g *ColorGenerator) ForPosition(grid *Grid, x, y int) int {
	exclusions := make([]int, 0, 2)
	if y > 0 {
		exclusions = append(exclusions, grid.color(x, y-1))
	}
	if x > 0 {
		exclusions = append(exclusions, grid.color(x-1, y))
	}
	return g.Generate(exclusions...)
}

func containsColor(colors []int, color int) bool {
	for _, c := range colors {
		if c == color {
			return true
		}
	}
	return false
}

func countDistinctColors(colors []int) int {
	seen := make(map[int]bool, len(colors))
	for _, c := range colors {
		if c >= MinColor && c <= MaxColor {
			seen[c] = true
		}
	}
	return len(seen)
}
