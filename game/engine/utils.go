package engine

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coord) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// IsAdjacent reports whether a and b share an edge
func IsAdjacent(a, b Coord) bool {
	return ManhattanDistance(a, b) == 1
}

// Neighbors returns the on-board 4-neighbors of c
func Neighbors(c Coord, rows, cols int) []Coord {
	candidates := []Coord{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	}
	out := make([]Coord, 0, 4)
	for _, n := range candidates {
		if n.X >= 0 && n.X < cols && n.Y >= 0 && n.Y < rows {
			out = append(out, n)
		}
	}
	return out
}

// CountColor counts the tiles of one color in a row-major grid
func CountColor(grid [][]int, color int) int {
	count := 0
	for _, row := range grid {
		for _, c := range row {
			if c == color {
				count++
			}
		}
	}
	return count
}

// ColorHistogram counts tiles per color; index 0 is unused
func ColorHistogram(grid [][]int) [PaletteSize + 1]int {
	var hist [PaletteSize + 1]int
	for _, row := range grid {
		for _, c := range row {
			if c >= MinColor && c <= MaxColor {
				hist[c]++
			}
		}
	}
	return hist
}

// findMatchingSwap scans right and down swaps in row order and returns the
// first one that leaves an adjacent pair on the board.
func findMatchingSwap(g *Grid) (*SwapPair, bool) {
	work := g.clone()
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			from := Coord{X: x, Y: y}
			for _, to := range []Coord{{X: x + 1, Y: y}, {X: x, Y: y + 1}} {
				if !g.InBounds(to) || work.color(from.X, from.Y) == work.color(to.X, to.Y) {
					continue
				}
				work.swap(from, to)
				matched := work.hasAdjacentPair()
				work.swap(from, to)
				if matched {
					return &SwapPair{From: from, To: to}, true
				}
			}
		}
	}
	return nil, false
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
