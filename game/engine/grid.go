package engine

import (
	"fmt"
	"strings"
)

// Grid is the rows x cols tile matrix, stored column-major as tiles[x][y].
// Every cell always holds a valid color.
type Grid struct {
	rows  int
	cols  int
	tiles [][]Tile
}

// newGrid allocates an unpopulated grid; callers fill every cell before use
func newGrid(rows, cols int) *Grid {
	tiles := make([][]Tile, cols)
	for x := range tiles {
		tiles[x] = make([]Tile, rows)
		for y := range tiles[x] {
			tiles[x][y] = Tile{X: x, Y: y}
		}
	}
	return &Grid{rows: rows, cols: cols, tiles: tiles}
}

// generateGrid fills a new grid row by row with no two adjacent tiles of the
// same color.
func generateGrid(rows, cols int, gen *ColorGenerator) *Grid {
	g := newGrid(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.tiles[x][y].Color = gen.ForPosition(g, x, y)
		}
	}
	return g
}

// gridFromLayout builds a grid from rows of digit strings. The layout is
// expected to be validated already.
func gridFromLayout(layout []string) *Grid {
	rows := len(layout)
	cols := len(layout[0])
	g := newGrid(rows, cols)
	for y, row := range layout {
		for x := 0; x < cols; x++ {
			g.tiles[x][y].Color = int(row[x] - '0')
		}
	}
	return g
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

// InBounds reports whether c addresses a cell of the grid
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

// Tile returns a copy of the tile at c
func (g *Grid) Tile(c Coord) Tile {
	g.mustContain(c)
	return g.tiles[c.X][c.Y]
}

func (g *Grid) color(x, y int) int {
	return g.tiles[x][y].Color
}

func (g *Grid) mustContain(c Coord) {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("engine: coordinate (%d,%d) outside %dx%d grid", c.X, c.Y, g.cols, g.rows))
	}
}

// swap exchanges the colors of two tiles; positions stay put
func (g *Grid) swap(a, b Coord) {
	ta, tb := &g.tiles[a.X][a.Y], &g.tiles[b.X][b.Y]
	ta.Color, tb.Color = tb.Color, ta.Color
}

// findMatches marks every tile equal to its left or top neighbor. It returns
// the marks, the marked coordinates in scan order and the number of
// comparisons that fired.
func (g *Grid) findMatches() ([][]bool, []Coord, int) {
	marks := make([][]bool, g.cols)
	for x := range marks {
		marks[x] = make([]bool, g.rows)
	}
	fired := 0
	for x := 0; x < g.cols; x++ {
		for y := 0; y < g.rows; y++ {
			c := g.color(x, y)
			if x > 0 && c == g.color(x-1, y) {
				marks[x][y], marks[x-1][y] = true, true
				fired++
			}
			if y > 0 && c == g.color(x, y-1) {
				marks[x][y], marks[x][y-1] = true, true
				fired++
			}
		}
	}

	var removed []Coord
	for x := 0; x < g.cols; x++ {
		for y := 0; y < g.rows; y++ {
			if marks[x][y] {
				removed = append(removed, Coord{X: x, Y: y})
			}
		}
	}
	return marks, removed, fired
}

// refillColumn drops the marked tiles of column x, shifts the survivors down
// and tops the column up with fresh colors. It returns the new column.
func (g *Grid) refillColumn(x int, marks []bool, gen *ColorGenerator) []int {
	kept := make([]int, 0, g.rows)
	for y := 0; y < g.rows; y++ {
		if !marks[y] {
			kept = append(kept, g.color(x, y))
		}
	}

	column := make([]int, 0, g.rows)
	for i := g.rows - len(kept); i > 0; i-- {
		column = append(column, gen.Generate())
	}
	column = append(column, kept...)

	for y, c := range column {
		g.tiles[x][y].Color = c
	}
	return column
}

// hasAdjacentPair reports whether any two neighboring tiles share a color
func (g *Grid) hasAdjacentPair() bool {
	_, removed, _ := g.findMatches()
	return len(removed) > 0
}

// Colors returns the grid as row-major color rows
func (g *Grid) Colors() [][]int {
	out := make([][]int, g.rows)
	for y := range out {
		out[y] = make([]int, g.cols)
		for x := 0; x < g.cols; x++ {
			out[y][x] = g.color(x, y)
		}
	}
	return out
}

// Board renders the grid as one digit string per row
func (g *Grid) Board() []string {
	out := make([]string, g.rows)
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		sb.Reset()
		for x := 0; x < g.cols; x++ {
			sb.WriteByte(byte('0' + g.color(x, y)))
		}
		out[y] = sb.String()
	}
	return out
}

// clone returns a deep copy used for look-ahead searches
func (g *Grid) clone() *Grid {
	c := newGrid(g.rows, g.cols)
	for x := range g.tiles {
		copy(c.tiles[x], g.tiles[x])
	}
	return c
}
