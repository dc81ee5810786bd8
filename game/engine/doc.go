// Package engine provides the core game logic for the Tile Swap puzzle.
//
// The engine package implements:
//   - Board generation with no two neighboring tiles of the same color
//   - The click-driven selection state machine (select, deselect, cancel, swap)
//   - The resolution cycle: pairwise match detection, removal, column refill
//     and cascades until the board is stable
//   - Score accumulation and move history
//   - Board configuration loading and validation
//
// Core Types:
//
// GridEngine implements the Engine interface and owns one Grid of Tiles.
// ColorGenerator draws colors by rejection sampling from a pluggable random
// source. Every click returns a MoveResult describing what changed so that a
// render layer can follow along without knowing the rules.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultBoardConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.SelectOrSwap(engine.Coord{X: 3, Y: 4})
//	result := eng.SelectOrSwap(engine.Coord{X: 4, Y: 4})
//	fmt.Println(result.ScoreDelta, eng.GetScore())
//
// Rules:
//
// After every swap the board is scanned; each tile equal to its left or top
// neighbor is removed and each such comparison scores PointsPerMatch. Removed
// tiles close up within their column and fresh random colors enter from the
// top, which can start another round. Coordinates off the board are
// programming errors and panic.
//
// A GridEngine is not safe for concurrent use.
package engine
