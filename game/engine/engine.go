package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	GetScore() int
	IsStable() bool

	// Moves
	SelectOrSwap(c Coord) *MoveResult
	Swap(a, b Coord) *MoveResult
	Selected() *Coord
	HintSwap() (*SwapPair, bool)

	// Board
	Rows() int
	Cols() int
	InBounds(c Coord) bool
	TileColor(c Coord) int

	// Configuration
	GetConfig() *BoardConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GridEngine implements the Engine interface. It is a single-threaded state
// machine: callers must not use one engine from several goroutines at once.
type GridEngine struct {
	config   *BoardConfig
	gen      *ColorGenerator
	grid     *Grid
	selected *Coord
	score    int
	message  string

	history      []MoveHistoryEntry
	current      []MoveHistoryEntry
	totalMoves   int
	currentMoves int
}

// NewEngine creates a new grid engine with the provided configuration
func NewEngine(config *BoardConfig) (*GridEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	return NewEngineWithGenerator(config, NewColorGenerator(config.Seed))
}

// NewEngineWithGenerator creates an engine drawing colors from gen
func NewEngineWithGenerator(config *BoardConfig, gen *ColorGenerator) (*GridEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	e := &GridEngine{
		config:  config,
		gen:     gen,
		history: []MoveHistoryEntry{},
		current: []MoveHistoryEntry{},
	}
	e.initBoard()
	return e, nil
}

// NewEngineWithDefaults creates a 9x9 engine with a random seed
func NewEngineWithDefaults() *GridEngine {
	e, err := NewEngine(DefaultBoardConfig())
	if err != nil {
		panic(fmt.Sprintf("engine: default config invalid: %v", err))
	}
	return e
}

func (e *GridEngine) initBoard() {
	if len(e.config.Layout) > 0 {
		e.grid = gridFromLayout(e.config.Layout)
	} else {
		e.grid = generateGrid(e.config.Rows, e.config.Cols, e.gen)
	}
	e.selected = nil
	e.score = 0
	e.message = e.config.Messages.Welcome
}

// GetState returns a snapshot of the current game state
func (e *GridEngine) GetState() *GameState {
	return &GameState{
		Rows:              e.grid.rows,
		Cols:              e.grid.cols,
		Grid:              e.grid.Colors(),
		Score:             e.score,
		Selected:          e.Selected(),
		Message:           e.message,
		ConfigName:        e.config.Name,
		MoveHistory:       append([]MoveHistoryEntry{}, e.history...),
		TotalMoves:        e.totalMoves,
		CurrentMoves:      append([]MoveHistoryEntry{}, e.current...),
		CurrentMovesCount: e.currentMoves,
		Board:             e.grid.Board(),
		Stable:            !e.grid.hasAdjacentPair(),
	}
}

// Reset rebuilds the board from the configuration. The cumulative history
// survives; the current segment does not.
func (e *GridEngine) Reset() *GameState {
	e.initBoard()
	e.current = []MoveHistoryEntry{}
	e.currentMoves = 0
	return e.GetState()
}

// GetScore returns the current score
func (e *GridEngine) GetScore() int {
	return e.score
}

// IsStable reports whether no two adjacent tiles share a color
func (e *GridEngine) IsStable() bool {
	return !e.grid.hasAdjacentPair()
}

// Rows returns the board height
func (e *GridEngine) Rows() int {
	return e.grid.rows
}

// Cols returns the board width
func (e *GridEngine) Cols() int {
	return e.grid.cols
}

// InBounds reports whether c is on the board
func (e *GridEngine) InBounds(c Coord) bool {
	return e.grid.InBounds(c)
}

// TileColor returns the color at c. It panics when c is off the board.
func (e *GridEngine) TileColor(c Coord) int {
	return e.grid.Tile(c).Color
}

// Selected returns the pending selection, or nil when idle
func (e *GridEngine) Selected() *Coord {
	if e.selected == nil {
		return nil
	}
	c := *e.selected
	return &c
}

// GetConfig returns the board configuration
func (e *GridEngine) GetConfig() *BoardConfig {
	return e.config
}

// GetMoveHistory returns a copy of the complete move history
func (e *GridEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry{}, e.history...)
}

// GetLastMove returns a copy of the last move made, or nil if no moves
func (e *GridEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

// SelectOrSwap feeds one click into the selection state machine.
//
//	Idle + c                 -> Selected(c)
//	Selected(p) + p          -> Idle
//	Selected(p) + adjacent c -> swap p,c; resolve; Idle
//	Selected(p) + other c    -> Idle, nothing swapped
//
// Clicking off the board panics.
func (e *GridEngine) SelectOrSwap(c Coord) *MoveResult {
	e.grid.mustContain(c)

	var result *MoveResult
	switch {
	case e.selected == nil:
		e.selected = &c
		result = e.newResult(ActionSelect)
		result.Selected = e.Selected()
		e.message = e.config.Messages.Selected

	case *e.selected == c:
		e.selected = nil
		result = e.newResult(ActionDeselect)
		e.message = e.config.Messages.Deselect

	case IsAdjacent(*e.selected, c):
		prev := *e.selected
		e.selected = nil
		result = e.swapAndResolve(prev, c)

	default:
		e.selected = nil
		result = e.newResult(ActionCancel)
		e.message = e.config.Messages.Cancel
	}

	e.record(c, result)
	return result
}

// Swap exchanges two adjacent tiles and resolves the board, bypassing the
// selection state. Non-adjacent or off-board coordinates panic.
func (e *GridEngine) Swap(a, b Coord) *MoveResult {
	e.grid.mustContain(a)
	e.grid.mustContain(b)
	if !IsAdjacent(a, b) {
		panic(fmt.Sprintf("engine: swap of non-adjacent tiles (%d,%d) and (%d,%d)", a.X, a.Y, b.X, b.Y))
	}
	hadSelection := e.selected != nil
	e.selected = nil

	result := e.swapAndResolve(a, b)
	result.SelectionChanged = hadSelection
	e.record(b, result)
	return result
}

func (e *GridEngine) newResult(action string) *MoveResult {
	return &MoveResult{
		Action:           action,
		SelectionChanged: true,
		RemovedCells:     []Coord{},
		RefilledColumns:  map[int][]int{},
		Score:            e.score,
	}
}

func (e *GridEngine) swapAndResolve(a, b Coord) *MoveResult {
	result := e.newResult(ActionSwap)
	result.Swapped = &SwapPair{From: a, To: b}

	e.grid.swap(a, b)
	e.resolve(result)

	result.Score = e.score
	if result.ScoreDelta > 0 && e.config.Messages.Match != "" {
		e.message = fmt.Sprintf(e.config.Messages.Match, result.ScoreDelta)
	} else if result.ScoreDelta == 0 {
		e.message = e.config.Messages.NoMatch
	}
	return result
}

// resolve runs detect, remove and refill until no adjacent pair remains
func (e *GridEngine) resolve(result *MoveResult) {
	for round := 1; ; round++ {
		marks, removed, fired := e.grid.findMatches()
		if fired == 0 {
			return
		}

		points := fired * PointsPerMatch
		e.score += points
		result.ScoreDelta += points

		cascade := CascadeRound{
			Round:        round,
			Matches:      fired,
			Points:       points,
			RemovedCells: removed,
			Columns:      map[int][]int{},
		}
		for x := 0; x < e.grid.cols; x++ {
			if !anyMarked(marks[x]) {
				continue
			}
			column := e.grid.refillColumn(x, marks[x], e.gen)
			cascade.Columns[x] = column
			result.RefilledColumns[x] = column
		}

		result.RemovedCells = append(result.RemovedCells, removed...)
		result.Cascades = append(result.Cascades, cascade)
	}
}

func anyMarked(marks []bool) bool {
	for _, m := range marks {
		if m {
			return true
		}
	}
	return false
}

// record appends a click to the history
func (e *GridEngine) record(c Coord, result *MoveResult) {
	entry := MoveHistoryEntry{
		ID:            uuid.NewString(),
		Action:        result.Action,
		Coord:         c,
		ScoreDelta:    result.ScoreDelta,
		Score:         e.score,
		CascadeRounds: len(result.Cascades),
		Timestamp:     time.Now().Unix(),
		MoveNumber:    e.totalMoves + 1,
	}
	if result.Swapped != nil {
		from, to := result.Swapped.From, result.Swapped.To
		entry.From, entry.To = &from, &to
	}

	e.history = append(e.history, entry)
	e.totalMoves++
	e.current = append(e.current, entry)
	e.currentMoves++
}

// HintSwap returns an adjacent pair whose swap immediately creates a match.
// The board is not modified.
func (e *GridEngine) HintSwap() (*SwapPair, bool) {
	return findMatchingSwap(e.grid)
}
