package engine

const (
	// Palette bounds. Colors are always in [MinColor, MaxColor].
	MinColor    = 1
	MaxColor    = 9
	PaletteSize = MaxColor - MinColor + 1

	// PointsPerMatch is awarded for every pairwise comparison that fires.
	PointsPerMatch = 2

	// Validation constants
	MinGridSize         = 1
	MaxGridSize         = 50
	DefaultRows         = 9
	DefaultCols         = 9
	MaxBulkSwaps        = 50
	WebSocketBufferSize = 256
)

// Actions recorded for a click
const (
	ActionSelect   = "select"
	ActionDeselect = "deselect"
	ActionCancel   = "cancel"
	ActionSwap     = "swap"
)

// Coord is a grid coordinate. X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Tile is a single colored cell. Its position never changes, only its color.
type Tile struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Color int `json:"color"`
}

// Coord returns the tile position
func (t Tile) Coord() Coord {
	return Coord{X: t.X, Y: t.Y}
}

// BoardConfig represents a board configuration loaded from JSON
type BoardConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	Seed        uint64   `json:"seed,omitempty"`
	Layout      []string `json:"layout,omitempty"`
	Messages    Messages `json:"messages"`
}

// Messages are the player-facing texts of a board
type Messages struct {
	Welcome  string `json:"welcome"`
	Selected string `json:"selected"`
	Deselect string `json:"deselect"`
	Cancel   string `json:"cancel"`
	NoMatch  string `json:"no_match"`
	Match    string `json:"match"` // %d receives the points scored
}

// SwapPair names the two tiles exchanged by a swap
type SwapPair struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

// CascadeRound describes one pass of the resolution cycle
type CascadeRound struct {
	Round        int           `json:"round"`
	Matches      int           `json:"matches"`
	Points       int           `json:"points"`
	RemovedCells []Coord       `json:"removed_cells"`
	Columns      map[int][]int `json:"columns"`
}

// MoveResult is the change description returned for every click. It carries
// enough detail for a render layer to update without knowing the rules.
type MoveResult struct {
	Action           string         `json:"action"`
	SelectionChanged bool           `json:"selection_changed"`
	Selected         *Coord         `json:"selected,omitempty"`
	Swapped          *SwapPair      `json:"swapped,omitempty"`
	RemovedCells     []Coord        `json:"removed_cells"`
	RefilledColumns  map[int][]int  `json:"refilled_columns"`
	Cascades         []CascadeRound `json:"cascades,omitempty"`
	ScoreDelta       int            `json:"score_delta"`
	Score            int            `json:"score"`
}

// GameState represents the complete game state
type GameState struct {
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	Grid        [][]int            `json:"grid"` // row-major: Grid[y][x]
	Score       int                `json:"score"`
	Selected    *Coord             `json:"selected,omitempty"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset while
	// MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views
	Board  []string `json:"board,omitempty"`
	Stable bool     `json:"stable"`
}

// MoveHistoryEntry represents a single click in the game history
type MoveHistoryEntry struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	Coord         Coord  `json:"coord"`
	From          *Coord `json:"from,omitempty"`
	To            *Coord `json:"to,omitempty"`
	ScoreDelta    int    `json:"score_delta"`
	Score         int    `json:"score"`
	CascadeRounds int    `json:"cascade_rounds"`
	Timestamp     int64  `json:"timestamp"`
	MoveNumber    int    `json:"move_number"`
}
