package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/tileswap/game/engine"
)

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the board
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrNotAdjacent is returned when a direct swap names two tiles that are not neighbors
	ErrNotAdjacent = errors.New("tiles are not adjacent")
	// ErrSessionNotFound wraps every lookup of an unknown session
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned by a ConfigManager for an unknown board name
	ErrConfigNotFound = errors.New("configuration not found")
)

// Event types emitted by play operations
const (
	EventSelect   = "select"
	EventDeselect = "deselect"
	EventCancel   = "cancel"
	EventSwap     = "swap"
	EventMatch    = "match"
	EventCascade  = "cascade"
	EventReset    = "reset"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// ClickResult is the outcome of one click or direct swap. It embeds the
// engine change description so render clients can replay it.
type ClickResult struct {
	*engine.MoveResult
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// SwapRequest names one direct swap in a bulk call
type SwapRequest struct {
	From engine.Coord `json:"from"`
	To   engine.Coord `json:"to"`
}

// BulkSwapResult contains the result of several direct swaps
type BulkSwapResult struct {
	RequestedSwaps int               `json:"requested_swaps"`
	SwapsExecuted  int               `json:"swaps_executed"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	Steps          []SwapStep        `json:"steps,omitempty"`
	StartScore     int               `json:"start_score"`
	EndScore       int               `json:"end_score"`
	ScoreDelta     int               `json:"score_delta"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StoppedOnSwap  int               `json:"stopped_on_swap,omitempty"` // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// SwapStep is a compact record of one executed swap in a bulk call
type SwapStep struct {
	Idx          int          `json:"idx"`
	From         engine.Coord `json:"from"`
	To           engine.Coord `json:"to"`
	ScoreDelta   int          `json:"score_delta"`
	Cascades     int          `json:"cascades"`
	RemovedCount int          `json:"removed_count"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // select, deselect, cancel, swap, match, cascade, reset
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Coord     *engine.Coord `json:"coord,omitempty"`
	Points    int           `json:"points,omitempty"`
}

// TileInfo describes a single tile
type TileInfo struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Color    int  `json:"color"`
	Selected bool `json:"selected"`

	// SameColor counts the tiles on the board with this color, itself included
	SameColor int `json:"same_color"`
}

// HintResult names a swap that produces a match right away
type HintResult struct {
	Found bool             `json:"found"`
	Swap  *engine.SwapPair `json:"swap,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	FixedLayout bool   `json:"fixed_layout"`
}
