package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		BoardConfig:    sess.Config,
	}
}

// getSession looks a session up and touches its access time. Callers hold s.mu
// exclusively since the access time is written here and read by sessionInfo.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s': %w. Available configs: %v", configName, err, configIDs)
				}
				return nil, fmt.Errorf("config '%s': %w. Use /api/configs to list available configurations", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"session": sess.ID,
		"config":  config.Name,
		"rows":    config.Rows,
		"cols":    config.Cols,
	}).Info("session created")

	return s.sessionInfo(sess, strings.TrimSuffix(configName, ".json")), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// Click feeds one tile click into the session's selection state machine
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, c engine.Coord, reset bool) (*ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(sess.Engine, c); err != nil {
		return nil, err
	}

	var events []GameEvent
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	move := sess.Engine.SelectOrSwap(c)
	events = append(events, moveEvents(move, c)...)
	logMove(sessionID, move)

	return newClickResult(sess.Engine, move, events), nil
}

// Swap exchanges two adjacent tiles directly, ignoring any pending selection
func (s *gameServiceImpl) Swap(ctx context.Context, sessionID string, from, to engine.Coord) (*ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkSwap(sess.Engine, from, to); err != nil {
		return nil, err
	}

	move := sess.Engine.Swap(from, to)
	logMove(sessionID, move)

	return newClickResult(sess.Engine, move, moveEvents(move, to)), nil
}

// BulkSwap executes direct swaps in order and stops at the first invalid one
func (s *gameServiceImpl) BulkSwap(ctx context.Context, sessionID string, swaps []SwapRequest, reset bool) (*BulkSwapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkSwapResult{
		RequestedSwaps: len(swaps),
		Success:        true,
		Events:         make([]GameEvent, 0),
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}
	result.StartScore = sess.Engine.GetScore()

	if len(swaps) > engine.MaxBulkSwaps {
		result.Truncated = true
		result.Limit = engine.MaxBulkSwaps
		swaps = swaps[:engine.MaxBulkSwaps]
	}

	for i, req := range swaps {
		if ctx.Err() != nil {
			result.Success = false
			result.StoppedReason = ctx.Err().Error()
			result.StoppedOnSwap = i + 1
			break
		}
		if err := checkSwap(sess.Engine, req.From, req.To); err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("swap %d rejected: %v", i+1, err)
			result.StoppedOnSwap = i + 1
			break
		}

		move := sess.Engine.Swap(req.From, req.To)
		logMove(sessionID, move)
		result.SwapsExecuted++
		result.Events = append(result.Events, moveEvents(move, req.To)...)
		result.Steps = append(result.Steps, SwapStep{
			Idx:          i + 1,
			From:         req.From,
			To:           req.To,
			ScoreDelta:   move.ScoreDelta,
			Cascades:     len(move.Cascades),
			RemovedCount: len(move.RemovedCells),
		})
	}

	result.GameState = sess.Engine.GetState()
	result.EndScore = result.GameState.Score
	result.ScoreDelta = result.EndScore - result.StartScore
	result.Message = result.GameState.Message
	return result, nil
}

// Reset regenerates the session's board and clears its score
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	logrus.WithField("session", sessionID).Info("game reset")
	return state, nil
}

// Hint returns a swap that would match immediately, if one exists
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	pair, found := sess.Engine.HintSwap()
	return &HintResult{Found: found, Swap: pair}, nil
}

// GetGameState returns the current state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetTile returns one tile of a session's board
func (s *gameServiceImpl) GetTile(ctx context.Context, sessionID string, c engine.Coord) (*TileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(sess.Engine, c); err != nil {
		return nil, err
	}

	color := sess.Engine.TileColor(c)
	selected := sess.Engine.Selected()
	return &TileInfo{
		X:         c.X,
		Y:         c.Y,
		Color:     color,
		Selected:  selected != nil && *selected == c,
		SameColor: engine.CountColor(sess.Engine.GetState().Grid, color),
	}, nil
}

// GetMoveHistory returns paginated click history for a session
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func checkBounds(e *engine.GridEngine, c engine.Coord) error {
	if !e.InBounds(c) {
		return fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, c.X, c.Y, e.Cols(), e.Rows())
	}
	return nil
}

func checkSwap(e *engine.GridEngine, from, to engine.Coord) error {
	if err := checkBounds(e, from); err != nil {
		return err
	}
	if err := checkBounds(e, to); err != nil {
		return err
	}
	if !engine.IsAdjacent(from, to) {
		return fmt.Errorf("%w: (%d,%d) and (%d,%d)", ErrNotAdjacent, from.X, from.Y, to.X, to.Y)
	}
	return nil
}

func newClickResult(e *engine.GridEngine, move *engine.MoveResult, events []GameEvent) *ClickResult {
	state := e.GetState()
	return &ClickResult{
		MoveResult: move,
		GameState:  state,
		Message:    state.Message,
		Events:     events,
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Board regenerated and score cleared",
		Timestamp: time.Now(),
	}
}

// moveEvents turns an engine change description into player-facing events
func moveEvents(move *engine.MoveResult, c engine.Coord) []GameEvent {
	now := time.Now()
	at := c

	switch move.Action {
	case engine.ActionSelect:
		return []GameEvent{{Type: EventSelect, Message: fmt.Sprintf("Selected (%d,%d)", c.X, c.Y), Timestamp: now, Coord: &at}}
	case engine.ActionDeselect:
		return []GameEvent{{Type: EventDeselect, Message: fmt.Sprintf("Deselected (%d,%d)", c.X, c.Y), Timestamp: now, Coord: &at}}
	case engine.ActionCancel:
		return []GameEvent{{Type: EventCancel, Message: fmt.Sprintf("(%d,%d) is not next to the selection", c.X, c.Y), Timestamp: now, Coord: &at}}
	}

	from, to := move.Swapped.From, move.Swapped.To
	events := []GameEvent{{
		Type:      EventSwap,
		Message:   fmt.Sprintf("Swapped (%d,%d) with (%d,%d)", from.X, from.Y, to.X, to.Y),
		Timestamp: now,
		Coord:     &at,
	}}
	for _, round := range move.Cascades {
		if round.Round == 1 {
			events = append(events, GameEvent{
				Type:      EventMatch,
				Message:   fmt.Sprintf("%d matches removed %d tiles: +%d", round.Matches, len(round.RemovedCells), round.Points),
				Timestamp: now,
				Points:    round.Points,
			})
			continue
		}
		events = append(events, GameEvent{
			Type:      EventCascade,
			Message:   fmt.Sprintf("Cascade round %d: +%d", round.Round, round.Points),
			Timestamp: now,
			Points:    round.Points,
		})
	}
	return events
}

func logMove(sessionID string, move *engine.MoveResult) {
	fields := logrus.Fields{
		"session": sessionID,
		"action":  move.Action,
		"delta":   move.ScoreDelta,
		"score":   move.Score,
	}
	if move.Swapped != nil {
		fields["from"] = fmt.Sprintf("%d,%d", move.Swapped.From.X, move.Swapped.From.Y)
		fields["to"] = fmt.Sprintf("%d,%d", move.Swapped.To.X, move.Swapped.To.Y)
		fields["cascades"] = len(move.Cascades)
	}
	logrus.WithFields(fields).Debug("move applied")
}
