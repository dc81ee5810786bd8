package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
	"github.com/wricardo/mcp-training/tileswap/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Swap",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Swap - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Swap adjacent tiles so that neighbouring tiles share a color. Matched tiles
disappear, the column above drops down, new tiles fall in from the top and
points are added to the score.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- board_state: Get the current board
- click: Click one tile (select, deselect or swap with the selection)
- swap: Swap two adjacent tiles directly - requires intent explanation
- bulk_swap: Several swaps at once - requires intent explanation
- hint: Find a swap that scores
- describe_tile: Get the color of one tile
- reset_game: Rebuild the board from its configuration
- move_history: View past moves
- list_configs: List available board configurations
- game_instructions: Get the full rules

NOTE: The 'intent' parameter on swap/bulk_swap serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer", "description": "Column (0-based)"},
			"y": map[string]interface{}{"type": "integer", "description": "Row (0-based)"},
		},
		"required": []string{"x", "y"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the board configuration to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sort": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"created", "accessed", "score"},
					"description": "Sort key (default accessed)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board, score and selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click",
		Description: "Click a tile. The first click selects it, clicking it again deselects it, clicking an adjacent tile swaps the two, clicking anywhere else cancels the selection.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the board before clicking",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleClick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "swap",
		Description: "Swap two adjacent tiles and resolve any matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"from":       coordProperty("First tile"),
				"to":         coordProperty("Second tile, orthogonally adjacent to the first"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this swap (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleSwap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_swap",
		Description: fmt.Sprintf("Execute up to %d swaps in sequence. Stops at the first invalid swap.", engine.MaxBulkSwaps),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"swaps": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"from": coordProperty("First tile"),
							"to":   coordProperty("Second tile"),
						},
						"required": []string{"from", "to"},
					},
					"description": "Array of swaps",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of swaps (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before swapping",
				},
			},
			Required: []string{"session_id", "swaps"},
		},
	}, c.handleBulkSwap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Find the first adjacent swap that would score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the color of a single tile and whether it is selected",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Newest first (desc, default) or oldest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("api call failed")
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args := request.GetArguments(); args != nil {
		return args
	}
	return map[string]interface{}{}
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func coordArg(args map[string]interface{}, key string) (engine.Coord, bool) {
	raw, ok := args[key].(map[string]interface{})
	if !ok {
		return engine.Coord{}, false
	}
	x, okX := intArg(raw, "x")
	y, okY := intArg(raw, "y")
	return engine.Coord{X: x, Y: y}, okX && okY
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	path := "/api/sessions"
	if sortBy, _ := args["sort"].(string); sortBy != "" {
		path += "?sort=" + url.QueryEscape(sortBy)
	}

	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := 0
		if s.GameState != nil {
			score = s.GameState.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)

	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	body := map[string]interface{}{
		"x":     x,
		"y":     y,
		"reset": reset,
	}

	var result service.ClickResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/click"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClickResult(&result)), nil
}

func (c *Client) handleSwap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	from, okFrom := coordArg(args, "from")
	to, okTo := coordArg(args, "to")
	if !okFrom || !okTo {
		return mcp.NewToolResultError("from and to must be objects with integer x and y"), nil
	}

	body := service.SwapRequest{From: from, To: to}

	var result service.ClickResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/swap"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClickResult(&result)), nil
}

func (c *Client) handleBulkSwap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	swapsRaw, _ := args["swaps"].([]interface{})
	reset, _ := args["reset"].(bool)

	swaps := make([]service.SwapRequest, 0, len(swapsRaw))
	for i, raw := range swapsRaw {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("swap %d must be an object", i+1)), nil
		}
		from, okFrom := coordArg(entry, "from")
		to, okTo := coordArg(entry, "to")
		if !okFrom || !okTo {
			return mcp.NewToolResultError(fmt.Sprintf("swap %d needs from and to coordinates", i+1)), nil
		}
		swaps = append(swaps, service.SwapRequest{From: from, To: to})
	}

	body := map[string]interface{}{
		"swaps": swaps,
		"reset": reset,
	}

	var result service.BulkSwapResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-swap"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkSwapResult(sessionID, &result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !hint.Found || hint.Swap == nil {
		return mcp.NewToolResultText("No scoring swap available. Try reset_game for a new board."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Try swapping %s with %s",
		formatCoord(hint.Swap.From), formatCoord(hint.Swap.To))), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var tile service.TileInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/tiles/%d/%d", x, y)), nil, &tile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Tile at %s:\nColor: %d\nSelected: %v\nSame color on board: %d",
		formatCoord(engine.Coord{X: tile.X, Y: tile.Y}), tile.Color, tile.Selected, tile.SameColor)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultText(formatHistory(&history)), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		layout := "random"
		if cfg.FixedLayout {
			layout = "fixed layout"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, %s\n\n",
			cfg.ConfigID, cfg.Name, cfg.Description, cfg.Cols, cfg.Rows, layout)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Tile Swap - Complete Instructions

GAME OBJECTIVE:
Score as many points as possible by swapping adjacent tiles so that
neighbouring tiles share a color.

BOARD:
• The board is a grid of colored tiles, each color a digit %d-%d
• Coordinates are (x,y): x is the column, y is the row, both 0-based
• Row 0 is the top of the board
• A fresh board never contains two adjacent tiles of the same color

CLICKING:
• Click a tile to select it
• Click the selected tile again to deselect it
• Click a tile next to the selection (up, down, left or right) to swap them
• Click any other tile to cancel the selection

MATCHING AND SCORING:
• After a swap, every pair of neighbouring tiles with the same color matches
• Each matching pair scores %d points, counted from both sides
• All matched tiles disappear together
• The tiles above drop down and new tiles fall in from the top
• New tiles can create new matches, which resolve as cascade rounds
• A swap that matches nothing still happens and scores nothing

TOOLS:
• swap - swap two adjacent tiles directly, no selection needed
• bulk_swap - up to %d swaps, stops at the first invalid one
• hint - ask for a swap that scores
• board_state - print the board, one digit per tile

Good luck!`, engine.MinColor, engine.MaxColor, engine.PointsPerMatch, engine.MaxBulkSwaps)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatCoord(c engine.Coord) string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// boardRows prefers the server-rendered board and derives it from the grid otherwise
func boardRows(state *engine.GameState) []string {
	if len(state.Board) == len(state.Grid) && len(state.Board) > 0 {
		return state.Board
	}
	rows := make([]string, len(state.Grid))
	for y, row := range state.Grid {
		var sb strings.Builder
		for _, color := range row {
			fmt.Fprintf(&sb, "%d", color)
		}
		rows[y] = sb.String()
	}
	return rows
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	selected := "none"
	if state.Selected != nil {
		selected = formatCoord(*state.Selected)
	}
	fmt.Fprintf(&result, "Score: %d | Moves: %d | Selected: %s\n\n", state.Score, state.TotalMoves, selected)

	// Column header then one digit row per board row
	rows := boardRows(state)
	if len(rows) > 0 {
		result.WriteString("   ")
		for x := 0; x < len(rows[0]); x++ {
			fmt.Fprintf(&result, "%d", x%10)
		}
		result.WriteString("\n")
	}
	for y, row := range rows {
		fmt.Fprintf(&result, "%2d %s\n", y, row)
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatClickResult(result *service.ClickResult) string {
	var b strings.Builder

	if move := result.MoveResult; move != nil {
		switch move.Action {
		case engine.ActionSwap:
			if move.Swapped != nil {
				fmt.Fprintf(&b, "Swapped %s with %s", formatCoord(move.Swapped.From), formatCoord(move.Swapped.To))
			}
			if move.ScoreDelta > 0 {
				fmt.Fprintf(&b, ": +%d points, %d tiles removed, %d cascade round(s)\n",
					move.ScoreDelta, len(move.RemovedCells), len(move.Cascades))
			} else {
				b.WriteString(": no match\n")
			}
		case engine.ActionSelect:
			if move.Selected != nil {
				fmt.Fprintf(&b, "Selected %s\n", formatCoord(*move.Selected))
			}
		default:
			fmt.Fprintf(&b, "Selection cleared (%s)\n", move.Action)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkSwapResult(sessionID string, result *service.BulkSwapResult) string {
	var b strings.Builder

	configName := ""
	rows, cols := 0, 0
	if result.GameState != nil {
		configName = result.GameState.ConfigName
		rows, cols = result.GameState.Rows, result.GameState.Cols
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, cols, rows)

	fmt.Fprintf(&b, "Executed %d/%d swaps • Score %d → %d (%+d)\n",
		result.SwapsExecuted, result.RequestedSwaps, result.StartScore, result.EndScore, result.ScoreDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d swaps\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on swap %d: %s\n", result.StoppedOnSwap, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s↔%s +%d removed=%d cascades=%d\n",
				s.Idx, formatCoord(s.From), formatCoord(s.To), s.ScoreDelta, s.RemovedCount, s.Cascades)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistoryEntry(num int, move engine.MoveHistoryEntry) string {
	line := fmt.Sprintf("%d. %s %s", num, move.Action, formatCoord(move.Coord))
	if move.From != nil && move.To != nil {
		line += fmt.Sprintf(" %s↔%s", formatCoord(*move.From), formatCoord(*move.To))
	}
	if move.ScoreDelta > 0 {
		line += fmt.Sprintf(" +%d", move.ScoreDelta)
	}
	return line + fmt.Sprintf(" [Score: %d]\n", move.Score)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) • Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for i, move := range history.Moves {
		b.WriteString(formatHistoryEntry((history.Page-1)*history.PageSize+i+1, move))
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment • Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryEntry(i+1, move))
	}
	return b.String()
}
