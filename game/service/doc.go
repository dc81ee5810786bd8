// Package service provides the business logic layer for the Tile Swap server.
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the grid engine. Each session owns its own GridEngine, so boards never
// share state.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and saves board configurations.
//
// The engine panics when asked to click off the board or to swap tiles that
// are not neighbors. The service checks transport input first and returns
// ErrOutOfBounds or ErrNotAdjacent instead, so a bad request never reaches
// the engine.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//
//	// Select a tile, then click a neighbor to swap them
//	gameService.Click(ctx, info.ID, engine.Coord{X: 3, Y: 4}, false)
//	result, err := gameService.Click(ctx, info.ID, engine.Coord{X: 4, Y: 4}, false)
package service
