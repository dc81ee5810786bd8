// Package api provides HTTP REST API handlers for the Tile Swap game.
//
// The api package implements:
//   - Session management endpoints
//   - Click, swap and bulk swap endpoints driving the grid engine
//   - Board configuration listing, lookup and upload
//   - WebSocket upgrade handling for render clients
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (sort=created|accessed|score, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Play:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/click - Click a tile ({"x": 1, "y": 2, "reset": false})
//   - POST /api/sessions/{id}/swap - Swap two adjacent tiles ({"from": {...}, "to": {...}})
//   - POST /api/sessions/{id}/bulk-swap - Run up to 50 swaps ({"swaps": [...], "reset": false})
//   - POST /api/sessions/{id}/reset - Rebuild the board from its configuration
//   - GET /api/sessions/{id}/history - Move history (page, limit, order)
//   - GET /api/sessions/{id}/hint - First swap that would score
//   - GET /api/sessions/{id}/tiles/{x}/{y} - One tile and how many share its color
//
// Configuration:
//   - GET /api/configs - List board configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs?id=name - Validate and save a configuration
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket push of moves, state updates and deletion
//
// Click and swap responses carry the change description of the move
// (removed cells, refilled columns, cascade rounds, score delta) next to
// the resulting game state, so a renderer can animate without diffing grids.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the service
// error: unknown sessions and configurations map to 404, out-of-bounds or
// non-adjacent coordinates and invalid configurations map to 400. Creating a
// session on an unknown configuration is a bad request (400).
//
//	{
//	  "error": "session not found: ab12"
//	}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
