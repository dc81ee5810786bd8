// Package mcp provides a Model Context Protocol server for the Tile Swap game.
//
// The server is a thin client: every tool call is translated into a request
// against the REST API and the JSON answer is rendered as compact text for
// the agent. It can therefore run next to the HTTP server (mounted at /mcp)
// or as a separate stdio process pointed at a remote API.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - board_state: score, selection and the board as digit rows
//   - click: select, deselect or swap through the selection
//   - swap, bulk_swap: direct adjacent swaps (bulk stops at the first invalid one)
//   - hint: a swap that would score, if any
//   - describe_tile: color of a single tile
//   - reset_game, move_history, list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
