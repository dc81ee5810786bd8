// Package websocket pushes board changes to render clients.
//
// A central Hub owns every connection, grouped by session ID. The REST layer
// calls BroadcastMove after each click or swap, BroadcastToSession after
// resets and bulk swaps, and BroadcastEvent with session_deleted when a
// session goes away; the hub fans the message out to every client of
// that session. Clients are display-only: anything they send is read and
// discarded so ping/pong keeps the connection alive.
//
// Outgoing frames are JSON Message values:
//
//	{"session_id": "ab12", "event": "move", "game_state": {...}, "move": {...}}
//
// where move is the engine change description (swapped pair, removed cells,
// refilled columns, cascade rounds, score delta). The api package attaches
// clients at GET /ws?session=<id>.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastMove(sessionID, state, move)
//
// Run returns and closes every client when ctx is cancelled.
package websocket
