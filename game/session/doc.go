// Package session provides in-memory session management for the Tile Swap server.
//
// Manager is a thread-safe map of sessions keyed by lower-cased ID. Each
// session owns one GridEngine plus the board configuration it was built
// from. Generated IDs are four hex characters; explicit IDs are matched
// case-insensitively.
//
// Sessions live only as long as the process. Stale ones are dropped with
// CleanupExpiredSessions, which the server calls on a timer.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", boardConfig)
//	if err != nil {
//		return err
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
