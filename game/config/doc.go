// Package config manages the board configurations of the Tile Swap server.
//
// Board configurations are JSON files in a config directory. Each one
// defines the board size, an optional seed, an optional fixed starting
// layout (rows of digits 1-9 with no adjacent same-color pair), and the
// messages shown to the player.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		logrus.Fatal(err)
//	}
//
//	board, err := manager.LoadConfig("small")
//	infos, err := manager.ListConfigs()
//
// The default board is classic.json when present, otherwise the first valid
// file in the directory, otherwise a built-in 9x9 board.
package config
