package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ValidateBoardConfig validates a board configuration for correctness
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate dimensions
	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Cols)
	}

	if err := validateLayout(config); err != nil {
		return err
	}

	if config.Messages.Match != "" && !strings.Contains(config.Messages.Match, "%d") {
		return fmt.Errorf("config validation: messages.match must contain %%d for points")
	}

	return nil
}

// validateLayout checks an optional fixed starting board: digits only and no
// adjacent same-color pair, the same guarantee a generated board gives.
func validateLayout(config *BoardConfig) error {
	if len(config.Layout) == 0 {
		return nil
	}
	if len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows to match rows, got %d",
			config.Rows, len(config.Layout))
	}

	for y, row := range config.Layout {
		if len(row) != config.Cols {
			return fmt.Errorf("config validation: row %d must have %d characters to match cols, got %d",
				y+1, config.Cols, len(row))
		}
		for x := 0; x < len(row); x++ {
			char := row[x]
			if char < '0'+MinColor || char > '0'+MaxColor {
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, y+1, x+1)
			}
			if x > 0 && row[x-1] == char {
				return fmt.Errorf("config validation: row %d, cols %d-%d share color %c", y+1, x, x+1, char)
			}
			if y > 0 && config.Layout[y-1][x] == char {
				return fmt.Errorf("config validation: col %d, rows %d-%d share color %c", x+1, y, y+1, char)
			}
		}
	}
	return nil
}

// LoadBoardConfig loads a board configuration from a JSON file
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateBoardConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultBoardConfig returns the classic 9x9 board with a random seed
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "classic",
		Description: "Classic 9x9 board with nine colors",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		Messages: Messages{
			Welcome:  "Swap two neighboring tiles to line up colors!",
			Selected: "Tile selected. Pick a neighbor to swap with.",
			Deselect: "Selection cleared.",
			Cancel:   "Not a neighbor. Selection cancelled.",
			NoMatch:  "No match this time.",
			Match:    "Matched! +%d points",
		},
	}
}
