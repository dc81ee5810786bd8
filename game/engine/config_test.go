package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "Test Board",
		Description: "Board for engine tests",
		Rows:        3,
		Cols:        4,
		Layout: []string{
			"1234",
			"2341",
			"3412",
		},
		Messages: Messages{
			Welcome:  "Welcome!",
			Selected: "Selected",
			Deselect: "Deselected",
			Cancel:   "Cancelled",
			NoMatch:  "No match",
			Match:    "Matched +%d",
		},
	}
}

func TestValidateBoardConfig_Valid(t *testing.T) {
	if err := ValidateBoardConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
	if err := ValidateBoardConfig(DefaultBoardConfig()); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
}

func TestValidateBoardConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		modifier func(*BoardConfig)
		wantErr  string
	}{
		{"missing name", func(c *BoardConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *BoardConfig) { c.Description = "" }, "description is required"},
		{"rows too small", func(c *BoardConfig) { c.Rows = 0; c.Layout = nil }, "rows must be between"},
		{"cols too large", func(c *BoardConfig) { c.Cols = MaxGridSize + 1; c.Layout = nil }, "cols must be between"},
		{"layout row count", func(c *BoardConfig) { c.Layout = c.Layout[:2] }, "layout must have 3 rows"},
		{"layout row width", func(c *BoardConfig) { c.Layout[1] = "234" }, "row 2 must have 4 characters"},
		{"invalid character", func(c *BoardConfig) { c.Layout[0] = "12x4" }, "invalid character 'x'"},
		{"zero is not a color", func(c *BoardConfig) { c.Layout[0] = "1204" }, "invalid character '0'"},
		{"horizontal pair", func(c *BoardConfig) { c.Layout[0] = "1224" }, "share color 2"},
		{"vertical pair", func(c *BoardConfig) { c.Layout[1] = "1341" }, "share color 1"},
		{"match format", func(c *BoardConfig) { c.Messages.Match = "Matched!" }, "messages.match must contain %d"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.modifier(config)
			err := ValidateBoardConfig(config)
			if err == nil {
				t.Fatalf("Expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", test.wantErr, err)
			}
		})
	}
}

func TestValidateBoardConfig_Nil(t *testing.T) {
	if err := ValidateBoardConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestLoadBoardConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")

	data, err := json.Marshal(createValidConfig())
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadBoardConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Rows != 3 || config.Cols != 4 {
		t.Errorf("Expected 3x4 board, got %dx%d", config.Rows, config.Cols)
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadBoardConfig(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		os.WriteFile(bad, []byte("{not json"), 0644)
		if _, err := LoadBoardConfig(bad); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalid := createValidConfig()
		invalid.Rows = 0
		data, _ := json.Marshal(invalid)
		bad := filepath.Join(dir, "invalid.json")
		os.WriteFile(bad, data, 0644)
		if _, err := LoadBoardConfig(bad); err == nil {
			t.Error("Expected validation error")
		}
	})
}
