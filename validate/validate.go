// Command validate provides a small CLI that validates board configuration JSON
// files in a directory (../configs by default). It checks:
//   - JSON structure and required fields
//   - Board dimensions within the supported range
//   - Fixed layouts: row count and width, digits 1-9 only, no two adjacent tiles sharing a color
//   - Presence of the player-facing messages
//
// and reports, for every valid board, whether the opening position offers a scoring swap.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateBoardConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	for key, msg := range map[string]string{
		"welcome":  config.Messages.Welcome,
		"selected": config.Messages.Selected,
		"deselect": config.Messages.Deselect,
		"cancel":   config.Messages.Cancel,
		"no_match": config.Messages.NoMatch,
		"match":    config.Messages.Match,
	} {
		if msg == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Message %q is empty", key))
		}
	}
	sort.Strings(result.Warnings)

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.Cols, config.Rows))
	if len(config.Layout) > 0 {
		result.Errors = append(result.Errors, "✓ Layout: fixed")
	} else if config.Seed != 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Layout: generated (seed %d)", config.Seed))
	} else {
		result.Errors = append(result.Errors, "✓ Layout: generated (random seed)")
	}

	// Only deterministic boards have a meaningful opening position
	if len(config.Layout) > 0 || config.Seed != 0 {
		game, err := engine.NewEngine(&config)
		if err != nil {
			result.fail("Failed to build board: %v", err)
			return result
		}
		if pair, ok := game.HintSwap(); ok {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Opening swap: (%d,%d)↔(%d,%d)",
				pair.From.X, pair.From.Y, pair.To.X, pair.To.Y))
		} else {
			result.Warnings = append(result.Warnings, "No scoring swap on the opening board")
		}
	}

	return result
}

// validateDir validates every *.json file in dir and writes a concise report.
// It returns false if any file is invalid.
func validateDir(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}
	sort.Strings(files)

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			for _, warning := range result.Warnings {
				fmt.Fprintln(w, "  ⚠️  "+warning)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

// main validates the directory given as the first argument and exits with
// non-zero status if any configuration is invalid.
func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate board configuration files",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}

			ok, err := validateDir(os.Stdout, dir)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(1)
	}
}
