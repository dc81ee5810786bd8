// Command autoplay plays Tile Swap against a running server through the REST
// API. Each turn it asks for a hint and plays it; when the board is stuck it
// swaps a random adjacent pair instead. Several attempts can be played, each
// starting from a reset board, and the best score is reported.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
	"github.com/wricardo/mcp-training/tileswap/game/service"
)

// Client talks to one session of the game server
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

// CreateSession starts a new session and remembers its ID
func (c *Client) CreateSession(ctx context.Context, configName string) (*engine.GameState, error) {
	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.do(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return nil, err
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// UseSession resumes an existing session
func (c *Client) UseSession(ctx context.Context, sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, "GET", c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Hint(ctx context.Context) (*service.HintResult, error) {
	var hint service.HintResult
	if err := c.do(ctx, "GET", c.sessionPath("/hint"), nil, &hint); err != nil {
		return nil, err
	}
	return &hint, nil
}

func (c *Client) Swap(ctx context.Context, from, to engine.Coord) (*service.ClickResult, error) {
	var result service.ClickResult
	if err := c.do(ctx, "POST", c.sessionPath("/swap"), service.SwapRequest{From: from, To: to}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, "POST", c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// Attempt summarizes one run from a fresh board
type Attempt struct {
	Swaps       int
	HintedSwaps int
	RandomSwaps int
	Score       int
	MaxCascades int
}

// Player drives a Client with the greedy hint strategy
type Player struct {
	client   *Client
	rng      *rand.Rand
	maxSwaps int
	delay    time.Duration
}

func NewPlayer(client *Client, maxSwaps int, seed uint64) *Player {
	return &Player{
		client:   client,
		rng:      rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		maxSwaps: maxSwaps,
	}
}

// Play runs one attempt on the current board
func (p *Player) Play(ctx context.Context, state *engine.GameState) (*Attempt, error) {
	attempt := &Attempt{Score: state.Score}
	startScore := state.Score

	for attempt.Swaps < p.maxSwaps {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		hint, err := p.client.Hint(ctx)
		if err != nil {
			return attempt, err
		}

		var pair engine.SwapPair
		if hint.Found && hint.Swap != nil {
			pair = *hint.Swap
			attempt.HintedSwaps++
		} else {
			if state.Rows*state.Cols < 2 {
				break
			}
			pair = p.randomPair(state.Rows, state.Cols)
			attempt.RandomSwaps++
		}

		result, err := p.client.Swap(ctx, pair.From, pair.To)
		if err != nil {
			return attempt, err
		}
		attempt.Swaps++
		attempt.Score = result.GameState.Score
		if n := len(result.Cascades); n > attempt.MaxCascades {
			attempt.MaxCascades = n
		}
		state = result.GameState

		logrus.WithFields(logrus.Fields{
			"swap":  attempt.Swaps,
			"from":  fmt.Sprintf("(%d,%d)", pair.From.X, pair.From.Y),
			"to":    fmt.Sprintf("(%d,%d)", pair.To.X, pair.To.Y),
			"delta": result.ScoreDelta,
			"score": attempt.Score,
		}).Debug("swap")

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}

	logrus.WithFields(logrus.Fields{
		"swaps":  attempt.Swaps,
		"hinted": attempt.HintedSwaps,
		"random": attempt.RandomSwaps,
		"gained": attempt.Score - startScore,
	}).Info("attempt finished")
	return attempt, nil
}

func (p *Player) randomPair(rows, cols int) engine.SwapPair {
	for {
		from := engine.Coord{X: p.rng.IntN(cols), Y: p.rng.IntN(rows)}
		neighbors := engine.Neighbors(from, rows, cols)
		if len(neighbors) > 0 {
			return engine.SwapPair{From: from, To: neighbors[p.rng.IntN(len(neighbors))]}
		}
	}
}

// run plays attempts runs and returns the best one
func run(ctx context.Context, client *Client, player *Player, configName, sessionID string, attempts int) (*Attempt, error) {
	var state *engine.GameState
	var err error
	if sessionID != "" {
		state, err = client.UseSession(ctx, sessionID)
	} else {
		state, err = client.CreateSession(ctx, configName)
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"session": client.sessionID,
		"config":  state.ConfigName,
		"rows":    state.Rows,
		"cols":    state.Cols,
	}).Info("playing")

	var best *Attempt
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if state, err = client.Reset(ctx); err != nil {
				return best, err
			}
		}

		attempt, err := player.Play(ctx, state)
		if err != nil {
			return best, err
		}
		if best == nil || attempt.Score > best.Score {
			best = attempt
		}
	}
	return best, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play Tile Swap through the REST API using hints",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Board configuration for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-swaps", Value: 100, Usage: "Maximum swaps per attempt"},
			&cli.IntFlag{Name: "attempts", Value: 1, Usage: "Attempts, each from a reset board"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed for random swaps on stuck boards"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between swaps"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if cmd.Bool("v") {
				logrus.SetLevel(logrus.DebugLevel)
			}

			client := NewClient(cmd.String("url"))
			player := NewPlayer(client, int(cmd.Int("max-swaps")), uint64(cmd.Int("seed")))
			player.delay = cmd.Duration("delay")

			best, err := run(ctx, client, player, cmd.String("config"), cmd.String("continue"), int(cmd.Int("attempts")))
			if err != nil {
				return err
			}

			fmt.Printf("Session %s: best score %d in %d swaps (%d hinted, %d random, longest cascade %d)\n",
				client.sessionID, best.Score, best.Swaps, best.HintedSwaps, best.RandomSwaps, best.MaxCascades)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("autoplay failed")
	}
}
