package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tileswap/api"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
	"github.com/wricardo/mcp-training/tileswap/game/session"
	"github.com/wricardo/mcp-training/tileswap/transport/mcp"
)

func writeBoardConfig(t *testing.T, dir, name string) {
	t.Helper()
	cfg := engine.DefaultBoardConfig()
	cfg.Name = name
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Tile Swap Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	writeBoardConfig(t, dir, "classic")

	gameService, sessions, err := initializeServices(options{configDir: dir})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if gameService == nil || sessions == nil {
		t.Fatal("Expected game service and session manager to be initialized")
	}

	info, err := gameService.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.ConfigName != "classic" {
		t.Errorf("Expected default config classic, got %s", info.ConfigName)
	}
	if sessions.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", sessions.Count())
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, _, err := initializeServices(options{configDir: "/non/existent/path"})
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

// captureOptions replaces every action with one that records the parsed options
func captureOptions(app *cli.Command, got *options, mode *string) {
	capture := func(name string) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			*got = optionsFrom(cmd)
			*mode = name
			return nil
		}
	}
	app.Action = capture("root")
	for _, sub := range app.Commands {
		sub.Action = capture(sub.Name)
	}
}

func TestAppFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		check    func(t *testing.T, opts options)
	}{
		{
			name:     "defaults",
			args:     []string{"tileswap"},
			wantMode: "root",
			check: func(t *testing.T, opts options) {
				if opts.port != 8080 || opts.host != "localhost" || opts.configDir != "configs" {
					t.Errorf("Unexpected defaults: %+v", opts)
				}
				if opts.sessionTTL != 24*time.Hour {
					t.Errorf("Expected 24h session ttl, got %v", opts.sessionTTL)
				}
			},
		},
		{
			name:     "server flags",
			args:     []string{"tileswap", "--port", "9090", "--config-dir", "boards", "--debug", "server"},
			wantMode: "server",
			check: func(t *testing.T, opts options) {
				if opts.port != 9090 || opts.configDir != "boards" || !opts.debug {
					t.Errorf("Unexpected options: %+v", opts)
				}
				if opts.addr() != "localhost:9090" {
					t.Errorf("Unexpected addr %s", opts.addr())
				}
			},
		},
		{
			name:     "stdio alias",
			args:     []string{"tileswap", "--session-ttl", "30m", "mcp"},
			wantMode: "stdio-mcp",
			check: func(t *testing.T, opts options) {
				if opts.sessionTTL != 30*time.Minute {
					t.Errorf("Expected 30m session ttl, got %v", opts.sessionTTL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got options
			var mode string
			app := newApp()
			captureOptions(app, &got, &mode)

			if err := app.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if mode != tt.wantMode {
				t.Errorf("Expected mode %s, got %s", tt.wantMode, mode)
			}
			tt.check(t, got)
		})
	}
}

func TestAppFlagsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/srv/boards")
	t.Setenv("NGROK_DOMAIN", "tiles.example.com")

	var got options
	var mode string
	app := newApp()
	captureOptions(app, &got, &mode)

	if err := app.Run(context.Background(), []string{"tileswap"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.configDir != "/srv/boards" || got.ngrokDomain != "tiles.example.com" {
		t.Errorf("Expected env values, got %+v", got)
	}
}

func TestMCPHandler(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://localhost:8080").GetMCPServer())

	t.Run("rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})

	t.Run("answers ping", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		handler(w, httptest.NewRequest("POST", "/mcp", body))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"jsonrpc":"2.0"`) {
			t.Errorf("Expected JSON-RPC response, got %s", w.Body.String())
		}
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestExternalAPIAvailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   bool
	}{
		{name: "healthy", status: http.StatusOK, want: true},
		{name: "client error still counts as a server", status: http.StatusNotFound, want: true},
		{name: "server error", status: http.StatusServiceUnavailable, want: false},
		{name: "unreachable", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &trackedBody{Reader: strings.NewReader("{}")}
			client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/health" {
					t.Errorf("Expected /health, got %s", r.URL.Path)
				}
				if tt.err != nil {
					return nil, tt.err
				}
				return &http.Response{StatusCode: tt.status, Body: body, Header: http.Header{}}, nil
			})}

			if got := externalAPIAvailable(client, "http://api.test"); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if tt.err == nil && !body.closed {
				t.Error("Expected response body to be closed")
			}
		})
	}
}

func TestNewRouter(t *testing.T) {
	dir := t.TempDir()
	writeBoardConfig(t, dir, "classic")

	gameService, _, err := initializeServices(options{configDir: dir})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	router := newRouter(api.NewServer(gameService, nil), mcp.NewClient("http://localhost:8080"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected /mcp to be mounted, got %d", w.Code)
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	manager := session.NewManager()

	// A non-positive ttl disables cleanup
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(context.Background(), manager, 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine with zero ttl should return immediately")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop on cancel")
	}
}
