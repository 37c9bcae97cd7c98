// Command pentagame-server starts the Pentagame game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control the listen address, the persistence backend, the board
// layout, debug logging, and an optional ngrok tunnel; every flag can
// also be set through the environment (or a .env file).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/NikkyAI/pentagame-server/api"
	"github.com/NikkyAI/pentagame-server/game/board"
	"github.com/NikkyAI/pentagame-server/game/config"
	"github.com/NikkyAI/pentagame-server/game/store"
	"github.com/NikkyAI/pentagame-server/transport/mcp"
	"github.com/NikkyAI/pentagame-server/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pentagame Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    "pentagame-server",
		Usage:   "multiplayer Pentagame board game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "host:port the HTTP server listens on",
			},
			&cli.StringFlag{
				Name:  "redis-url",
				Usage: "Redis URL for persistence (empty runs the in-memory standalone mode)",
			},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "path to a board layout JSON file (empty uses the standard board)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "enable ngrok tunnel",
			},
			&cli.StringFlag{
				Name:  "ngrok-auth",
				Usage: "ngrok auth token (or use NGROK_AUTHTOKEN env var)",
			},
			&cli.StringFlag{
				Name:  "ngrok-domain",
				Usage: "custom ngrok domain (optional)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runHTTPServer(ctx, cfg, tunnelConfigFrom(cmd))
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return runHTTPServer(ctx, cfg, tunnelConfigFrom(cmd))
				},
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server, reusing a running HTTP server if one is up",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return runStdioMCP(ctx, cfg)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%s failed: %v", AppName, err)
	}
}

// loadConfig merges the environment configuration with command line
// overrides. Flags win over environment variables.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}
	if url := cmd.String("redis-url"); url != "" {
		cfg.RedisURL = url
	}
	if path := cmd.String("layout"); path != "" {
		cfg.LayoutPath = path
	}
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	return cfg, cfg.Validate()
}

// tunnelConfig controls the optional ngrok tunnel that serves the same
// router to the public internet.
type tunnelConfig struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

func tunnelConfigFrom(cmd *cli.Command) tunnelConfig {
	return loadTunnelConfig(cmd.Bool("ngrok"), cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
}

// loadTunnelConfig merges the tunnel flags with their environment
// fallbacks. Flags win; the auth token supports both NGROK_AUTHTOKEN
// and NGROK_AUTH_TOKEN naming conventions.
func loadTunnelConfig(enabled bool, authToken, domain string) tunnelConfig {
	if !enabled {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			enabled = true
		}
	}
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}
	return tunnelConfig{Enabled: enabled, AuthToken: authToken, Domain: domain}
}

// runtime bundles everything a listening server needs.
type runtime struct {
	coord *websocket.Coordinator
	api   *api.Server
}

// buildRuntime assembles the board, the store, and the coordinator.
// The returned stop function shuts the coordinator down.
func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, func(), error) {
	layout, err := config.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load board layout: %w", err)
	}
	topo, err := board.Build(layout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build board: %w", err)
	}
	log.Printf("Board %q built: %d vertices, %d directed edges",
		topo.LayoutName(), topo.VertexCount(), topo.EdgeCount())

	var st store.Store
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		st = redisStore
		log.Printf("Using Redis persistence at %s", cfg.RedisURL)
	} else {
		memStore := store.NewMemoryStore()
		seedStandalone(memStore)
		st = memStore
	}

	coord := websocket.NewCoordinator(topo, st, websocket.Options{
		MailboxDepth: cfg.StoreQueueDepth,
		StoreWorkers: cfg.StoreWorkers,
	})
	go coord.Run()

	ws := websocket.NewHandler(coord, cfg.HeartbeatInterval, cfg.ClientTimeout)
	apiServer := api.NewServer(coord, ws, topo)

	return &runtime{coord: coord, api: apiServer}, coord.Stop, nil
}

// seedStandalone creates a demo room so the in-memory server is usable
// without any provisioning. State does not survive a restart.
func seedStandalone(st *store.MemoryStore) {
	host := uuid.New()
	st.CreateRoom(1, store.RoomSummary{
		Name:        "lobby",
		Description: "standalone demo room",
		State:       store.RoomStateLobby,
		HostID:      host,
	})
	if err := st.JoinRoom(1, store.Player{ID: host, Name: "host"}); err != nil {
		log.Printf("Warning: failed to seed demo room: %v", err)
		return
	}
	log.Printf("Standalone mode: seeded room 1, host user %s", host)
	log.Printf("Connect with: ws://<addr>/ws?user=%s", host)
}

// newMainRouter mounts the API server and the /mcp HTTP endpoint.
func newMainRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket
// sessions, and an /mcp proxy endpoint, then blocks until a shutdown
// signal arrives. With tunneling enabled the same router is also served
// through an ngrok tunnel.
func runHTTPServer(ctx context.Context, cfg *config.Config, tunnel tunnelConfig) error {
	rt, stop, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", cfg.Addr))
	mainRouter := newMainRouter(rt.api, mcpClient)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle shutdown signals
	notifyCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.Addr)
		log.Printf("REST API: http://%s/api", cfg.Addr)
		log.Printf("WebSocket: ws://%s/ws?user=<uuid>", cfg.Addr)
		log.Printf("MCP endpoint: http://%s/mcp", cfg.Addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var wg sync.WaitGroup
	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveTunnel(notifyCtx, tunnel, mainRouter)
		}()
	}

	select {
	case err := <-errCh:
		cancel()
		wg.Wait()
		return err
	case <-notifyCtx.Done():
		log.Println("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	wg.Wait()

	log.Println("Server stopped")
	return nil
}

// serveTunnel serves handler through an ngrok tunnel until ctx is
// cancelled. Tunnel failures are logged, not fatal; the local listener
// keeps running either way.
func serveTunnel(ctx context.Context, tc tunnelConfig, handler http.Handler) {
	if tc.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if tc.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(tc.Domain))
		log.Printf("Using custom ngrok domain: %s", tc.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(tc.AuthToken),
	)
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?user=<uuid>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at the
// configured address if one answers; otherwise it starts a minimal
// internal HTTP API on a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cfg *config.Config) error {
	externalURL := fmt.Sprintf("http://%s", cfg.Addr)
	log.Printf("Checking for external API server at %s...", externalURL)

	var baseURL string
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		rt, stop, err := buildRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer stop()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{Handler: rt.api}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Println("MCP stdio server ready")
	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
