// Command bombergrid starts the Bomber Grid Game.
//
// It supports four commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a level in the terminal
//  4. "levels" – lists the levels of the config directory with key reachability
//
// Flags control host/port, config directory, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/bomber-grid-game/api"
	"github.com/wricardo/bomber-grid-game/game/config"
	"github.com/wricardo/bomber-grid-game/game/engine"
	"github.com/wricardo/bomber-grid-game/game/service"
	"github.com/wricardo/bomber-grid-game/game/session"
	"github.com/wricardo/bomber-grid-game/transport/mcp"
	"github.com/wricardo/bomber-grid-game/transport/terminal"
	"github.com/wricardo/bomber-grid-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Bomber Grid Game Server"
)

const (
	sessionMaxAge          = 24 * time.Hour
	sessionCleanupInterval = time.Hour
)

// newApp builds the command tree. Flags on the root command are inherited
// by every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "bombergrid",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing level configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "Enable ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "Ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "Custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play a level in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "level",
						Aliases: []string{"l"},
						Usage:   "Level to play (config ID or file name)",
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write logs to this file while the screen is in use",
					},
				},
				Action: runPlay,
			},
			{
				Name:   "levels",
				Usage:  "List the available levels and whether their key can be reached",
				Action: runLevels,
			},
		},
	}
}

// main loads .env, then runs the selected command
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

// setupLogging switches logrus to debug level when --debug is set
func setupLogging(cmd *cli.Command) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cmd.Bool("debug") {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// initializeServices wires session/config managers and the game service.
// It also starts a background cleanup routine to prune stale sessions.
func initializeServices(ctx context.Context, configDir string) (service.GameService, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager)

	go sessionManager.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge)

	return gameService, nil
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	log.WithField("version", Version).Infof("Starting %s", AppName)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gameService, err := initializeServices(ctx, cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// The MCP endpoint talks to the REST API of this same server
	apiServer := api.NewServer(gameService, hub)
	apiServer.Handle("/mcp", mcp.NewClient(fmt.Sprintf("http://%s", addr)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), apiServer)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Debug("Ngrok server stopped")
	}
	log.Info("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API at host:port; if unavailable, it starts a
// minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := externalURL

	log.WithField("url", externalURL).Info("Checking for external API server")
	if !apiReachable(externalURL) {
		log.Info("No external API server found, starting internal HTTP server")

		internalURL, err := startInternalAPI(ctx, cmd.String("config-dir"))
		if err != nil {
			return err
		}
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.WithField("api", baseURL).Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether a game API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the REST API on a random loopback port until ctx
// is done and returns its base URL
func startInternalAPI(ctx context.Context, configDir string) (string, error) {
	gameService, err := initializeServices(ctx, configDir)
	if err != nil {
		return "", fmt.Errorf("failed to initialize services: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	addr := listener.Addr().String()
	log.WithField("addr", addr).Info("Internal HTTP server started for MCP stdio")
	return fmt.Sprintf("http://%s", addr), nil
}

// runPlay opens the terminal front end on the chosen level
func runPlay(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	// The screen owns the terminal; logs go to a file or nowhere
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	level, err := loadLevel(cmd.String("config-dir"), cmd.String("level"))
	if err != nil {
		return err
	}
	return terminal.Play(ctx, level)
}

// loadLevel picks a level from configDir, or the built-in classic level when
// the directory does not exist and no level was named
func loadLevel(configDir, name string) (*engine.GameConfig, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		if name == "" {
			return engine.DefaultConfig(), nil
		}
		return nil, err
	}
	if name == "" {
		return configManager.GetDefault(), nil
	}
	return configManager.LoadConfig(name)
}

// runLevels prints the levels of the config directory
func runLevels(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	return printLevels(cmd.Root().Writer, configManager)
}

func printLevels(w io.Writer, configManager *config.Manager) error {
	levels, err := configManager.ListConfigs()
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		fmt.Fprintln(w, "No levels found")
		return nil
	}

	for _, info := range levels {
		level, err := configManager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "❌ %s: %v\n", info.ConfigID, err)
			continue
		}
		fmt.Fprintf(w, "%s (%s) %dx%d, villains %d, bricks %d, power-ups %d: %s\n",
			info.ConfigID, info.Filename, info.MapSize, info.MapSize,
			info.Villains, info.Bricks, info.PowerUps, reachability(level))
	}
	return nil
}

// reachability describes whether the player can reach the key of a level
func reachability(level *engine.GameConfig) string {
	e, err := engine.NewEngine(level)
	if err != nil {
		return fmt.Sprintf("invalid (%v)", err)
	}

	start := e.GetPlayerPosition()
	key, ok := e.Registry().Key()
	if !ok {
		return "no key"
	}

	if moves := engine.ShortestPath(e.Grid(), start, key, false); moves >= 0 {
		return fmt.Sprintf("key in %d moves", moves)
	}
	if moves := engine.ShortestPath(e.Grid(), start, key, true); moves >= 0 {
		return fmt.Sprintf("key behind bricks (%d moves once cleared)", moves)
	}
	return "key unreachable"
}
