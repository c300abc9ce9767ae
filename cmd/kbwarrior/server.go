package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/levibean95-hub/keyboard-warrior/internal/api"
	"github.com/levibean95-hub/keyboard-warrior/internal/config"
	"github.com/levibean95-hub/keyboard-warrior/internal/generate"
	"github.com/levibean95-hub/keyboard-warrior/internal/ingest"
	"github.com/levibean95-hub/keyboard-warrior/internal/openai"
	"github.com/levibean95-hub/keyboard-warrior/internal/ratelimit"
	"github.com/levibean95-hub/keyboard-warrior/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the kbwarrior server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running kbwarrior server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show kbwarrior system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "kbwarrior.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "kbwarrior version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("kbwarrior is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("kbwarrior is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the generator. Without an API key it serves canned responses.
	client := openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	if client.Configured() {
		slog.Info("generation backend configured", "model", client.Model())
	} else {
		slog.Warn("no OpenAI API key configured, serving canned responses")
	}
	generator := generate.NewGenerator(client)

	// Optional Redis-backed rate limiter.
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		limiter = ratelimit.New(cfg.Redis.Addr, cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
		defer limiter.Close()
		slog.Info("rate limiting enabled", "redis", cfg.Redis.Addr,
			"requests", cfg.RateLimit.Requests, "window_minutes", cfg.RateLimit.WindowMinutes)
	}

	uploadsDir := filepath.Join(cfg.Storage.DataDir, "uploads")

	handler := api.NewAppHandler(api.AppDeps{
		Store:      store,
		Generator:  generator,
		UploadsDir: uploadsDir,
		Limiter:    limiter,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	worker := ingest.NewWorker(store, uploadsDir, 500*time.Millisecond)

	mcpSrv := api.NewMCPServer(api.MCPDeps{Generator: generator})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("kbwarrior listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("kbwarrior is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop kbwarrior (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to kbwarrior (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	httpClient := &http.Client{Timeout: 2 * time.Second}

	resp, err := httpClient.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.OpenAI.APIKey != "" {
		printStatus("Backend", "OpenAI (%s)", cfg.OpenAI.Model)
	} else {
		printStatus("Backend", "not configured (canned responses)")
	}

	if cfg.Redis.Addr != "" {
		printStatus("Rate limit", "%d req / %d min via %s",
			cfg.RateLimit.Requests, cfg.RateLimit.WindowMinutes, cfg.Redis.Addr)
	} else {
		printStatus("Rate limit", "disabled")
	}

	// Show saved-argument count if the server is up.
	if running {
		client := &apiClient{baseURL: serverURL, httpClient: httpClient}
		argResp, err := client.get(ctx, "/api/arguments")
		if err == nil {
			var payload struct {
				Arguments []struct {
					ID string `json:"id"`
				} `json:"arguments"`
			}
			if decodeJSON(argResp, &payload) == nil {
				printStatus("Saved arguments", "%d", len(payload.Arguments))
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
