package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/boxinfo/internal/about"
	"github.com/tinytelemetry/boxinfo/internal/backup"
	"github.com/tinytelemetry/boxinfo/internal/collector"
	"github.com/tinytelemetry/boxinfo/internal/config"
	"github.com/tinytelemetry/boxinfo/internal/duckdb"
	"github.com/tinytelemetry/boxinfo/internal/httpserver"
	"github.com/tinytelemetry/boxinfo/internal/metrics"
	"github.com/tinytelemetry/boxinfo/internal/otlpexport"
	"github.com/tinytelemetry/boxinfo/internal/socketrpc"
)

// runServer collects panels on a schedule and serves the results over
// HTTP and the unix socket.
func runServer(cfg config.Config) error {
	cleanupLogger := configureRuntimeLogger("boxinfod")
	defer cleanupLogger()

	env, tr, err := cfg.Env()
	if err != nil {
		return fmt.Errorf("failed to set up panels: %w", err)
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.RetentionDays,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeepLast,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()
	box := env.Box
	recorder.SetBoxInfo(box.Model(), box.Platform(), box.KernelVersion(ctx))

	var pusher collector.Pusher
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlpexport.New(otlpexport.Config{
			Endpoint: cfg.OTLPEndpoint,
			Timeout:  cfg.NetworkTimeout,
			Resource: map[string]string{
				"service.name":    "boxinfod",
				"service.version": version,
				"host.name":       box.Model(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		defer exporter.Close()
		pusher = exporter
	}

	coll, err := collector.New(collector.Config{
		Panels:         about.Panels(env),
		Runner:         env.Runner,
		Translator:     tr,
		Store:          store,
		FS:             env.FS,
		Observer:       recorder,
		Pusher:         pusher,
		Interval:       cfg.CollectInterval,
		MemoryInterval: cfg.MemorySampleInterval,
	})
	if err != nil {
		return err
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, store, recorder.Handler())
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, store)
	if err := sockServer.Start(); err != nil {
		log.Printf("Warning: failed to start socket server: %v", err)
	} else {
		defer sockServer.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	fmt.Println(renderStartupBanner(cfg, pusher != nil))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coll.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}

	signal.Stop(sigCh)
	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

// configureRuntimeLogger sends the log package to
// ~/.local/state/boxinfo/<name>.log, or stderr when that fails.
func configureRuntimeLogger(name string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "boxinfo")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, name+".log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func renderStartupBanner(cfg config.Config, otlp bool) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔╗ ╔═╗═╗ ╦╦╔╗╔╔═╗╔═╗
    ╠╩╗║ ║╔╩╦╝║║║║╠╣ ║ ║
    ╚═╝╚═╝╩ ╚═╩╝╚╝╚  ╚═╝`)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+dim.Render("v"+version))
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", check, cyan.Render(shortenPath(cfg.SocketPath))))
	if otlp {
		lines = append(lines, fmt.Sprintf("    %s  OTLP Export    %s", check, cyan.Render(cfg.OTLPEndpoint)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  OTLP Export    %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render(shortenPath(cfg.DBPath))))
	if cfg.RetentionDays > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Retention      %s", check, dim.Render(fmt.Sprintf("%d days", cfg.RetentionDays))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Retention      %s", dot, dim.Render("disabled")))
	}
	if cfg.BackupEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Backups        %s", check, dim.Render(shortenPath(cfg.BackupDir))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Backups        %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Collection"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Panels         %s", check, dim.Render("every "+cfg.CollectInterval.String())))
	lines = append(lines, fmt.Sprintf("    %s  Memory         %s", check, dim.Render("every "+cfg.MemorySampleInterval.String())))
	lines = append(lines, fmt.Sprintf("    %s  Root           %s", check, dim.Render(cfg.Root)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
