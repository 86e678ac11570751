package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/tinytelemetry/boxinfo/internal/about"
	"github.com/tinytelemetry/boxinfo/internal/config"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/socketrpc"
	"github.com/tinytelemetry/boxinfo/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

const socketDialTimeout = 500 * time.Millisecond

func main() {
	flags := pflag.NewFlagSet("boxinfo", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (default is $HOME/.config/boxinfo/config.yml)")
	showVersion := flags.Bool("version", false, "print version information")
	printPanel := flags.String("print", "", "collect one panel by id, print it and exit")
	flags.String("root", "/", "filesystem root the panels read from")
	flags.String("language", "en", "language of the panel labels")
	flags.Bool("update-check", true, "look up the latest image revision online")
	flags.Int("memory-rows", 25, "meminfo rows in the left column of Memory Info")
	flags.Bool("reverse-scroll-wheel", false, "invert the mouse wheel")
	flags.String("socket-path", "", "boxinfod socket for memory history")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("boxinfo - Box Information Viewer\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := config.Load(*configPath, changedOnly(flags))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *printPanel != "" {
		err = printOnce(context.Background(), cfg, *printPanel, os.Stdout)
	} else {
		err = runTUI(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// changedOnly drops flags the user did not set so their defaults do not
// shadow config values that have no flag of the same name.
func changedOnly(flags *pflag.FlagSet) *pflag.FlagSet {
	out := pflag.NewFlagSet(flags.Name(), pflag.ContinueOnError)
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "version", "print":
			return
		}
		out.AddFlag(f)
	})
	return out
}

func runTUI(cfg config.Config) error {
	cleanupLogger := configureRuntimeLogger("boxinfo")
	defer cleanupLogger()

	env, tr, err := cfg.Env()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Panels:             about.Panels(env),
		Runner:             env.Runner,
		Translator:         tr,
		Subtitle:           env.Box.Model(),
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	}

	client, err := socketrpc.DialTimeout(cfg.SocketPath, socketDialTimeout)
	if err != nil {
		log.Printf("boxinfod not reachable at %s, memory history disabled: %v", cfg.SocketPath, err)
	} else {
		defer client.Close()
		opts.History = client
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// printOnce collects the panel id without a terminal and writes its lines to w.
func printOnce(ctx context.Context, cfg config.Config, id string, w io.Writer) error {
	env, tr, err := cfg.Env()
	if err != nil {
		return err
	}
	src, ok := about.Find(about.Panels(env), id)
	if !ok {
		return fmt.Errorf("unknown panel %q", id)
	}

	ctrl := panel.NewController(src, panel.WithTranslator(tr))
	defer ctrl.Close()
	state := panel.Collect(ctx, ctrl, env.Runner)

	fmt.Fprintln(w, tr.T(ctrl.Title()))
	fmt.Fprintln(w, strings.Repeat("=", 80))
	for _, line := range ctrl.Lines() {
		fmt.Fprintln(w, line)
	}
	if state == panel.Failed {
		return fmt.Errorf("panel %s: some requests failed", id)
	}
	return nil
}

func configureRuntimeLogger(name string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "boxinfo")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
