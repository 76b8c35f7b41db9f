package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/crestwm/crest/internal/config"
	"github.com/crestwm/crest/internal/configpath"
	"github.com/crestwm/crest/internal/keys"
	"github.com/crestwm/crest/internal/wm"
	"github.com/crestwm/crest/internal/x11"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("crest", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (default: XDG config dir)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(*logLevel)

	path := *configPath
	if path == "" {
		var err error
		path, err = configpath.ConfigFile()
		if err != nil {
			logger.Error("config path resolution failed", "error", err)
			return 1
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config load failed", "path", path, "error", err)
		return 1
	}
	logger.Info("configuration loaded",
		"path", path, "layout", cfg.DefaultLayout, "workspaces", cfg.Workspaces)

	conn, err := x11.NewConn(logger)
	if err != nil {
		logger.Error("display connection failed", "error", err)
		return 1
	}
	defer conn.Close()

	if err := conn.Manage(); err != nil {
		logger.Error("cannot manage root window", "error", err)
		return 1
	}

	monitors, err := conn.Monitors()
	if err != nil {
		logger.Error("monitor discovery failed", "error", err)
		return 1
	}
	for _, m := range monitors {
		logger.Info("monitor", "name", m.Name, "geometry", m.Geom)
	}

	bindings := keys.New(conn.XUtil(), conn.Root(), cfg.Keybindings, logger)
	manager := wm.New(conn, cfg, monitors, bindings, logger)

	adoptExisting(conn, manager, logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info("signal received, shutting down", "signal", sig)
		conn.PostShutdown()
	}()

	logger.Info("crest running", "monitors", len(monitors))
	if err := manager.Run(); err != nil {
		logger.Error("event loop terminated", "error", err)
		return 1
	}
	return 0
}

// adoptExisting brings windows mapped before startup under management
// by replaying a map request for each.
func adoptExisting(conn *x11.Conn, manager *wm.WM, logger *slog.Logger) {
	wins, err := conn.AdoptableWindows()
	if err != nil {
		logger.Warn("startup adoption failed", "error", err)
		return
	}
	for _, win := range wins {
		manager.Dispatch(x11.MapRequest{Window: win})
	}
	if len(wins) > 0 {
		logger.Info("adopted existing windows", "count", len(wins))
	}
}

// newLogger builds the process logger: human-readable text on a
// terminal, JSON when stderr is redirected.
func newLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	if !parseable(level) {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
	}
	return logger
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseable(s string) bool {
	switch s {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
