// Package main is the chatbot entry point: flag parsing, logging setup,
// configuration loading, source/module registry wiring (via blank
// imports for their init-time Register calls), and the Core Runtime's
// connect-then-dispatch lifecycle.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fizyk20/chatbot/internal/config"
	"github.com/fizyk20/chatbot/internal/obsweb"
	"github.com/fizyk20/chatbot/internal/runtime"

	_ "github.com/fizyk20/chatbot/internal/module/eightball"
	_ "github.com/fizyk20/chatbot/internal/module/msgpipe"
	_ "github.com/fizyk20/chatbot/internal/module/patterns"
	_ "github.com/fizyk20/chatbot/internal/module/randomchat"
	_ "github.com/fizyk20/chatbot/internal/source/console"
	_ "github.com/fizyk20/chatbot/internal/source/discordsource"
	_ "github.com/fizyk20/chatbot/internal/source/ircsource"
	_ "github.com/fizyk20/chatbot/internal/source/slacksource"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfgPath, err := config.FindConfig(*configPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	// Reconfigure the logger with the config-driven level: a bootstrap
	// logger handles config loading, then a config-driven one takes over
	// for everything after.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			logger.Error("invalid log_level in config", "error", err)
			os.Exit(1)
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: config.ReplaceLogLevelNames,
		}))
	}

	logger.Info("config loaded", "path", cfgPath, "sources", len(cfg.Sources), "modules", len(cfg.Modules))

	var bus *obsweb.Bus
	var observer runtime.Observer
	if cfg.ObsWebAddr != "" {
		bus = obsweb.NewBus()
		observer = bus
	}

	rt, err := runtime.New(cfg, logger, observer)
	if err != nil {
		logger.Error("failed to build runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	var obsServer *http.Server
	if bus != nil {
		mux := http.NewServeMux()
		obsweb.RegisterRoutes(mux, bus, logger)
		obsServer = &http.Server{Addr: cfg.ObsWebAddr, Handler: mux}
		go func() {
			logger.Info("obsweb listening", "addr", cfg.ObsWebAddr)
			if err := obsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("obsweb server failed", "error", err)
			}
		}()
	}

	if err := rt.ConnectAll(cfg.SourceOrder); err != nil {
		logger.Error("failed to connect sources", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		if obsServer != nil {
			_ = obsServer.Close()
		}
		_ = rt.Close()
		os.Exit(0)
	}()

	rt.Run()
}
