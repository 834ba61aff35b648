package main

import (
	"context"
	"flag"
	"io"
	"os/signal"
	"syscall"

	"themeforge/internal/config"
	"themeforge/internal/server"
	"themeforge/internal/ui"
)

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", config.DefaultFile, "path to JSON config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ui.EmitBanner(stdout, version, ui.PickTagline())

	cfg, err := config.LoadFile(*path)
	if err != nil {
		ui.LogStatus("error", err.Error())
		return 1
	}
	ui.SetLevel(cfg.Env.LogLevel)

	if cfg.Env.IsDevelopment() {
		ui.LogStatus("info", "Environment: "+ui.Warn("DEVELOPMENT"))
	} else {
		ui.LogStatus("info", "Environment: "+ui.Success("PRODUCTION"))
	}

	if err := cfg.Validate(); err != nil {
		ui.LogStatus("error", err.Error())
		return 1
	}

	ui.LogGroup("Theme")
	ui.LogGroupItem("default", cfg.DefaultColor)
	ui.LogGroupItem("shade", ui.Bold("%v", cfg.Shade))
	ui.LogGroupItem("tint", ui.Bold("%v", cfg.Tint))
	ui.LogGroupEnd()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var metrics *server.MetricsServer
	if cfg.MetricsListen != "" {
		metrics = server.NewMetricsServer(cfg.MetricsListen)
		metrics.Start()
		ui.LogStatus("info", "Metrics: http://localhost"+cfg.MetricsListen+"/metrics")
	}

	srv := server.NewServer(cfg)
	err = srv.Start(ctx)

	ui.LogGracefulShutdown()
	if metrics != nil {
		metrics.Shutdown(context.Background())
	}
	if err != nil {
		ui.LogStatus("error", "Server failed: "+err.Error())
		return 1
	}
	return 0
}
