package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"faultpoint/internal/app"
	"faultpoint/internal/shared/config"
	"faultpoint/internal/shared/logger"
	"faultpoint/internal/shared/types"
)

func main() {
	configDir := flag.String("configdir", "configs", "Path to config directory")
	port := flag.Int("port", 0, "Listen port (overrides config, default 11111)")
	globalDirective := flag.String("directive", "", "Global directive executed on every connection, e.g. ACT[WAIT=500,CLOSE]")
	flag.Parse()

	iniPath := filepath.Join(*configDir, "faultpoint.ini")

	// 1. Load the behavior configuration.
	cfg := new(types.Config)
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before the logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.ServerConf.ListenPort = *port
	}
	if *globalDirective != "" {
		cfg.ServerConf.Directive = *globalDirective
	}

	// 1.1 Initialize the logging system.
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// 2. Create the server. A bad global directive fails here, before
	// any socket is opened.
	appServer, err := app.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Startup failed")
	}

	// 3. Run until signalled.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		appServer.Stop()
	}()

	if err := appServer.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
