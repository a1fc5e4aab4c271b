package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code. Deferred cleanup, including closing
// the log writers, happens before it returns on every path.
func run(args []string, stdout, stderr io.Writer) int {
	flags, err := ParseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] %v\n", err)
		return 2
	}

	if err := config.LoadEnvFile(flags.EnvFile); err != nil {
		fmt.Fprintf(stderr, "[WARN] Could not load env file '%s': %v\n", flags.EnvFile, err)
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not load config using path '%s': %v\n", flags.GlobalConfigFile, err)
		return 1
	}
	if flags.Mode != "" {
		gCfg.Mode = flags.Mode
	}

	appLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return 1
	}
	defer appLogger.Close()
	zLogger := *appLogger.GetZerolog()

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}
	zLogger.Info().Str("mode", gCfg.Mode).Int("watch_folders", len(gCfg.WatchFolders)).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, gCfg, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx, flags, stdout); err != nil {
		zLogger.Error().Err(err).Str("mode", gCfg.Mode).Msg("Run failed")
		return 1
	}
	zLogger.Info().Msg("Shutdown complete")
	return 0
}
