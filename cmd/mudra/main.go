// Mudra watches a webcam for hand gestures and dispatches them to plugin
// actions. It runs as a system tray application with a local HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", defaultDir(), "directory holding mudra.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = defaultDir()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if cfg.Plugins.Dir == "" {
		cfg.Plugins.Dir = filepath.Join(dataDir, "plugins")
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	a, err := app.New(*cfg, st, log)
	if err != nil {
		return err
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Warn().Err(err).Msg("plugin discovery failed")
	}
	if err := a.LoadTemplates(); err != nil {
		return err
	}
	if err := a.LoadBindings(); err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			Store:   st,
			Bus:     a.Bus(),
			Catalog: a.Detector(),
			Camera:  a.Camera(),
		}, log)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				log.Error().Err(err).Msg("api server failed")
			}
		}()
	}

	t := tray.New(a.Bus())
	t.OnToggle(a.SetEnabled)
	t.OnQuit(cancel)
	t.Run()

	return nil
}

// defaultDir is ~/.mudra, falling back to the working directory when the
// home directory cannot be resolved.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}
