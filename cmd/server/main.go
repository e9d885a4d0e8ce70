package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"hll-geoguesser/internal/api"
	"hll-geoguesser/internal/apperr"
	"hll-geoguesser/internal/config"
	"hll-geoguesser/internal/coords"
	"hll-geoguesser/internal/filesystem"
	"hll-geoguesser/internal/logger"
	"hll-geoguesser/internal/scenes"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.String("port", "", "Port to run the server on (overrides server.addr)")
	webRoot := flag.String("webroot", "", "Static-asset root (overrides server.web_root)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyFlags(*port, *webRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Log.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	fsys := filesystem.LocalFS{}
	lister := scenes.NewLister(cfg, fsys, log)
	store, err := coords.NewStore(cfg, fsys, log)
	if err != nil {
		log.Fatal("failed to create coordinate store", "error", err)
	}

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupChecks(ctx, log, lister, store)

	// Start the server
	server := api.NewServer(cfg, lister, store, log)
	if err := server.Run(ctx); err != nil {
		log.Fatal("server failed", "error", err)
	}
	log.Info("server stopped")
}

// startupChecks reports the state of the scene directory and the persisted
// coordinates. Neither is fatal: the directory may be created later and a
// corrupt file is replaced by the next save.
func startupChecks(ctx context.Context, log *logger.Logger, lister *scenes.Lister, store *coords.Store) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := lister.List(gctx)
		switch {
		case errors.Is(err, apperr.ErrDirectoryNotFound):
			log.Warn("scene directory missing", "dir", lister.Dir())
		case err != nil:
			log.Warn("scene directory unreadable", "dir", lister.Dir(), "error", err)
		default:
			log.Info("scene directory ready", "dir", lister.Dir(), "scenes", len(files))
		}
		return nil
	})
	g.Go(func() error {
		records, err := store.Load(gctx)
		if err != nil {
			log.Warn("existing coordinates file unreadable", "file", store.Path(), "error", err)
			return nil
		}
		log.Info("coordinates file ready", "file", store.Path(), "records", len(records))
		return nil
	})
	_ = g.Wait()
}
