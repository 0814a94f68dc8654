// Command ghcnd-api serves station inventory, station metadata and expanded
// daily series over HTTP. Station files are downloaded on first request.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/kokorev/ghcndaily/internal/adapter/http"
	"github.com/kokorev/ghcndaily/internal/adapter/noaa"
	"github.com/kokorev/ghcndaily/internal/config"
	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/download"
	"github.com/kokorev/ghcndaily/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := noaa.NewClient(cfg.FetchTimeout, logger, metrics)
	downloader := download.New(client, cfg.BaseURL, logger)

	inv, meta, err := loadStores(ctx, cfg, downloader)
	if err != nil {
		logger.Error("failed to load station files", "error", err)
		os.Exit(1)
	}
	logger.Info("station files loaded", "inventory_records", inv.Len(), "stations", meta.Len())

	api := httpadapter.NewAPI(inv, meta, downloader, cfg.DataDir, cfg.SeriesCacheSize, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, api, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

// loadStores reads the inventory and station list, downloading whichever
// is not present locally.
func loadStores(ctx context.Context, cfg *config.Config, d *download.Downloader) (*domain.InventoryStore, *domain.MetaStore, error) {
	inv, err := domain.LoadInventory(cfg.InventoryPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := d.FetchInventory(ctx, cfg.InventoryPath); err != nil {
			return nil, nil, fmt.Errorf("download inventory: %w", err)
		}
		inv, err = domain.LoadInventory(cfg.InventoryPath)
	}
	if err != nil {
		return nil, nil, err
	}

	meta, err := domain.LoadMeta(cfg.StationsPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := d.FetchStations(ctx, cfg.StationsPath); err != nil {
			return nil, nil, fmt.Errorf("download station list: %w", err)
		}
		meta, err = domain.LoadMeta(cfg.StationsPath)
	}
	if err != nil {
		return nil, nil, err
	}
	return inv, meta, nil
}
