// Command ghcnd-download copies GHCN-Daily files into a local directory:
// the daily files of the given stations and, on request, the inventory and
// station list.
//
// Usage:
//
//	ghcnd-download -stations USC00011084,USW00094728 -dir data
//	ghcnd-download -inventory -station-list
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

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

	stations := flag.String("stations", "", "comma-separated station ids to download")
	dir := flag.String("dir", cfg.DataDir, "destination directory for .dly files")
	inventory := flag.Bool("inventory", false, "also download "+domain.InventoryFile+" to GHCN_INVENTORY_PATH")
	stationList := flag.Bool("station-list", false, "also download "+domain.StationsFile+" to GHCN_STATIONS_PATH")
	flag.Parse()

	var ids []string
	for _, id := range strings.Split(*stations, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && !*inventory && !*stationList {
		flag.Usage()
		os.Exit(2)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := download.New(noaa.NewClient(cfg.FetchTimeout, logger, metrics), cfg.BaseURL, logger)

	if *inventory {
		if err := d.FetchInventory(ctx, cfg.InventoryPath); err != nil {
			logger.Error("inventory download failed", "error", err)
			os.Exit(1)
		}
		logger.Info("inventory downloaded", "path", cfg.InventoryPath)
	}
	if *stationList {
		if err := d.FetchStations(ctx, cfg.StationsPath); err != nil {
			logger.Error("station list download failed", "error", err)
			os.Exit(1)
		}
		logger.Info("station list downloaded", "path", cfg.StationsPath)
	}
	if len(ids) > 0 {
		if err := d.FetchAndStore(ctx, ids, *dir); err != nil {
			logger.Error("download failed", "error", err)
			os.Exit(1)
		}
		logger.Info("download complete", "stations", len(ids), "dir", filepath.Clean(*dir))
	}
}
