// Command ghcnd-etl exports expanded GHCN-Daily series into the configured
// sink (SQLite or Kafka). Stations are given explicitly or selected from the
// inventory.
//
// Usage:
//
//	ghcnd-etl -element TMAX -stations USC00011084,USW00094728
//	ghcnd-etl -element PRCP -country US -box 45,-90,30,-70 -flags
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpadapter "github.com/kokorev/ghcndaily/internal/adapter/http"
	kafkaadapter "github.com/kokorev/ghcndaily/internal/adapter/kafka"
	"github.com/kokorev/ghcndaily/internal/adapter/noaa"
	"github.com/kokorev/ghcndaily/internal/adapter/sqlite"
	"github.com/kokorev/ghcndaily/internal/config"
	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/download"
	"github.com/kokorev/ghcndaily/internal/observability"
	"github.com/kokorev/ghcndaily/internal/pipeline"
)

type sink interface {
	pipeline.BatchLoader
	Close() error
}

func main() {
	stations := flag.String("stations", "", "comma-separated station ids; when empty, stations are selected from the inventory")
	countries := flag.String("country", "", "comma-separated FIPS country codes for inventory selection")
	element := flag.String("element", "", "element to export, e.g. TMAX (required)")
	boxes := flag.String("box", "", "bounding box north,west,south,east for inventory selection; separate several with ';'")
	flags := flag.Bool("flags", false, "keep measurement, quality and source flags")
	flag.Parse()

	if *element == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	elem := strings.ToUpper(*element)
	ids, err := resolveStations(ctx, cfg, downloader, *stations, *countries, elem, *boxes)
	if err != nil {
		logger.Error("failed to select stations", "error", err)
		os.Exit(1)
	}
	logger.Info("stations selected", "count", len(ids), "element", elem)

	out, err := openSink(cfg, logger)
	if err != nil {
		logger.Error("failed to open sink", "sink", cfg.Sink, "error", err)
		os.Exit(1)
	}

	src := pipeline.NewStationFileSource(downloader, cfg.DataDir, elem, *flags)
	p := pipeline.New(src, out, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, nil, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if err := p.Run(ctx, ids); err != nil {
		logger.Error("pipeline error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := out.Close(); err != nil {
		logger.Error("sink close error", "error", err)
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// resolveStations returns the explicit station list, or the inventory
// stations that report element and match the country and box criteria.
func resolveStations(ctx context.Context, cfg *config.Config, d *download.Downloader, stations, countries, element, boxes string) ([]string, error) {
	if ids := splitList(stations, ","); len(ids) > 0 {
		return ids, nil
	}

	c := domain.Criteria{
		Countries: splitList(countries, ","),
		Elements:  []string{element},
	}
	for _, raw := range splitList(boxes, ";") {
		b, err := domain.ParseBox(raw)
		if err != nil {
			return nil, err
		}
		c.Boxes = append(c.Boxes, b)
	}

	inv, err := loadInventory(ctx, cfg, d)
	if err != nil {
		return nil, err
	}
	return domain.Keys(inv.Filter(c)), nil
}

// loadInventory reads the local inventory, downloading it first if absent.
func loadInventory(ctx context.Context, cfg *config.Config, d *download.Downloader) (*domain.InventoryStore, error) {
	inv, err := domain.LoadInventory(cfg.InventoryPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := d.FetchInventory(ctx, cfg.InventoryPath); err != nil {
			return nil, fmt.Errorf("download inventory: %w", err)
		}
		inv, err = domain.LoadInventory(cfg.InventoryPath)
	}
	return inv, err
}

func openSink(cfg *config.Config, logger *slog.Logger) (sink, error) {
	switch cfg.Sink {
	case config.SinkKafka:
		return kafkaadapter.NewWriter(cfg, logger), nil
	default:
		return sqlite.Open(cfg.SQLitePath, logger)
	}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
