package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpClient "github.com/rsavin/bookdesk/internal/client/api"
	"github.com/rsavin/bookdesk/internal/client/cache"
	"github.com/rsavin/bookdesk/internal/client/storage/boltdb"
	"github.com/rsavin/bookdesk/internal/client/suppress"
	clientsync "github.com/rsavin/bookdesk/internal/client/sync"
	"github.com/rsavin/bookdesk/internal/config"
	"github.com/rsavin/bookdesk/internal/models"
	"github.com/rsavin/bookdesk/internal/schedule"
	"github.com/rsavin/bookdesk/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config file")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	command := "run"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "run":
		if err := runStream(cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "schedule":
		if err := printSchedule(cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Commands: run (default), schedule")
		os.Exit(1)
	}
}

// runStream connects to the push stream and keeps the local cache in sync
// until SIGINT/SIGTERM.
func runStream(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	c := cache.New()
	supp := suppress.New()

	syncClient := clientsync.NewClient(clientsync.Config{
		URL:                   cfg.StreamURL,
		BaseReconnectInterval: cfg.ReconnectBase(),
		MaxReconnectInterval:  cfg.ReconnectCap(),
		MaxReconnectAttempts:  cfg.MaxReconnectAttempts,
		CacheTTL:              cfg.CacheTTL(),
	}, c, supp, boltStorage, logger)

	syncClient.Start(ctx)
	logger.Info("bookdesk client started", "stream_url", cfg.StreamURL)

	<-ctx.Done()
	logger.Info("shutting down")
	return syncClient.Close()
}

// printSchedule packs the cached reservations into concrete slots and
// prints them. Falls back to a REST snapshot when no usable local copy
// exists.
func printSchedule(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	c := cache.New()

	st, err := boltStorage.LoadCache(ctx)
	if err == nil && time.Since(st.SavedAt) < cfg.CacheTTL() {
		c.ReplaceAll(st.Reservations, st.Conversations, st.Vacations)
	} else {
		apiClient := httpClient.NewClient(cfg.APIBaseURL)
		snap, err := apiClient.FetchSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("no usable local cache and snapshot fetch failed: %w", err)
		}
		for key, list := range snap.Reservations {
			for _, r := range list {
				if r.CustomerID == "" {
					r.CustomerID = key
				}
				c.UpsertReservation(reservationFromPayload(r))
			}
		}
	}

	events := schedule.Pack(c.Reservations(), schedule.Options{
		FreeRoam:        cfg.FreeRoam,
		WindowMinutes:   cfg.WindowMinutes,
		DayStartMinutes: dayStartMinutes(cfg.DayStart),
	})

	for _, ev := range events {
		fmt.Printf("%s  %02d:%02d-%02d:%02d  %-20s %s\n",
			ev.Date,
			ev.Start/60, ev.Start%60,
			ev.End/60, ev.End%60,
			ev.CustomerName,
			ev.CustomerID)
	}
	return nil
}

func reservationFromPayload(p api.ReservationPayload) models.Reservation {
	return models.Reservation{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		Date:         p.Date,
		TimeSlot:     p.TimeSlot,
		CustomerName: p.CustomerName,
		Type:         models.ReservationType(p.Type),
		Cancelled:    p.Cancelled,
	}
}

func dayStartMinutes(s string) int {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func printVersion() {
	fmt.Printf("BookDesk Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
