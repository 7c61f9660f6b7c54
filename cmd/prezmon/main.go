package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prezmon/prezmon/internal/aggregate"
	"github.com/prezmon/prezmon/internal/cache"
	"github.com/prezmon/prezmon/internal/config"
	"github.com/prezmon/prezmon/internal/extract"
	"github.com/prezmon/prezmon/internal/logger"
	"github.com/prezmon/prezmon/internal/models"
	"github.com/prezmon/prezmon/internal/roaep"
	"github.com/prezmon/prezmon/internal/schedule"
	"github.com/prezmon/prezmon/internal/search"
	"github.com/prezmon/prezmon/internal/stats"
	"github.com/prezmon/prezmon/internal/telegram"
	"github.com/prezmon/prezmon/internal/timeindex"
)

var (
	configPath  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	focusRegion = flag.String("region", "", "Track a single region matching this query instead of the full list")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Initialize the durable cache
	store := cache.NewStore(cfg.Cache.FilePath)
	if err := store.Load(); err != nil {
		logger.Fatal("Failed to load cache: %v", err)
	}
	logger.Info("Cache loaded: %d entries from %s", store.Len(), cfg.Cache.FilePath)

	// Initialize the presence client and the extraction pipeline
	client := roaep.NewClient(cfg.Election.BaseURL, cfg.Election.Month, cfg.Network.UserAgent, cfg.Network.Timeout)
	extractor := extract.New(cache.NewFetcher(client), store)
	agg := aggregate.New(
		extractor,
		client,
		cfg.Election.Round1Tag,
		cfg.Election.Round2Tag,
		cfg.Election.DayOffset,
		cfg.Election.HomeRegion,
	)

	// Initialize Telegram client
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, 3, time.Second)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	entities, err := resolveEntities(ctx, agg, cfg)
	if err != nil {
		logger.Fatal("Failed to resolve tracked entities: %v", err)
	}

	scheduler := schedule.New(cfg.Schedule.UpdateMinute, cfg.Schedule.UpdateSecond)

	start := cfg.Election.WindowStart.Timestamp()
	end := cfg.Election.WindowEnd.Timestamp()
	logger.Info("Starting turnout monitor (window %s .. %s, %d entities, update at :%02d:%02d)",
		start, end, len(entities), cfg.Schedule.UpdateMinute, cfg.Schedule.UpdateSecond)

	// Run the initial cycle immediately so a restart mid-hour does not wait
	// for the next trigger point.
	now := time.Now()
	if err := runCycle(ctx, agg, store, telegramClient, cfg, entities, now); err != nil {
		logger.Error("Initial cycle failed: %v", err)
	}
	scheduler.MarkFired(now)

	next, wait := scheduler.NextUpdate(time.Now())
	logger.Info("Next update at %s (in %v)", next.Format(time.TimeOnly), wait.Round(time.Second))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := store.Save(); err != nil {
				logger.Error("Failed to save cache on shutdown: %v", err)
			}
			logger.Info("Service stopped")
			return

		case tickTime := <-ticker.C:
			if !scheduler.ShouldFire(tickTime) {
				continue
			}
			scheduler.MarkFired(tickTime)
			if err := runCycle(ctx, agg, store, telegramClient, cfg, entities, tickTime); err != nil {
				logger.Error("Cycle failed: %v", err)
			}
			next, wait := scheduler.NextUpdate(time.Now())
			logger.Info("Next update at %s (in %v)", next.Format(time.TimeOnly), wait.Round(time.Second))
		}
	}
}

// resolveEntities builds the tracked entity list: discovered foreign regions
// (or the configured fallback list), narrowed by the -region flag when set,
// plus the domestic and global-total aggregates.
func resolveEntities(ctx context.Context, agg *aggregate.Aggregator, cfg *config.Config) ([]models.Entity, error) {
	regions, err := agg.DiscoverRegions(ctx)
	if err != nil {
		logger.Warn("Region discovery failed, using configured list: %v", err)
		regions = cfg.Election.Regions
	} else {
		logger.Info("Discovered %d foreign regions", len(regions))
		if len(regions) > len(cfg.Election.Regions) {
			regions = regions[:len(cfg.Election.Regions)]
		}
	}

	if *focusRegion != "" {
		matches := search.Search(*focusRegion, regions, 1)
		if len(matches) == 0 {
			return nil, fmt.Errorf("no region matches %q", *focusRegion)
		}
		logger.Info("Focusing on region %s (query %q)", matches[0], *focusRegion)
		regions = matches
	}

	entities := make([]models.Entity, 0, len(regions)+2)
	for _, r := range regions {
		entities = append(entities, models.Region(r))
	}
	entities = append(entities, models.Domestic(cfg.Election.HomeRegion), models.GlobalTotal())
	return entities, nil
}

func runCycle(
	ctx context.Context,
	agg *aggregate.Aggregator,
	store *cache.Store,
	telegramClient *telegram.Client,
	cfg *config.Config,
	entities []models.Entity,
	cycleTime time.Time,
) error {
	startTime := time.Now()

	index := timeindex.Generate(cycleTime, cfg.Election.WindowStart.Timestamp(), cfg.Election.WindowEnd.Timestamp())
	if len(index) == 0 {
		logger.Info("No published snapshots available yet, skipping cycle")
		return nil
	}
	logger.Info("Starting cycle at %v: %d observation points up to %s", cycleTime.Format(time.TimeOnly), len(index), index[len(index)-1])

	results, err := agg.Run(ctx, index, entities)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	for _, entity := range entities {
		pair := results[entity.Key()]
		delta, hourly := stats.Derive(pair.Current, pair.Prior)
		last := pair.Len() - 1
		logger.Info("%-12s %s round2=%d round1=%d delta=%+.1f%% hourly=%+d",
			entity.Key(), index[last], pair.Current[last], pair.Prior[last], delta[last], hourly[last])
	}

	// The live total runs ahead of the last hourly snapshot; the difference is
	// the turnout accumulated since the top of the hour.
	live, err := agg.LiveTotal(ctx)
	if err != nil {
		logger.Warn("Live total unavailable: %v", err)
	} else {
		lastTotal := results[models.TotalKey].Current[len(index)-1]
		logger.Info("Live total: %d (%+d since %s)", live, live-lastTotal, index[len(index)-1])

		if telegramClient != nil {
			summary := buildSummary(agg, entities, cycleTime, live, live-lastTotal)
			if err := telegramClient.Send(summary); err != nil {
				logger.Error("Failed to send Telegram notification: %v", err)
			}
		}
	}

	if err := store.Save(); err != nil {
		logger.Error("Failed to save cache: %v", err)
	}

	logger.Info("Cycle completed in %v", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func buildSummary(agg *aggregate.Aggregator, entities []models.Entity, cycleTime time.Time, live, liveDelta int64) telegram.Summary {
	summary := telegram.Summary{
		GeneratedAt: cycleTime,
		LiveTotal:   live,
		LiveDelta:   liveDelta,
	}
	for _, entity := range entities {
		snap, ok := agg.Snapshot(entity.Key())
		if !ok {
			continue
		}
		name := entity.Name
		if entity.Kind == models.EntityGlobalTotal {
			name = strings.ToUpper(models.TotalKey)
		}
		summary.Entities = append(summary.Entities, telegram.EntityLine{Name: name, Snapshot: snap})
	}
	return summary
}
