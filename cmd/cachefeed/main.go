// Command cachefeed fills a bounded cache from a Redis feed channel and keeps
// it running until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	cache "github.com/mxcd/go-bounded-cache"
	"github.com/mxcd/go-bounded-cache/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	c, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(c)
	slog.SetDefault(logger)
	cache.SetLogger(logger)

	if err := run(c, logger); err != nil {
		logger.Error("cachefeed stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(c *config.Config) *slog.Logger {
	options := &slog.HandlerOptions{Level: parseLogLevel(c.Log.Level)}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newPolicy(c *config.Config) cache.AdmissionPolicy[string, string] {
	policies := []cache.AdmissionPolicy[string, string]{
		cache.NewDisplayLengthPolicy[string, string](c.Cache.MaxChars),
	}
	if c.Cache.MaxEncodedBytes > 0 {
		policies = append(policies, cache.NewEncodedSizePolicy[string, string](c.Cache.MaxEncodedBytes))
	}
	return cache.AllOf(policies...)
}

func run(c *config.Config, logger *slog.Logger) error {
	target, err := cache.NewSynchronizedCache[string, string](&cache.BoundedCacheOptions[string, string]{
		Policy:      newPolicy(c),
		MaxCapacity: c.Cache.Capacity,
		OnEvict: func(key string, _ string) {
			logger.Debug("evicted", "key", key)
		},
	})
	if err != nil {
		return err
	}

	feed, err := cache.NewRedisFeed[string, string](&cache.RedisFeedOptions[string, string]{
		RedisOptions: &redis.Options{
			Addr:        c.Redis.Addr,
			Password:    c.Redis.Password,
			DB:          c.Redis.DB,
			DialTimeout: c.Redis.DialTimeout,
			ReadTimeout: c.Redis.ReadTimeout,
		},
		ChannelName: c.Feed.Channel,
		KeyPrefix:   c.Feed.KeyPrefix,
		CacheKey:    &cache.StringCacheKey{},
		Target:      target,
	})
	if err != nil {
		return fmt.Errorf("start feed: %w", err)
	}
	defer feed.Close()

	feed.AddCallback(func(event cache.CacheEvent[string, string]) {
		logger.Debug("feed entry", "key", event.Entry.Key, "outcome", event.Type.String(), "len", target.Len())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Feed.Backfill {
		admitted, err := feed.Backfill(ctx)
		if err != nil {
			return fmt.Errorf("backfill: %w", err)
		}
		logger.Info("backfill done", "admitted", admitted, "len", target.Len())
	}

	logger.Info("cachefeed running",
		"channel", c.Feed.Channel,
		"capacity", target.Capacity(),
		"max_chars", c.Cache.MaxChars,
	)
	<-ctx.Done()

	logger.Info("shutting down", "len", target.Len())
	return nil
}
