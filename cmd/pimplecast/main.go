package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voyagen/pimplecast/internal/cache"
	"github.com/voyagen/pimplecast/internal/channels"
	"github.com/voyagen/pimplecast/internal/config"
	"github.com/voyagen/pimplecast/internal/events"
	"github.com/voyagen/pimplecast/internal/fetcher"
	"github.com/voyagen/pimplecast/internal/logging"
	"github.com/voyagen/pimplecast/internal/metrics"
	"github.com/voyagen/pimplecast/internal/resolver"
	"github.com/voyagen/pimplecast/internal/server"
	"github.com/voyagen/pimplecast/internal/service"
	"github.com/voyagen/pimplecast/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use environment variables")
	once := flag.Bool("once", false, "Print the playlist to stdout and exit")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Configure(logging.Config{Level: cfg.LogLevel})
	logger := logging.WithComponent("main")
	if files := cfg.EnvFiles(); len(files) > 0 {
		logger.Info().Strs("files", files).Msg("env files loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := fetcher.NewClient(fetcher.Options{
		BaseURL:   cfg.SiteURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		RPS:       cfg.RPS,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("fetcher")
	}
	var pages fetcher.Pager = client

	if cfg.RedisURL != "" {
		rds, err := cache.New(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("redis ping")
		}
		pages = fetcher.NewCachedPager(client, rds, cfg.PageCacheTTL,
			fetcher.ListingsOrStreams(cfg.ListingsPath), logging.WithComponent("pagecache"))
		logger.Info().Dur("ttl", cfg.PageCacheTTL).Msg("redis connected (page cache enabled)")
	} else {
		logger.Info().Msg("redis disabled (REDIS_URL not set)")
	}

	var st store.Store
	if cfg.Cached() {
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		st, err = store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db")
		}
		defer st.Close()
		logger.Info().Dur("entry_ttl", cfg.EntryTTL).Msg("playlist cache enabled")
	} else {
		logger.Info().Msg("playlist cache disabled (DATABASE_URL not set)")
	}

	registry := channels.Default().With(cfg.Channels)
	observer := events.Multi(events.Log(logging.WithComponent("pipeline")), metrics.Observer())
	res := resolver.New(pages, registry, cfg.Location(), observer)
	assembler := service.NewAssembler(pages, res, st, service.Options{
		ListingsPath: cfg.ListingsPath,
		Location:     cfg.Location(),
		EntryTTL:     cfg.EntryTTL,
		Observer:     observer,
	})

	if *once {
		text, err := assembler.Build(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("build playlist")
		}
		fmt.Print(text)
		return
	}

	srv := server.New(assembler, cfg, logging.WithComponent("server"))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error().Err(err).Msg("server")
		os.Exit(1)
	}
}
