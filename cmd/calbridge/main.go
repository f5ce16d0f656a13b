package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calbridge/internal/config"
	"calbridge/internal/ics"
	appLog "calbridge/internal/log"
	"calbridge/internal/model"
	"calbridge/internal/render"
	"calbridge/internal/tzconvert"
	"calbridge/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	cacheDir   string
	once       bool
	dump       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("calbridge starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"source_count", len(conf.Sources),
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	zones := tzconvert.NewLocationCache()
	fetcher := ics.NewFetcher(flags.cacheDir)

	if flags.once {
		if err := runOnce(ctx, conf, fetcher, zones, flags.dump); err != nil {
			appLog.Error("single-shot run failed", err)
			os.Exit(1)
		}
		return
	}

	server := web.NewServer(conf, fetcher, zones)

	// Warm the feed once up front, then keep it warm on the cron schedule.
	server.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() { server.Refresh(ctx) }); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := server.ListenAndServe(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("calbridge exiting")
}

// runOnce executes one fetch/import/export pass and writes the resulting
// renderer feed as JSON to stdout. With -dump, rule-based patterns are also
// expanded into concrete occurrences over the configured horizon.
func runOnce(ctx context.Context, conf *config.Config, fetcher *ics.Fetcher, zones *tzconvert.LocationCache, dump bool) error {
	events := web.BuildFeed(ctx, conf, fetcher, zones)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return err
	}

	if !dump {
		return nil
	}

	display, lerr := zones.Load(conf.Timezone)
	if lerr != nil {
		appLog.Warn("unknown display timezone, using UTC", "timezone", conf.Timezone)
	}
	settings := render.Settings{DisplayZone: display, Zones: zones}

	now := time.Now().In(display)
	rangeEnd := now.AddDate(0, 0, conf.HorizonDays)

	sources := web.Sources(conf)
	results, _ := fetcher.FetchAll(ctx, sources)
	occurrences := make([]render.Occurrence, 0)
	for _, res := range results {
		imported, err := ics.ImportEvents(res.Body, zones)
		if err != nil {
			continue
		}
		for _, imp := range imported {
			rb, ok := imp.Event.(model.RuleBased)
			if !ok {
				continue
			}
			occ, err := render.ExpandRuleBased(res.Source.ID+"/"+imp.ID, rb, now, rangeEnd, settings)
			if err != nil {
				appLog.Error("expand failed", err, "id", imp.ID)
				continue
			}
			occurrences = append(occurrences, occ...)
		}
	}

	return enc.Encode(occurrences)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calbridge/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "/var/lib/calbridge/ics-cache", "Directory for the ICS fetch cache")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+export cycle, print JSON and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "With -once, also print expanded occurrences for the horizon")

	flag.Parse()

	return cfg
}
