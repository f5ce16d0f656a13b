package web

import (
	"context"

	"calbridge/internal/config"
	"calbridge/internal/ics"
	appLog "calbridge/internal/log"
	"calbridge/internal/render"
	"calbridge/internal/tzconvert"
)

// BuildFeed runs the fetch -> import -> export pipeline for all configured
// sources and returns renderer-contract events. Per-source and per-event
// failures are contained: a bad feed or a bad record is logged and skipped,
// the rest of the batch goes through.
func BuildFeed(ctx context.Context, cfg *config.Config, fetcher *ics.Fetcher, zones *tzconvert.LocationCache) []render.Event {
	display, lerr := zones.Load(cfg.Timezone)
	if lerr != nil {
		appLog.Warn("feed: unknown display timezone, using UTC", "timezone", cfg.Timezone)
	}
	settings := render.Settings{DisplayZone: display, Zones: zones}

	sources := Sources(cfg)
	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Warn("feed: some sources failed to fetch", "failed", len(fetchErrs), "total", len(sources))
	}

	events := make([]render.Event, 0)
	for _, res := range results {
		imported, err := ics.ImportEvents(res.Body, zones)
		if err != nil {
			appLog.Error("feed: import failed for source", err, "id", res.Source.ID)
			continue
		}
		for _, imp := range imported {
			re, err := render.ToRendererEvent(res.Source.ID+"/"+imp.ID, imp.Event, settings)
			if err != nil {
				appLog.Error("feed: event dropped", err, "source", res.Source.ID, "id", imp.ID)
				continue
			}
			events = append(events, *re)
		}
	}

	return events
}

// Sources maps config entries to fetchable sources, deriving an ID when the
// config omits one.
func Sources(cfg *config.Config) []ics.Source {
	out := make([]ics.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		if sc.URL == "" {
			continue
		}
		id := sc.ID
		if id == "" {
			if sc.Name != "" {
				id = sc.Name
			} else {
				id = sc.URL
			}
		}
		out = append(out, ics.Source{ID: id, URL: sc.URL})
	}
	return out
}
