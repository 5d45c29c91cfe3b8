package main

import (
	"context"
	"flag"

	"github.com/google/uuid"

	"spindle/internal/modkit"
	"spindle/internal/platform/config"
	"spindle/internal/platform/logger"
	"spindle/internal/platform/store"

	loadmod "spindle/internal/services/load/module"
)

func main() {
	var (
		fSongs = flag.String("songs", "", "root directory of song catalog JSON files")
		fLogs  = flag.String("logs", "", "root directory of activity log JSON files")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	if *fSongs == "" || *fLogs == "" {
		l.Fatal().Msg("must provide -songs and -logs")
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	opts := loadmod.FromConfig(root)

	chURL := ""
	if opts.Mirror {
		chURL = chCfg.MustString("DBURL")
	}

	st, err := store.Open(context.Background(), store.Config{
		AppName: "spindle-load",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: opts.Mirror,
			URL:     chURL,
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Guard(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("store guard failed")
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	lm := loadmod.New(deps)
	ports := lm.Ports().(loadmod.Ports)

	ctx := logger.WithRun(context.Background(), uuid.NewString())
	stats, err := ports.Runner.Run(ctx, *fSongs, *fLogs)
	if err != nil {
		l.Fatal().Err(err).Msg("load failed")
	}

	l.Info().
		Int("catalog_files", stats.CatalogFiles).
		Int("log_files", stats.LogFiles).
		Int("events", stats.Events).
		Int64("bytes", stats.BytesRead).
		Int("collect_ms", stats.CollectMS).
		Int("read_ms", stats.ReadMS).
		Int("db_ms", stats.DBMS).
		Int("elapsed_ms", stats.ElapsedMS).
		Msg("load finished")
}
