// Package service runs the star-schema load pipeline
package service

import (
	"context"
	"io"
	"math"
	"time"

	"spindle/internal/modkit/repokit"
	"spindle/internal/platform/logger"
	"spindle/internal/services/load/domain"
	"spindle/internal/services/load/ingest"
)

// Config holds configuration options for the load service
type Config struct {
	// Insert tuning: rows per transaction; <=0 -> 1 (row-at-a-time, every
	// failure names the row that caused it)
	BatchSize int

	// Mirror toggles the analytical songplays mirror
	Mirror bool
}

// Service implements the load service
type Service struct {
	DB      repokit.TxRunner
	Binder  repokit.Binder[domain.StorageRepo] // binds q -> domain.StorageRepo
	Readers domain.ReaderFactory
	Mirror  domain.MirrorWriter // optional; used when Cfg.Mirror == true
	Cfg     Config
}

// New constructs the load service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	rf domain.ReaderFactory,
	mirror domain.MirrorWriter, // optional mirror writer
	cfg Config,
) *Service {
	if db == nil {
		panic("load.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("load.Service requires a non nil Repo binder")
	}
	if rf == nil {
		panic("load.Service requires a non nil ReaderFactory")
	}
	return &Service{DB: db, Binder: binder, Readers: rf, Mirror: mirror, Cfg: cfg}
}

// Run implements domain.RunnerPort. Dimensions load before facts because the
// songplay resolver reads songs and artists back out of the store
func (s *Service) Run(ctx context.Context, songDir, logDir string) (domain.RunStats, error) {
	startWall := time.Now()
	var stats domain.RunStats

	t0 := time.Now()
	songPaths, err := ingest.Collect(songDir, ".json")
	if err != nil {
		return stats, err
	}
	logPaths, err := ingest.Collect(logDir, ".json")
	if err != nil {
		return stats, err
	}
	stats.CollectMS = int(time.Since(t0).Milliseconds())
	stats.CatalogFiles = len(songPaths)
	stats.LogFiles = len(logPaths)
	logger.C(ctx).Info().
		Int("catalog_files", len(songPaths)).
		Int("log_files", len(logPaths)).
		Msg("load: collected source files")

	t1 := time.Now()
	catalog, err := s.readCatalogs(ctx, songPaths)
	if err != nil {
		return stats, err
	}

	events, eventBytes, err := s.readEvents(ctx, logPaths)
	if err != nil {
		return stats, err
	}
	stats.ReadMS = int(time.Since(t1).Milliseconds())
	stats.Events = len(events)
	stats.BytesRead = eventBytes

	t2 := time.Now()

	songs, songDrops := ingest.ProjectSongs(catalog)
	if err := s.loadTable(ctx, &stats, domain.TableStats{
		Table: "songs", Read: len(catalog), Dropped: songDrops,
	}, len(songs), func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error) {
		return r.InsertSongs(ctx, songs[lo:hi])
	}); err != nil {
		return stats, err
	}

	artists, artistDrops := ingest.ProjectArtists(catalog)
	if err := s.loadTable(ctx, &stats, domain.TableStats{
		Table: "artists", Read: len(catalog), Dropped: artistDrops,
	}, len(artists), func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error) {
		return r.InsertArtists(ctx, artists[lo:hi])
	}); err != nil {
		return stats, err
	}

	timeRows, timeDrops := ingest.DecomposeTime(events)
	if err := s.loadTable(ctx, &stats, domain.TableStats{
		Table: "time", Read: len(events), Dropped: timeDrops,
	}, len(timeRows), func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error) {
		return r.InsertTimeRows(ctx, timeRows[lo:hi])
	}); err != nil {
		return stats, err
	}

	users, userDrops := ingest.ProjectUsers(events)
	if err := s.loadTable(ctx, &stats, domain.TableStats{
		Table: "users", Read: len(events), Dropped: userDrops,
	}, len(users), func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error) {
		return r.InsertUsers(ctx, users[lo:hi])
	}); err != nil {
		return stats, err
	}

	spStats, facts, err := s.buildSongplays(ctx, events)
	if err != nil {
		return stats, err
	}
	if err := s.loadTable(ctx, &stats, spStats, len(facts),
		func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error) {
			return r.InsertSongplays(ctx, facts[lo:hi])
		}); err != nil {
		return stats, err
	}
	stats.DBMS = int(time.Since(t2).Milliseconds())

	if s.Cfg.Mirror && s.Mirror != nil && len(facts) > 0 {
		if err := s.Mirror.WriteSongplays(ctx, facts); err != nil {
			return stats, err
		}
		logger.C(ctx).Info().Int("rows", len(facts)).Msg("load: mirrored songplays")
	}

	stats.ElapsedMS = int(time.Since(startWall).Milliseconds())
	return stats, nil
}

func (s *Service) readCatalogs(ctx context.Context, paths []string) ([]domain.CatalogRecord, error) {
	recs := make([]domain.CatalogRecord, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rd, err := s.Readers.Catalog(p)
		if err != nil {
			return nil, err
		}
		for {
			rec, err := rd.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rd.Close()
				return nil, err
			}
			recs = append(recs, rec)
		}
		if err := rd.Close(); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *Service) readEvents(ctx context.Context, paths []string) ([]domain.ActivityEvent, int64, error) {
	var events []domain.ActivityEvent
	var bytes int64
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, bytes, err
		}
		rd, err := s.Readers.Events(p)
		if err != nil {
			return nil, bytes, err
		}
		for {
			ev, err := rd.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rd.Close()
				return nil, bytes, err
			}
			events = append(events, ev)
		}
		_, b := rd.Stats()
		bytes += b
		if err := rd.Close(); err != nil {
			return nil, bytes, err
		}
	}
	return events, bytes, nil
}

// buildSongplays derives one fact per event surviving the full-row null-drop
// and resolves each against the dimensions already in the store. Completeness
// is the only gate here; the time dimension filters by page, facts do not
func (s *Service) buildSongplays(
	ctx context.Context,
	events []domain.ActivityEvent,
) (domain.TableStats, []domain.SongplayFact, error) {
	st := domain.TableStats{Table: "songplays"}
	repo := repokit.MustBind(s.Binder, s.DB)

	warnedFractional := false
	var facts []domain.SongplayFact
	for _, ev := range events {
		st.Read++
		if !ingest.CompleteEvent(ev) {
			st.Dropped++
			continue
		}

		// Duration resolution is exact float equality against the catalog
		// value, which only works when both sides round-tripped through the
		// same JSON decoding. Warn once per run when a fractional length
		// shows up so a silent miss storm has a breadcrumb
		if !warnedFractional && *ev.Length != math.Trunc(*ev.Length) {
			warnedFractional = true
			logger.C(ctx).Warn().
				Float64("length", *ev.Length).
				Msg("load: resolving fractional durations by exact float match")
		}

		songID, artistID, err := repo.LookupSongArtist(ctx, *ev.Song, *ev.Artist, *ev.Length)
		if err != nil {
			return st, nil, err
		}
		if songID != nil {
			st.Resolved++
		} else {
			st.Unresolved++
		}

		facts = append(facts, domain.SongplayFact{
			StartTime: ingest.DecomposeEpochMS(*ev.TS).StartTime,
			UserID:    *ev.UserID,
			Level:     *ev.Level,
			SongID:    songID,
			ArtistID:  artistID,
			SessionID: *ev.SessionID,
			Location:  *ev.Location,
			UserAgent: *ev.UserAgent,
		})
	}
	return st, facts, nil
}

// loadTable inserts rows in BatchSize chunks, each chunk in its own
// transaction, then appends the finished per-table stats to the run
func (s *Service) loadTable(
	ctx context.Context,
	run *domain.RunStats,
	st domain.TableStats,
	n int,
	insert func(ctx context.Context, r domain.StorageRepo, lo, hi int) (int, int, error),
) error {
	ctx = logger.WithTable(ctx, st.Table)
	chunk := s.Cfg.BatchSize
	if chunk <= 0 {
		chunk = 1
	}
	for i := 0; i < n; i += chunk {
		end := min(i+chunk, n)
		err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
			ins, dd, e := insert(ctx, repokit.MustBind(s.Binder, q), i, end)
			st.Inserted += ins
			st.Deduped += dd
			return e
		})
		if err != nil {
			logger.C(ctx).Error().Err(err).Int("at", i).Msg("load: insert failed")
			return err
		}
	}
	logger.C(ctx).Info().
		Int("read", st.Read).
		Int("dropped", st.Dropped).
		Int("inserted", st.Inserted).
		Int("deduped", st.Deduped).
		Msg("load: table finished")
	run.Tables = append(run.Tables, st)
	return nil
}
