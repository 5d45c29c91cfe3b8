package ingest

import (
	"context"

	"spindle/internal/platform/store"
	"spindle/internal/services/load/domain"
)

// songplayColumns is the mirror table's insert column list
var songplayColumns = []string{
	"songplay_id", "start_time", "user_id", "level",
	"song_id", "artist_id", "session_id", "location", "user_agent",
}

type mirror struct {
	ch store.Clickhouse
}

// NewMirror wraps the clickhouse seam as a domain.MirrorWriter
func NewMirror(ch store.Clickhouse) domain.MirrorWriter {
	return &mirror{ch: ch}
}

// WriteSongplays batches the facts into one columnar insert
func (m *mirror) WriteSongplays(ctx context.Context, rows []domain.SongplayFact) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([][]any, 0, len(rows))
	for _, f := range rows {
		batch = append(batch, []any{
			f.SongplayID, f.StartTime, f.UserID, f.Level,
			f.SongID, f.ArtistID, int32(f.SessionID), f.Location, f.UserAgent,
		})
	}
	return m.ch.Insert(ctx, "songplays", songplayColumns, batch)
}
