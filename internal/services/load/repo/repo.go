// Package repo provides postgres access for the load pipeline
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spindle/internal/modkit/repokit"
	perr "spindle/internal/platform/errors"
	"spindle/internal/services/load/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// Dimension inserts use ON CONFLICT DO NOTHING on the natural key so repeated
// runs are idempotent; RowsAffected distinguishes inserted from deduped

const insertSongSQL = `
	INSERT INTO songs (song_id, title, artist_id, year, duration)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (song_id) DO NOTHING
`

func (r *queries) InsertSongs(ctx context.Context, rows []domain.SongRecord) (int, int, error) {
	inserted := 0
	for _, s := range rows {
		tag, err := r.q.Exec(ctx, insertSongSQL, s.SongID, s.Title, s.ArtistID, s.Year, s.Duration)
		if err != nil {
			return inserted, len(rows) - inserted, perr.FromPostgresf(err, "insert song %s", s.SongID)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, len(rows) - inserted, nil
}

const insertArtistSQL = `
	INSERT INTO artists (artist_id, name, location, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (artist_id) DO NOTHING
`

func (r *queries) InsertArtists(ctx context.Context, rows []domain.ArtistRecord) (int, int, error) {
	inserted := 0
	for _, a := range rows {
		tag, err := r.q.Exec(ctx, insertArtistSQL, a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude)
		if err != nil {
			return inserted, len(rows) - inserted, perr.FromPostgresf(err, "insert artist %s", a.ArtistID)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, len(rows) - inserted, nil
}

const insertTimeSQL = `
	INSERT INTO time (start_time, hour, day, week, month, year, weekday)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (start_time) DO NOTHING
`

func (r *queries) InsertTimeRows(ctx context.Context, rows []domain.TimeRow) (int, int, error) {
	inserted := 0
	for _, t := range rows {
		tag, err := r.q.Exec(ctx, insertTimeSQL, t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday)
		if err != nil {
			return inserted, len(rows) - inserted, perr.FromPostgresf(err, "insert time row %s", t.StartTime)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, len(rows) - inserted, nil
}

const insertUserSQL = `
	INSERT INTO users (user_id, first_name, last_name, gender, level)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT DO NOTHING
`

func (r *queries) InsertUsers(ctx context.Context, rows []domain.UserRecord) (int, int, error) {
	inserted := 0
	for _, u := range rows {
		tag, err := r.q.Exec(ctx, insertUserSQL, u.UserID, u.FirstName, u.LastName, u.Gender, u.Level)
		if err != nil {
			return inserted, len(rows) - inserted, perr.FromPostgresf(err, "insert user %s", u.UserID)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, len(rows) - inserted, nil
}

const insertSongplaySQL = `
	INSERT INTO songplays (
		songplay_id, start_time, user_id, level,
		song_id, artist_id, session_id, location, user_agent
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (songplay_id) DO NOTHING
`

// InsertSongplays stamps a fresh UUID per fact when the caller left it empty,
// so batch retries cannot double-insert a stamped row
func (r *queries) InsertSongplays(ctx context.Context, rows []domain.SongplayFact) (int, int, error) {
	inserted := 0
	for i := range rows {
		f := &rows[i]
		if f.SongplayID == "" {
			f.SongplayID = uuid.NewString()
		}
		tag, err := r.q.Exec(ctx, insertSongplaySQL,
			f.SongplayID, f.StartTime, f.UserID, f.Level,
			f.SongID, f.ArtistID, f.SessionID, f.Location, f.UserAgent,
		)
		if err != nil {
			return inserted, len(rows) - inserted, perr.FromPostgresf(err, "insert songplay %s", f.SongplayID)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}
	return inserted, len(rows) - inserted, nil
}

const songSelectSQL = `
	SELECT s.song_id, a.artist_id
	FROM songs s
	JOIN artists a ON s.artist_id = a.artist_id
	WHERE s.title = $1 AND a.name = $2 AND s.duration = $3
	LIMIT 1
`

// LookupSongArtist resolves the denormalized (title, artist name, duration)
// triple against the store. Duration matches by exact float equality as
// specified; see the service for the fragility warning. First match wins;
// no rows is a miss, not an error
func (r *queries) LookupSongArtist(
	ctx context.Context,
	title, artist string,
	duration float64,
) (*string, *string, error) {
	var songID, artistID string
	err := r.q.QueryRow(ctx, songSelectSQL, title, artist, duration).Scan(&songID, &artistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, perr.FromPostgresf(err, "lookup song %q by %q", title, artist)
	}
	return &songID, &artistID, nil
}
