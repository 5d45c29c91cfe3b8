// Package domain holds the core data structures and ports for the load pipeline
package domain

import "time"

// PageNextSong is the activity page value that marks an actual song play
const PageNextSong = "NextSong"

// CatalogRecord is the raw shape of one whole-document catalog file: one song
// and its performing artist sharing a single JSON object. Pointer fields carry
// nullability; validate tags drive the per-table drop policies via
// StructPartial in the projector
type CatalogRecord struct {
	NumSongs        *int     `json:"num_songs"`
	SongID          *string  `json:"song_id" validate:"required"`
	Title           *string  `json:"title" validate:"required"`
	ArtistID        *string  `json:"artist_id" validate:"required"`
	Year            *int     `json:"year" validate:"required"`
	Duration        *float64 `json:"duration" validate:"required"`
	ArtistName      *string  `json:"artist_name" validate:"required"`
	ArtistLocation  *string  `json:"artist_location" validate:"required"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
}

// ActivityEvent is one newline-delimited JSON record from an activity log.
// All fields are nullable at the source; the full-struct validation pass is
// the songplays null-drop, partial passes cover users
type ActivityEvent struct {
	Artist    *string  `json:"artist" validate:"required"`
	FirstName *string  `json:"firstName" validate:"required"`
	Gender    *string  `json:"gender" validate:"required"`
	LastName  *string  `json:"lastName" validate:"required"`
	Length    *float64 `json:"length" validate:"required"`
	Level     *string  `json:"level" validate:"required"`
	Location  *string  `json:"location" validate:"required"`
	Page      *string  `json:"page" validate:"required"`
	SessionID *int     `json:"sessionId" validate:"required"`
	Song      *string  `json:"song" validate:"required"`
	TS        *int64   `json:"ts" validate:"required"`
	UserAgent *string  `json:"userAgent" validate:"required"`
	UserID    *string  `json:"userId" validate:"required"`
}

// IsNextSong reports whether the event is a song play
func (e ActivityEvent) IsNextSong() bool {
	return e.Page != nil && *e.Page == PageNextSong
}

// SongRecord is a validated row for the songs dimension
type SongRecord struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

// ArtistRecord is a validated row for the artists dimension.
// Latitude/longitude pass through unvalidated and may stay nil
type ArtistRecord struct {
	ArtistID  string
	Name      string
	Location  string
	Latitude  *float64
	Longitude *float64
}

// TimeRow is one decomposed timestamp for the time dimension.
// Weekday is Monday=0 (ISO weekday minus one); identical timestamps across
// events are not collapsed here
type TimeRow struct {
	StartTime time.Time
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// UserRecord is a validated, deduplicated row for the users dimension.
// Comparable on purpose: dedupe is exact row equality, so a level change for
// the same user yields two distinct rows
type UserRecord struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// SongplayFact is one fully-populated activity event with foreign keys into
// the dimensions.
// SongID/ArtistID stay nil on a resolver miss; SongplayID is stamped by the
// repo at insert time
type SongplayFact struct {
	SongplayID string
	StartTime  time.Time
	UserID     string
	Level      string
	SongID     *string
	ArtistID   *string
	SessionID  int
	Location   string
	UserAgent  string
}

// TableStats counts one table's load outcome
type TableStats struct {
	Table      string
	Read       int
	Dropped    int
	Inserted   int
	Deduped    int
	Resolved   int
	Unresolved int
}

// RunStats aggregates a whole pipeline run
type RunStats struct {
	CatalogFiles int
	LogFiles     int
	Events       int
	BytesRead    int64
	Tables       []TableStats
	CollectMS    int
	ReadMS       int
	DBMS         int
	ElapsedMS    int
}
