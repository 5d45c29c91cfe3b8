package domain

import (
	"context"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, songDir, logDir string) (RunStats, error)
}

// StorageRepo is the storage repository interface. Insert methods return
// (inserted, deduped) where deduped counts rows the store already had
type StorageRepo interface {
	InsertSongs(ctx context.Context, rows []SongRecord) (inserted, deduped int, err error)
	InsertArtists(ctx context.Context, rows []ArtistRecord) (inserted, deduped int, err error)
	InsertTimeRows(ctx context.Context, rows []TimeRow) (inserted, deduped int, err error)
	InsertUsers(ctx context.Context, rows []UserRecord) (inserted, deduped int, err error)
	InsertSongplays(ctx context.Context, rows []SongplayFact) (inserted, deduped int, err error)

	// LookupSongArtist resolves (title, artist name, duration) to identifiers.
	// A miss returns (nil, nil, nil): expected, not an error
	LookupSongArtist(ctx context.Context, title, artist string, duration float64) (songID, artistID *string, err error)
}

// CatalogReader streams catalog records from one whole-document file
type CatalogReader interface {
	Next() (CatalogRecord, error) // io.EOF when done
	Close() error
}

// EventReader streams activity events from one line-delimited file
type EventReader interface {
	Next() (ActivityEvent, error) // io.EOF when done
	Close() error
	Stats() (records int, bytes int64)
}

// ReaderFactory opens readers for the two source shapes
type ReaderFactory interface {
	Catalog(path string) (CatalogReader, error)
	Events(path string) (EventReader, error)
}

// MirrorWriter receives songplay facts for the optional analytical mirror
type MirrorWriter interface {
	WriteSongplays(ctx context.Context, rows []SongplayFact) error
}
