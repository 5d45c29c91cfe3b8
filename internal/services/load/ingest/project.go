package ingest

import (
	"github.com/go-playground/validator/v10"

	"spindle/internal/core/sanitize"
	"spindle/internal/services/load/domain"
)

// validate is shared; struct rules live on the domain types
var validate = validator.New()

var songFields = []string{"SongID", "Title", "ArtistID", "Year", "Duration"}

// ProjectSongs applies the songs null policy: drop when any of the five
// projected fields is missing. Returns validated rows and the drop count
func ProjectSongs(recs []domain.CatalogRecord) ([]domain.SongRecord, int) {
	out := make([]domain.SongRecord, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		if err := validate.StructPartial(rec, songFields...); err != nil {
			dropped++
			continue
		}
		out = append(out, domain.SongRecord{
			SongID:   *rec.SongID,
			Title:    sanitize.Clean(*rec.Title),
			ArtistID: *rec.ArtistID,
			Year:     *rec.Year,
			Duration: *rec.Duration,
		})
	}
	return out, dropped
}

var artistFields = []string{"ArtistID", "ArtistName", "ArtistLocation"}

// ProjectArtists applies the artists null policy: empty string counts as
// missing on {artist_id, name, location}; latitude/longitude pass through
// unvalidated and may remain nil
func ProjectArtists(recs []domain.CatalogRecord) ([]domain.ArtistRecord, int) {
	out := make([]domain.ArtistRecord, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		rec.ArtistID = blankToNil(rec.ArtistID)
		rec.ArtistName = blankToNil(rec.ArtistName)
		rec.ArtistLocation = blankToNil(rec.ArtistLocation)
		if err := validate.StructPartial(rec, artistFields...); err != nil {
			dropped++
			continue
		}
		out = append(out, domain.ArtistRecord{
			ArtistID:  *rec.ArtistID,
			Name:      sanitize.Clean(*rec.ArtistName),
			Location:  sanitize.Clean(*rec.ArtistLocation),
			Latitude:  rec.ArtistLatitude,
			Longitude: rec.ArtistLongitude,
		})
	}
	return out, dropped
}

var userFields = []string{"UserID", "FirstName", "LastName", "Gender", "Level"}

// ProjectUsers applies the users null policy, then deduplicates by exact row
// equality preserving first-seen order. A user whose level changed across
// events keeps both rows: level is not a mutable attribute of one identity
func ProjectUsers(events []domain.ActivityEvent) ([]domain.UserRecord, int) {
	out := make([]domain.UserRecord, 0, len(events))
	seen := make(map[domain.UserRecord]struct{}, len(events))
	dropped := 0
	for _, ev := range events {
		if err := validate.StructPartial(ev, userFields...); err != nil {
			dropped++
			continue
		}
		row := domain.UserRecord{
			UserID:    *ev.UserID,
			FirstName: sanitize.Clean(*ev.FirstName),
			LastName:  sanitize.Clean(*ev.LastName),
			Gender:    *ev.Gender,
			Level:     *ev.Level,
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	return out, dropped
}

// CompleteEvent reports whether every field of the event is present. This is
// the songplays null-drop and the only fact gate; the time dimension gates on
// page instead
func CompleteEvent(ev domain.ActivityEvent) bool {
	return validate.Struct(ev) == nil
}

func blankToNil(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}
