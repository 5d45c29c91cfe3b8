package ingest

import (
	"testing"

	"spindle/internal/services/load/domain"
)

func sp(s string) *string   { return &s }
func ip(i int) *int         { return &i }
func i64p(i int64) *int64   { return &i }
func fp(f float64) *float64 { return &f }

func fullCatalogRecord() domain.CatalogRecord {
	return domain.CatalogRecord{
		NumSongs:        ip(1),
		SongID:          sp("SOUPIRU12A6D4FA1E1"),
		Title:           sp("Der Kleine Dompfaff"),
		ArtistID:        sp("ARJIE2Y1187B994AB7"),
		Year:            ip(0),
		Duration:        fp(152.92036),
		ArtistName:      sp("Line Renaud"),
		ArtistLocation:  sp("Paris, France"),
		ArtistLatitude:  nil,
		ArtistLongitude: nil,
	}
}

func TestProjectSongs(t *testing.T) {
	noTitle := fullCatalogRecord()
	noTitle.Title = nil
	noDuration := fullCatalogRecord()
	noDuration.Duration = nil
	noName := fullCatalogRecord()
	noName.ArtistName = nil // outside the songs projection

	rows, dropped := ProjectSongs([]domain.CatalogRecord{
		fullCatalogRecord(), noTitle, noDuration, noName,
	})
	if len(rows) != 2 || dropped != 2 {
		t.Fatalf("ProjectSongs = %d rows, %d dropped; want 2, 2", len(rows), dropped)
	}
	if rows[0].SongID != "SOUPIRU12A6D4FA1E1" || rows[0].Year != 0 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[0].Duration != 152.92036 {
		t.Fatalf("duration = %v, want 152.92036", rows[0].Duration)
	}
}

func TestProjectSongsYearZeroSurvives(t *testing.T) {
	rec := fullCatalogRecord()
	rec.Year = ip(0)
	rows, dropped := ProjectSongs([]domain.CatalogRecord{rec})
	if len(rows) != 1 || dropped != 0 {
		t.Fatalf("year 0 must not be treated as missing: %d rows, %d dropped", len(rows), dropped)
	}
}

func TestProjectArtists(t *testing.T) {
	ok := fullCatalogRecord()
	emptyLoc := fullCatalogRecord()
	emptyLoc.ArtistLocation = sp("")
	nilName := fullCatalogRecord()
	nilName.ArtistName = nil

	rows, dropped := ProjectArtists([]domain.CatalogRecord{ok, emptyLoc, nilName})
	if len(rows) != 1 || dropped != 2 {
		t.Fatalf("ProjectArtists = %d rows, %d dropped; want 1, 2", len(rows), dropped)
	}
	if rows[0].ArtistID != "ARJIE2Y1187B994AB7" || rows[0].Name != "Line Renaud" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].Latitude != nil || rows[0].Longitude != nil {
		t.Fatalf("nil coordinates must pass through as nil")
	}
}

func TestProjectArtistsCoordinatesPassThrough(t *testing.T) {
	rec := fullCatalogRecord()
	rec.ArtistLatitude = fp(48.8566)
	rec.ArtistLongitude = fp(2.3522)

	rows, dropped := ProjectArtists([]domain.CatalogRecord{rec})
	if len(rows) != 1 || dropped != 0 {
		t.Fatalf("ProjectArtists = %d rows, %d dropped; want 1, 0", len(rows), dropped)
	}
	if rows[0].Latitude == nil || *rows[0].Latitude != 48.8566 {
		t.Fatalf("latitude = %v", rows[0].Latitude)
	}
}

func fullEvent() domain.ActivityEvent {
	return domain.ActivityEvent{
		Artist:    sp("Line Renaud"),
		FirstName: sp("Lily"),
		Gender:    sp("F"),
		LastName:  sp("Koch"),
		Length:    fp(152.92036),
		Level:     sp("paid"),
		Location:  sp("Chicago-Naperville-Elgin, IL-IN-WI"),
		Page:      sp("NextSong"),
		SessionID: ip(818),
		Song:      sp("Der Kleine Dompfaff"),
		TS:        i64p(1542837407796),
		UserAgent: sp("Mozilla/5.0"),
		UserID:    sp("15"),
	}
}

func TestProjectUsersDedupes(t *testing.T) {
	a := fullEvent()
	b := fullEvent() // identical row, different play
	b.TS = i64p(1542837500000)
	b.Song = sp("Another Song")
	missing := fullEvent()
	missing.Gender = nil

	rows, dropped := ProjectUsers([]domain.ActivityEvent{a, b, missing})
	if len(rows) != 1 || dropped != 1 {
		t.Fatalf("ProjectUsers = %d rows, %d dropped; want 1, 1", len(rows), dropped)
	}
	if rows[0].UserID != "15" || rows[0].Level != "paid" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestProjectUsersLevelChangeKeepsBothRows(t *testing.T) {
	free := fullEvent()
	free.Level = sp("free")
	paid := fullEvent()
	paid.Level = sp("paid")

	rows, dropped := ProjectUsers([]domain.ActivityEvent{free, paid, free})
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (one per level)", len(rows))
	}
	// first-seen order preserved
	if rows[0].Level != "free" || rows[1].Level != "paid" {
		t.Fatalf("order not preserved: %+v", rows)
	}
}

func TestCompleteEvent(t *testing.T) {
	if !CompleteEvent(fullEvent()) {
		t.Fatalf("fully populated event must be complete")
	}

	fields := []func(*domain.ActivityEvent){
		func(e *domain.ActivityEvent) { e.Artist = nil },
		func(e *domain.ActivityEvent) { e.Length = nil },
		func(e *domain.ActivityEvent) { e.UserAgent = nil },
		func(e *domain.ActivityEvent) { e.TS = nil },
	}
	for i, clear := range fields {
		ev := fullEvent()
		clear(&ev)
		if CompleteEvent(ev) {
			t.Fatalf("case %d: event with a nil field must be incomplete", i)
		}
	}
}
