package ingest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	perr "spindle/internal/platform/errors"
	kit "spindle/internal/platform/testkit"
)

const catalogDoc = `{
	"num_songs": 1,
	"song_id": "SOUPIRU12A6D4FA1E1",
	"title": "Der Kleine Dompfaff",
	"artist_id": "ARJIE2Y1187B994AB7",
	"artist_name": "Line Renaud",
	"artist_location": "",
	"artist_latitude": null,
	"artist_longitude": null,
	"year": 0,
	"duration": 152.92036
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	kit.MustNoErr(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCatalogReaderSingleDoc(t *testing.T) {
	rf := NewReaderFactory()
	rd, err := rf.Catalog(writeFile(t, "song.json", catalogDoc))
	kit.MustNoErr(t, err)
	defer rd.Close()

	rec, err := rd.Next()
	kit.MustNoErr(t, err)
	if rec.SongID == nil || *rec.SongID != "SOUPIRU12A6D4FA1E1" {
		t.Fatalf("song_id = %v", rec.SongID)
	}
	if rec.Year == nil || *rec.Year != 0 {
		t.Fatalf("year zero must decode as present, got %v", rec.Year)
	}
	if rec.ArtistLocation == nil || *rec.ArtistLocation != "" {
		t.Fatalf("artist_location empty string must decode as present, got %v", rec.ArtistLocation)
	}
	if rec.ArtistLatitude != nil {
		t.Fatalf("artist_latitude null must decode as nil, got %v", *rec.ArtistLatitude)
	}

	if _, err := rd.Next(); err != io.EOF {
		t.Fatalf("second Next = %v, want io.EOF", err)
	}
}

func TestCatalogReaderMalformed(t *testing.T) {
	rf := NewReaderFactory()
	rd, err := rf.Catalog(writeFile(t, "bad.json", `{"song_id": `))
	kit.MustNoErr(t, err)
	defer rd.Close()

	_, err = rd.Next()
	kit.MustErr(t, err)
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("CodeOf = %v, want JSON", perr.CodeOf(err))
	}
}

func TestEventReaderSkipsBlankLines(t *testing.T) {
	body := `{"page":"NextSong","ts":1541107053796}` + "\n" +
		"\n" +
		`{"page":"Home","ts":1541107123456}` + "\n"
	rf := NewReaderFactory()
	rd, err := rf.Events(writeFile(t, "events.json", body))
	kit.MustNoErr(t, err)
	defer rd.Close()

	ev, err := rd.Next()
	kit.MustNoErr(t, err)
	if !ev.IsNextSong() {
		t.Fatalf("first event page = %v, want NextSong", ev.Page)
	}

	ev, err = rd.Next()
	kit.MustNoErr(t, err)
	if ev.IsNextSong() {
		t.Fatalf("second event should not be NextSong")
	}

	if _, err := rd.Next(); err != io.EOF {
		t.Fatalf("Next after last line = %v, want io.EOF", err)
	}

	events, bytes := rd.Stats()
	if events != 2 {
		t.Fatalf("Stats events = %d, want 2", events)
	}
	if bytes == 0 {
		t.Fatalf("Stats bytes = 0, want > 0")
	}
}

func TestEventReaderMalformedLineFailsFile(t *testing.T) {
	body := `{"page":"NextSong","ts":1}` + "\n" +
		"{not json}\n" +
		`{"page":"NextSong","ts":2}` + "\n"
	rf := NewReaderFactory()
	rd, err := rf.Events(writeFile(t, "events.json", body))
	kit.MustNoErr(t, err)
	defer rd.Close()

	_, err = rd.Next()
	kit.MustNoErr(t, err)

	_, err = rd.Next()
	kit.MustErr(t, err)
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("CodeOf = %v, want JSON", perr.CodeOf(err))
	}
	kit.MustContain(t, err.Error(), "line 2")

	// error is sticky; the valid third line stays unread
	if _, err2 := rd.Next(); err2 == nil || err2 == io.EOF {
		t.Fatalf("Next after failure = %v, want sticky error", err2)
	}
}

func TestEventReaderMissingFile(t *testing.T) {
	rf := NewReaderFactory()
	_, err := rf.Events(filepath.Join(t.TempDir(), "absent.json"))
	kit.MustErr(t, err)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("CodeOf = %v, want NotFound", perr.CodeOf(err))
	}
}
