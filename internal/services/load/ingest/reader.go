package ingest

import (
	"bufio"
	"io"
	"os"

	"github.com/goccy/go-json"

	perr "spindle/internal/platform/errors"
	"spindle/internal/services/load/domain"
)

// maxLineSize bounds a single activity-log line
const maxLineSize = 4 * 1024 * 1024

type readerFactory struct{}

// NewReaderFactory returns the file-backed domain.ReaderFactory
func NewReaderFactory() domain.ReaderFactory { return readerFactory{} }

func (readerFactory) Catalog(path string) (domain.CatalogReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open catalog file %q", path)
	}
	return &catalogReader{f: f, path: path}, nil
}

func (readerFactory) Events(path string) (domain.EventReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open log file %q", path)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &eventReader{f: f, sc: sc, path: path}, nil
}

// catalogReader yields the file's single JSON document, then io.EOF
type catalogReader struct {
	f    *os.File
	path string
	done bool
}

func (r *catalogReader) Next() (domain.CatalogRecord, error) {
	if r.done {
		return domain.CatalogRecord{}, io.EOF
	}
	r.done = true

	raw, err := io.ReadAll(r.f)
	if err != nil {
		return domain.CatalogRecord{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read catalog file %q", r.path)
	}
	var rec domain.CatalogRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CatalogRecord{}, perr.Wrapf(err, perr.ErrorCodeJSON, "parse catalog file %q", r.path)
	}
	return rec, nil
}

func (r *catalogReader) Close() error { return r.f.Close() }

// eventReader yields one event per non-empty line. A malformed line fails the
// whole file: no partial recovery, matching the strict source behavior
type eventReader struct {
	f      *os.File
	sc     *bufio.Scanner
	path   string
	err    error
	events int
	bytes  int64
	lineNo int
}

func (r *eventReader) Next() (domain.ActivityEvent, error) {
	if r.err != nil {
		return domain.ActivityEvent{}, r.err
	}
	for {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				r.err = perr.Wrapf(err, perr.ErrorCodeUnknown, "read log file %q", r.path)
				return domain.ActivityEvent{}, r.err
			}
			r.err = io.EOF
			return domain.ActivityEvent{}, io.EOF
		}
		r.lineNo++
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev domain.ActivityEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			r.err = perr.Wrapf(err, perr.ErrorCodeJSON, "parse log file %q line %d", r.path, r.lineNo)
			return domain.ActivityEvent{}, r.err
		}
		r.events++
		r.bytes += int64(len(line) + 1) // include newline
		return ev, nil
	}
}

func (r *eventReader) Close() error { return r.f.Close() }

// Stats returns events parsed and bytes consumed so far
func (r *eventReader) Stats() (int, int64) { return r.events, r.bytes }
