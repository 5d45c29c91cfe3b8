package ingest

import (
	"time"

	"spindle/internal/services/load/domain"
)

// DecomposeTime filters events to page == "NextSong" and decomposes each ts
// into the time dimension's derived attributes. Identical timestamps across
// different events each yield their own row. Events with a nil ts cannot be
// decomposed and are counted as dropped
func DecomposeTime(events []domain.ActivityEvent) ([]domain.TimeRow, int) {
	out := make([]domain.TimeRow, 0, len(events))
	dropped := 0
	for _, ev := range events {
		if !ev.IsNextSong() {
			continue
		}
		if ev.TS == nil {
			dropped++
			continue
		}
		out = append(out, DecomposeEpochMS(*ev.TS))
	}
	return out, dropped
}

// DecomposeEpochMS decodes an epoch-millisecond timestamp as UTC and derives
// the calendar attributes. Weekday is Monday=0 through Sunday=6 (ISO weekday
// minus one); epoch 0 is Thursday 1970-01-01 and decomposes to weekday 3.
// Week is the ISO-8601 week number, which near year boundaries can belong to
// the adjacent year's ISO year
func DecomposeEpochMS(ms int64) domain.TimeRow {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return domain.TimeRow{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}
