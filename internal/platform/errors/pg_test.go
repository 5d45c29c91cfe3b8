package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ColumnName:     col,
		ConstraintName: constraint,
	}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation -> invalid input
		{"23502", ErrorCodeValidation},      // not null
		{"23514", ErrorCodeValidation},      // check
		{"22001", ErrorCodeInvalidArgument}, // string truncation
		{"22P02", ErrorCodeInvalidArgument}, // invalid text representation
		{"40001", ErrorCodeDB},              // serialization failure (retryable) mapped to DB
		{"40P01", ErrorCodeDB},              // deadlock
		{"55P03", ErrorCodeDB},              // lock not available
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code, "", ""))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	// Non-pg error path
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgresVariants(t *testing.T) {
	// nil passthrough
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	if FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("FromPostgresf(nil) should be nil")
	}

	// mapped: check codes only (PgError string includes SQLSTATE formatting)
	err := FromPostgres(pg("23505", "", ""), "insert song")
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("FromPostgres map code = %v", CodeOf(err))
	}
	errf := FromPostgresf(pg("22P02", "", ""), "bad: %s", "duration")
	if CodeOf(errf) != ErrorCodeInvalidArgument {
		t.Fatalf("FromPostgresf code = %v, want %v", CodeOf(errf), ErrorCodeInvalidArgument)
	}

	// non-pg errors still come back classified as DB
	if got := CodeOf(FromPostgres(stderrs.New("conn reset"), "exec")); got != ErrorCodeDB {
		t.Fatalf("FromPostgres(foreign) code = %v, want DB", got)
	}
}

func TestExtractAndPredicateHelpers(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("outer: %w", pg("23505", "", "songs_pkey")), ErrorCodeDB, "insert")
	pgErr, ok := ExtractPgError(wrapped)
	if !ok || pgErr.Code != "23505" {
		t.Fatalf("ExtractPgError through wrapping failed")
	}
	if !IsDuplicateKey(wrapped) {
		t.Fatalf("IsDuplicateKey should see through wrapping")
	}
	if IsForeignKeyViolation(wrapped) || IsNotNullViolation(wrapped) {
		t.Fatalf("wrong predicate matched")
	}
	if IsDuplicateKey(stderrs.New("dup")) {
		t.Fatalf("foreign error must not match")
	}
}

func TestAttachFieldFromPg(t *testing.T) {
	// prefer ColumnName when present
	withCol := AttachFieldFromPg(Wrap(pg("23502", "title", ""), ErrorCodeValidation, "oops"))
	e, ok := As(withCol)
	if !ok || e.Field() != "title" {
		t.Fatalf("AttachFieldFromPg column name failed: %+v", e)
	}

	// fallback to last token of constraint
	wrapped := Wrap(pg("23505", "", "songs_song"), ErrorCodeDuplicateKey, "dup")
	withField := AttachFieldFromPg(wrapped)
	e2, ok := As(withField)
	if !ok || e2.Field() != "song" {
		t.Fatalf("AttachFieldFromPg constraint token failed: %+v", e2)
	}

	// constraint ending in "key" stays unchanged
	wrapped2 := Wrap(pg("23505", "", "songs_song_id_key"), ErrorCodeDuplicateKey, "dup")
	e3, _ := As(AttachFieldFromPg(wrapped2))
	if e3.Field() != "" {
		t.Fatalf("key suffix must not become a field, got %q", e3.Field())
	}

	// foreign error passes through
	plain := stderrs.New("nope")
	if AttachFieldFromPg(plain) != plain {
		t.Fatalf("foreign error must pass through unchanged")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
	if IsRetryable(context.Canceled) || IsRetryable(context.DeadlineExceeded) {
		t.Fatalf("local cancellation is not retryable")
	}
	if !IsRetryable(Wrap(pg("40001", "", ""), ErrorCodeDB, "tx")) {
		t.Fatalf("serialization failure should be retryable")
	}
	if !IsRetryable(Wrap(pg("40P01", "", ""), ErrorCodeDB, "tx")) {
		t.Fatalf("deadlock should be retryable")
	}
	if IsRetryable(Wrap(pg("23505", "", ""), ErrorCodeDuplicateKey, "dup")) {
		t.Fatalf("unique violation is not retryable")
	}
	if !IsRetryable(stderrs.New("commit unexpectedly resulted in rollback")) {
		t.Fatalf("commit-rollback text should be retryable")
	}
	if IsRetryable(stderrs.New("some other failure")) {
		t.Fatalf("arbitrary text should not be retryable")
	}
}
