package schedule

import (
	"testing"
	"time"
)

func TestMatcherMatchesExactMinute(t *testing.T) {
	m := NewMatcher()
	// 2026-07-31 is a Friday; 12:30 matches "30 12 * * *".
	at := time.Date(2026, 7, 31, 12, 30, 0, 0, time.UTC)
	ok, err := m.Matches("30 12 * * *", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected the spec to match at exactly 12:30")
	}
}

func TestMatcherDoesNotMatchOtherMinute(t *testing.T) {
	m := NewMatcher()
	at := time.Date(2026, 7, 31, 12, 31, 0, 0, time.UTC)
	ok, err := m.Matches("30 12 * * *", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected the spec not to match at 12:31")
	}
}

func TestMatcherIgnoresSecondsWithinTheMinute(t *testing.T) {
	m := NewMatcher()
	at := time.Date(2026, 7, 31, 12, 30, 45, 0, time.UTC)
	ok, err := m.Matches("30 12 * * *", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("a match should be judged on the minute, regardless of seconds within it")
	}
}

func TestMatcherInvalidSpecReturnsError(t *testing.T) {
	m := NewMatcher()
	if _, err := m.Matches("not a cron spec", time.Now()); err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}

func TestMatcherCachesParsedSchedule(t *testing.T) {
	m := NewMatcher()
	at := time.Date(2026, 7, 31, 12, 30, 0, 0, time.UTC)
	if _, err := m.Matches("30 12 * * *", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.cache) != 1 {
		t.Fatalf("expected one cached schedule after the first match, got %d", len(m.cache))
	}
	sched := m.cache["30 12 * * *"]

	if _, err := m.Matches("30 12 * * *", at.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.cache["30 12 * * *"] != sched {
		t.Error("a repeated spec should reuse the cached schedule rather than reparsing")
	}
}

func TestMatcherDayOfWeekRestriction(t *testing.T) {
	m := NewMatcher()
	// 2026-07-31 is a Friday (weekday 5); restrict to Monday (1) only.
	at := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	ok, err := m.Matches("0 0 * * 1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("a Monday-only spec should not match a Friday")
	}
}
