package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestActivityCalendarEmptyUser(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)

	r := e.GetUserActivityCalendar(context.Background(), "", 2023, time.April)
	if r.Value == nil || len(r.Value) != 0 || r.Attempted() {
		t.Fatalf("expected empty unattempted result, got %+v", r)
	}
	if len(b.Calls()) != 0 {
		t.Fatalf("expected no calls, got %v", b.Calls())
	}
}

func TestActivityCalendarInvalidMonth(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)

	for _, m := range []time.Month{0, 13} {
		if r := e.GetUserActivityCalendar(context.Background(), "u1", 2023, m); r.Attempted() {
			t.Fatalf("month %d should be rejected", m)
		}
	}
	if len(b.Calls()) != 0 {
		t.Fatalf("expected no calls, got %v", b.Calls())
	}
}

func TestActivityCalendarCachesPerMonth(t *testing.T) {
	b := newFakeBackend()
	b.activity["u1"] = []DailyActivityRecord{
		{Date: date(2023, 3, 31), TasksCompleted: 1, GoalReached: true},
		{Date: date(2023, 4, 1), TasksCompleted: 2, GoalReached: true},
		{Date: date(2023, 4, 30), TasksCompleted: 1, GoalReached: false},
		{Date: date(2023, 5, 1), TasksCompleted: 3, GoalReached: true},
	}
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	april := e.GetUserActivityCalendar(ctx, "u1", 2023, time.April)
	if april.Source != SourceStore {
		t.Fatalf("expected store source, got %v", april.Source)
	}
	if len(april.Value) != 2 {
		t.Fatalf("expected 2 April records, got %+v", april.Value)
	}
	from, to := b.lastRange[0], b.lastRange[1]
	if !from.Equal(date(2023, 4, 1)) || !to.Equal(date(2023, 4, 30)) {
		t.Fatalf("unexpected range %v..%v", from, to)
	}

	again := e.GetUserActivityCalendar(ctx, "u1", 2023, time.April)
	if again.Source != SourceCache || len(again.Value) != 2 {
		t.Fatalf("expected cached April, got %+v", again)
	}
	if n := b.count("activity_range"); n != 1 {
		t.Fatalf("expected a single fetch for April, got %d", n)
	}

	may := e.GetUserActivityCalendar(ctx, "u1", 2023, time.May)
	if may.Source != SourceStore || len(may.Value) != 1 {
		t.Fatalf("expected fresh fetch for May, got %+v", may)
	}
	if n := b.count("activity_range"); n != 2 {
		t.Fatalf("expected May to miss, got %d fetches", n)
	}

	other := e.GetUserActivityCalendar(ctx, "u1", 2024, time.April)
	if other.Source == SourceCache {
		t.Fatal("a different year must not share the April cache entry")
	}
}

func TestActivityCalendarLeapFebruary(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)
	e.GetUserActivityCalendar(context.Background(), "u1", 2024, time.February)
	if !b.lastRange[1].Equal(date(2024, 2, 29)) {
		t.Fatalf("expected range to end on Feb 29, got %v", b.lastRange[1])
	}
}

func TestActivityCalendarEmptyMonthIsCached(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	r := e.GetUserActivityCalendar(ctx, "u1", 2023, time.June)
	if r.Value == nil || len(r.Value) != 0 || !r.Found() {
		t.Fatalf("expected empty found list, got %+v", r)
	}
	e.GetUserActivityCalendar(ctx, "u1", 2023, time.June)
	if n := b.count("activity_range"); n != 1 {
		t.Fatalf("empty month should be cached, got %d fetches", n)
	}
}

func TestActivityCalendarFailure(t *testing.T) {
	b := newFakeBackend()
	b.activityErr = errors.New("timeout")
	e, _ := newTestEngine(t, b)

	r := e.GetUserActivityCalendar(context.Background(), "u1", 2023, time.April)
	if r.Source != SourceFailed || r.Value == nil || len(r.Value) != 0 {
		t.Fatalf("expected failed empty result, got %+v", r)
	}
}

func TestActivityCalendarTTL(t *testing.T) {
	b := newFakeBackend()
	e, fc := newTestEngine(t, b, WithTTLs(0, time.Minute, 0))
	ctx := context.Background()

	e.GetUserActivityCalendar(ctx, "u1", 2023, time.April)
	fc.Advance(time.Minute)
	e.GetUserActivityCalendar(ctx, "u1", 2023, time.April)
	if n := b.count("activity_range"); n != 2 {
		t.Fatalf("expected refetch after custom ttl, got %d", n)
	}
}
