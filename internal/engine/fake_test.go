package engine

import (
	"context"
	"sync"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// fakeBackend records every call in order. It has no optimized calls;
// wrap it in aggBackend for those.
type fakeBackend struct {
	mu sync.Mutex

	calls []string

	counters    map[string]*UserCounters
	activity    map[string][]DailyActivityRecord
	unlocks     map[string]map[string]time.Time
	progress    map[string]*Progress
	goals       map[string]int
	lastRange   [2]time.Time
	countersErr error
	activityErr error
	insertErr   error
	hasErr      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		counters: make(map[string]*UserCounters),
		activity: make(map[string][]DailyActivityRecord),
		unlocks:  make(map[string]map[string]time.Time),
		progress: make(map[string]*Progress),
		goals:    make(map[string]int),
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) UserCounters(_ context.Context, userID string) (*UserCounters, error) {
	f.record("user_counters")
	if f.countersErr != nil {
		return nil, f.countersErr
	}
	c, ok := f.counters[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeBackend) DailyActivity(_ context.Context, userID string, day time.Time) (*DailyActivityRecord, error) {
	f.record("daily_activity")
	for _, r := range f.activity[userID] {
		if r.Date.Equal(day) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) GoalReachedDates(_ context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	f.record("goal_reached_dates")
	var out []time.Time
	for _, r := range f.activity[userID] {
		if r.GoalReached && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r.Date)
		}
	}
	return out, nil
}

func (f *fakeBackend) ActivityRange(_ context.Context, userID string, from, to time.Time) ([]DailyActivityRecord, error) {
	f.record("activity_range")
	f.mu.Lock()
	f.lastRange = [2]time.Time{from, to}
	f.mu.Unlock()
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	var out []DailyActivityRecord
	for _, r := range f.activity[userID] {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) HasUnlock(_ context.Context, userID, achievementID string) (bool, error) {
	f.record("has_unlock")
	if f.hasErr != nil {
		return false, f.hasErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.unlocks[userID][achievementID]
	return ok, nil
}

func (f *fakeBackend) InsertUnlock(_ context.Context, userID, achievementID string, at time.Time) error {
	f.record("insert_unlock")
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unlocks[userID] == nil {
		f.unlocks[userID] = make(map[string]time.Time)
	}
	f.unlocks[userID][achievementID] = at
	return nil
}

func (f *fakeBackend) ListUnlocks(_ context.Context, userID string) (map[string]time.Time, error) {
	f.record("list_unlocks")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]time.Time)
	for k, v := range f.unlocks[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) SetDailyGoal(_ context.Context, userID string, goal int) error {
	f.record("set_daily_goal")
	f.mu.Lock()
	f.goals[userID] = goal
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) AchievementProgress(_ context.Context, userID string) (*Progress, error) {
	f.record("achievement_progress")
	if p, ok := f.progress[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return &Progress{}, nil
}

// aggBackend adds the optimized calls to a fakeBackend.
type aggBackend struct {
	*fakeBackend

	aggregate      map[string]*StreakAggregate
	aggErr         error
	achievements   []Achievement
	achievementErr error
}

func newAggBackend() *aggBackend {
	return &aggBackend{fakeBackend: newFakeBackend(), aggregate: make(map[string]*StreakAggregate)}
}

func (a *aggBackend) StreakAggregate(_ context.Context, userID string, _ time.Time) (*StreakAggregate, error) {
	a.record("streak_aggregate")
	if a.aggErr != nil {
		return nil, a.aggErr
	}
	if s, ok := a.aggregate[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return &StreakAggregate{DailyGoal: 1}, nil
}

func (a *aggBackend) AchievementPage(_ context.Context, _ string, _ AchievementQuery) ([]Achievement, error) {
	a.record("achievement_page")
	if a.achievementErr != nil {
		return nil, a.achievementErr
	}
	return append([]Achievement(nil), a.achievements...), nil
}
