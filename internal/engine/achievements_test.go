package engine

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"
)

func ids(list []Achievement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

// ============================================================
// GetUserAchievements
// ============================================================

func TestAchievementsEmptyUser(t *testing.T) {
	b := newAggBackend()
	e, _ := newTestEngine(t, b)
	r := e.GetUserAchievements(context.Background(), "", AchievementQuery{})
	if r.Attempted() || len(r.Value) != 0 || len(b.Calls()) != 0 {
		t.Fatalf("expected rejected request, got %+v calls=%v", r, b.Calls())
	}
}

func TestAchievementsFallbackCatalog(t *testing.T) {
	b := newFakeBackend()
	unlockedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	b.unlocks["u1"] = map[string]time.Time{"first_task": unlockedAt}
	b.progress["u1"] = &Progress{TasksCompleted: 4, MaxStreak: 2}
	e, _ := newTestEngine(t, b)

	r := e.GetUserAchievements(context.Background(), "u1", AchievementQuery{})
	if r.Source != SourceFallback {
		t.Fatalf("expected fallback, got %v", r.Source)
	}
	if len(r.Value) != len(DefaultCatalog()) {
		t.Fatalf("expected full catalog, got %d", len(r.Value))
	}

	byID := make(map[string]Achievement)
	for _, a := range r.Value {
		byID[a.ID] = a
	}
	first := byID["first_task"]
	if !first.IsUnlocked || first.UnlockedAt == nil || !first.UnlockedAt.Equal(unlockedAt) {
		t.Fatalf("first_task should be unlocked at %v, got %+v", unlockedAt, first)
	}
	if byID["tasks_10"].IsUnlocked {
		t.Fatal("tasks_10 should be locked")
	}
	if cv := byID["tasks_10"].CurrentValue; cv == nil || *cv != 4 {
		t.Fatalf("expected tasks progress 4, got %v", cv)
	}
	if cv := byID["streak_7"].CurrentValue; cv == nil || *cv != 2 {
		t.Fatalf("expected streak progress 2, got %v", cv)
	}
}

func TestAchievementsCustomCatalog(t *testing.T) {
	b := newFakeBackend()
	cat := StaticCatalog{{ID: "only", Name: "Only", Category: CategoryGoals}}
	e, _ := newTestEngine(t, b, WithCatalog(cat))

	r := e.GetUserAchievements(context.Background(), "u1", AchievementQuery{})
	if got := ids(r.Value); !reflect.DeepEqual(got, []string{"only"}) {
		t.Fatalf("expected custom catalog, got %v", got)
	}
}

func TestAchievementsPreferAggregate(t *testing.T) {
	b := newAggBackend()
	b.achievements = []Achievement{
		{ID: "a", Category: CategoryTasks, IsUnlocked: true},
		{ID: "b", Category: CategoryStreaks},
	}
	e, _ := newTestEngine(t, b)

	r := e.GetUserAchievements(context.Background(), "u1", AchievementQuery{})
	if r.Source != SourceAggregate || !reflect.DeepEqual(ids(r.Value), []string{"a", "b"}) {
		t.Fatalf("expected aggregate list, got %v %v", r.Source, ids(r.Value))
	}
	if b.count("list_unlocks") != 0 {
		t.Fatal("catalog fallback should not run when the aggregate succeeds")
	}
}

func TestAchievementsAggregateFailureFallsBack(t *testing.T) {
	b := newAggBackend()
	b.achievementErr = ErrUnavailable
	e, _ := newTestEngine(t, b)

	r := e.GetUserAchievements(context.Background(), "u1", AchievementQuery{})
	if r.Source != SourceFallback {
		t.Fatalf("expected fallback, got %v", r.Source)
	}
	calls := b.Calls()
	if calls[0] != "achievement_page" || calls[1] != "list_unlocks" {
		t.Fatalf("expected aggregate then fallback, got %v", calls)
	}
}

func TestAchievementsCachedPerUserAcrossQueries(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	e.GetUserAchievements(ctx, "u1", AchievementQuery{})
	before := len(b.Calls())

	streaks := e.GetUserAchievements(ctx, "u1", AchievementQuery{Category: CategoryStreaks})
	if streaks.Source != SourceCache {
		t.Fatalf("category filter should be served from cache, got %v", streaks.Source)
	}
	for _, a := range streaks.Value {
		if a.Category != CategoryStreaks {
			t.Fatalf("unexpected category %s", a.Category)
		}
	}
	if len(streaks.Value) != 3 {
		t.Fatalf("expected 3 streak achievements, got %d", len(streaks.Value))
	}

	e.GetUserAchievements(ctx, "u1", AchievementQuery{Page: 2, PageSize: 3})
	if len(b.Calls()) != before {
		t.Fatalf("paging should not reach the backend, calls=%v", b.Calls())
	}
}

func TestAchievementsFailure(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b, WithCatalog(failingCatalog{}))

	r := e.GetUserAchievements(context.Background(), "u1", AchievementQuery{})
	if r.Source != SourceFailed || r.Value == nil || len(r.Value) != 0 {
		t.Fatalf("expected failed empty result, got %+v", r)
	}
}

type failingCatalog struct{}

func (failingCatalog) Achievements(context.Context) ([]Achievement, error) {
	return nil, errors.New("catalog offline")
}

// ============================================================
// Page
// ============================================================

func TestPage(t *testing.T) {
	list := DefaultCatalog()
	all := []Achievement(list)

	tests := []struct {
		name string
		q    AchievementQuery
		want int
	}{
		{"everything", AchievementQuery{}, len(all)},
		{"first page", AchievementQuery{Page: 1, PageSize: 4}, 4},
		{"last partial page", AchievementQuery{Page: 3, PageSize: 4}, len(all) - 8},
		{"past the end", AchievementQuery{Page: 10, PageSize: 4}, 0},
		{"page zero is first", AchievementQuery{Page: 0, PageSize: 2}, 2},
		{"category", AchievementQuery{Category: CategoryTasks}, 4},
		{"category paged", AchievementQuery{Category: CategoryTasks, Page: 2, PageSize: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(all, tt.q)
			if got == nil || len(got) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(got))
			}
		})
	}

	first := Page(all, AchievementQuery{Page: 1, PageSize: 2})
	second := Page(all, AchievementQuery{Page: 2, PageSize: 2})
	if first[0].ID != all[0].ID || second[0].ID != all[2].ID {
		t.Fatalf("pages out of order: %v %v", ids(first), ids(second))
	}
}

// ============================================================
// HasAchievement / UnlockAchievement
// ============================================================

func TestHasAchievementCacheFirst(t *testing.T) {
	b := newFakeBackend()
	b.unlocks["u1"] = map[string]time.Time{"streak_3": testNow}
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	e.GetUserAchievements(ctx, "u1", AchievementQuery{})
	if !e.HasAchievement(ctx, "u1", "streak_3") {
		t.Fatal("expected streak_3 unlocked")
	}
	if e.HasAchievement(ctx, "u1", "streak_30") {
		t.Fatal("expected streak_30 locked")
	}
	if e.HasAchievement(ctx, "u1", "no_such") {
		t.Fatal("unknown id should be false")
	}
	if b.count("has_unlock") != 0 {
		t.Fatalf("cached set should answer, calls=%v", b.Calls())
	}
}

func TestHasAchievementDirectLookupOnMiss(t *testing.T) {
	b := newFakeBackend()
	b.unlocks["u1"] = map[string]time.Time{"streak_3": testNow}
	e, _ := newTestEngine(t, b)

	if !e.HasAchievement(context.Background(), "u1", "streak_3") {
		t.Fatal("expected unlocked")
	}
	if got := b.Calls(); !reflect.DeepEqual(got, []string{"has_unlock"}) {
		t.Fatalf("expected one direct lookup and no list, got %v", got)
	}
}

func TestHasAchievementError(t *testing.T) {
	b := newFakeBackend()
	b.hasErr = errors.New("boom")
	e, _ := newTestEngine(t, b)
	if e.HasAchievement(context.Background(), "u1", "x") {
		t.Fatal("lookup failure should report false")
	}
	if e.HasAchievement(context.Background(), "", "x") {
		t.Fatal("empty user should report false")
	}
}

func TestUnlockAchievementIdempotent(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	if !e.UnlockAchievement(ctx, "u1", "streak_7") {
		t.Fatal("first unlock should succeed")
	}
	if !e.UnlockAchievement(ctx, "u1", "streak_7") {
		t.Fatal("second unlock should also succeed")
	}
	if n := b.count("insert_unlock"); n != 1 {
		t.Fatalf("expected exactly one insert, got %d", n)
	}
	if at := b.unlocks["u1"]["streak_7"]; !at.Equal(testNow) {
		t.Fatalf("unlock should be stamped with the current time, got %v", at)
	}
}

func TestUnlockAchievementInvalidatesCache(t *testing.T) {
	b := newFakeBackend()
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	e.GetUserAchievements(ctx, "u1", AchievementQuery{})
	if e.HasAchievement(ctx, "u1", "goal_first") {
		t.Fatal("should start locked")
	}
	e.UnlockAchievement(ctx, "u1", "goal_first")

	r := e.GetUserAchievements(ctx, "u1", AchievementQuery{Category: CategoryGoals})
	if r.Source == SourceCache {
		t.Fatal("unlock should have invalidated the achievement cache")
	}
	if !e.HasAchievement(ctx, "u1", "goal_first") {
		t.Fatal("next read should reflect the unlock")
	}
}

func TestUnlockAchievementFailure(t *testing.T) {
	b := newFakeBackend()
	b.insertErr = errors.New("disk full")
	e, _ := newTestEngine(t, b)
	if e.UnlockAchievement(context.Background(), "u1", "x") {
		t.Fatal("insert failure should report false")
	}

	b2 := newFakeBackend()
	b2.hasErr = errors.New("boom")
	e2, _ := newTestEngine(t, b2)
	if e2.UnlockAchievement(context.Background(), "u1", "x") {
		t.Fatal("lookup failure should report false")
	}
	if b2.count("insert_unlock") != 0 {
		t.Fatal("no insert after failed lookup")
	}

	if e2.UnlockAchievement(context.Background(), "", "x") || e2.UnlockAchievement(context.Background(), "u1", "") {
		t.Fatal("empty ids should report false")
	}
}

// ============================================================
// CheckMilestones
// ============================================================

func TestCheckMilestones(t *testing.T) {
	b := newFakeBackend()
	b.progress["u1"] = &Progress{TasksCompleted: 12, MaxStreak: 3, GoalsReached: 1, ActiveDays: 5}
	b.unlocks["u1"] = map[string]time.Time{"first_task": testNow}
	e, _ := newTestEngine(t, b)
	ctx := context.Background()

	got := e.CheckMilestones(ctx, "u1")
	sort.Strings(got)
	want := []string{"goal_first", "streak_3", "tasks_10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if again := e.CheckMilestones(ctx, "u1"); len(again) != 0 {
		t.Fatalf("second check should unlock nothing, got %v", again)
	}
	if n := b.count("insert_unlock"); n != 3 {
		t.Fatalf("expected 3 inserts total, got %d", n)
	}
}

// noProgressBackend reports no progress record at all.
type noProgressBackend struct{ *fakeBackend }

func (noProgressBackend) AchievementProgress(context.Context, string) (*Progress, error) {
	return nil, nil
}

func TestCheckMilestonesWithoutProgress(t *testing.T) {
	b := noProgressBackend{newFakeBackend()}
	e, _ := newTestEngine(t, b)

	if got := e.CheckMilestones(context.Background(), "u1"); len(got) != 0 {
		t.Fatalf("expected nothing unlocked, got %v", got)
	}
	if n := b.count("insert_unlock"); n != 0 {
		t.Fatalf("expected no inserts, got %d", n)
	}
}
