package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func sampleCalendar() []engine.DailyActivityRecord {
	return []engine.DailyActivityRecord{
		{Date: day(1), TasksCompleted: 3, GoalReached: true},
		{Date: day(2), TasksCompleted: 1, GoalReached: false},
		{Date: day(5), TasksCompleted: 2, GoalReached: true},
	}
}

func intPtr(n int) *int { return &n }

func sampleAchievements() []engine.Achievement {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return []engine.Achievement{
		{ID: "first_task", Name: "First Step", Category: engine.CategoryTasks, IsUnlocked: true, UnlockedAt: &at,
			RequiredValue: intPtr(1), CurrentValue: intPtr(6)},
		{ID: "streak_30", Name: "Monthly Master", Category: engine.CategoryStreaks,
			RequiredValue: intPtr(30), CurrentValue: intPtr(2), Reward: "Gold flame"},
		{ID: "secret", Name: "Secret", Category: engine.CategoryDedication},
	}
}

// ============================================================
// CSV
// ============================================================

func TestCalendarCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := CalendarCSV(sampleCalendar(), path); err != nil {
		t.Fatalf("CalendarCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"Date", "Tasks Completed", "Goal Reached"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "2026-03-01" || row[1] != "3" || row[2] != "true" {
		t.Fatalf("unexpected first row %v", row)
	}
	if records[2][2] != "false" {
		t.Fatalf("goal not reached should be false, got %q", records[2][2])
	}
}

func TestCalendarCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCalendarCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestCalendarCSVBadPath(t *testing.T) {
	if err := CalendarCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestCalendarJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.json")
	if err := CalendarJSON("u1", day(1), sampleCalendar(), path); err != nil {
		t.Fatalf("CalendarJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result calendarExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.User != "u1" || result.Month != "2026-03" {
		t.Fatalf("unexpected header %+v", result)
	}
	if result.Count != 3 || len(result.Days) != 3 {
		t.Fatalf("count = %d, days = %d, want 3", result.Count, len(result.Days))
	}
	if result.Days[2].Date != "2026-03-05" || result.Days[2].TasksCompleted != 2 || !result.Days[2].GoalReached {
		t.Fatalf("unexpected last day %+v", result.Days[2])
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
}

func TestCalendarJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCalendarJSON(&buf, "u1", day(1), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"days": []`) {
		t.Fatalf("empty month should encode as an empty array:\n%s", buf.String())
	}
}

func TestAchievementsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ach.json")
	if err := AchievementsJSON("u1", sampleAchievements(), path); err != nil {
		t.Fatalf("AchievementsJSON: %v", err)
	}

	data, _ := os.ReadFile(path)
	var result achievementsExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || result.Unlocked != 1 {
		t.Fatalf("count = %d, unlocked = %d", result.Count, result.Unlocked)
	}
	first := result.Achievements[0]
	if !first.Unlocked || first.UnlockedAt != "2026-03-02T08:00:00Z" {
		t.Fatalf("unexpected unlocked entry %+v", first)
	}
	if first.RequiredValue == nil || *first.RequiredValue != 1 || *first.CurrentValue != 6 {
		t.Fatalf("progress lost %+v", first)
	}
	if result.Achievements[1].Reward != "Gold flame" || result.Achievements[1].UnlockedAt != "" {
		t.Fatalf("unexpected locked entry %+v", result.Achievements[1])
	}
	if strings.Contains(string(data), `"required_value": null`) {
		t.Fatal("absent thresholds should be omitted")
	}
}

func TestJSONBadPath(t *testing.T) {
	if err := CalendarJSON("u1", day(1), nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
	if err := AchievementsJSON("u1", nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestJSONPrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	WriteAchievementsJSON(&buf, "u1", sampleAchievements())

	// Pretty-printed JSON should contain newlines and indentation
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}
