package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.Format(dateLayout) }

type calendarExport struct {
	ExportedAt string    `json:"exported_at"`
	User       string    `json:"user"`
	Month      string    `json:"month"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date           string `json:"date"`
	TasksCompleted int    `json:"tasks_completed"`
	GoalReached    bool   `json:"goal_reached"`
}

type achievementsExport struct {
	ExportedAt   string            `json:"exported_at"`
	User         string            `json:"user"`
	Count        int               `json:"count"`
	Unlocked     int               `json:"unlocked"`
	Achievements []jsonAchievement `json:"achievements"`
}

type jsonAchievement struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category"`
	Unlocked      bool   `json:"unlocked"`
	UnlockedAt    string `json:"unlocked_at,omitempty"`
	RequiredValue *int   `json:"required_value,omitempty"`
	CurrentValue  *int   `json:"current_value,omitempty"`
	Reward        string `json:"reward,omitempty"`
}

// CalendarJSON writes a month of daily activity for userID to path.
// month is the first day of the exported month.
func CalendarJSON(userID string, month time.Time, records []engine.DailyActivityRecord, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCalendarJSON(w, userID, month, records)
	})
}

func WriteCalendarJSON(w io.Writer, userID string, month time.Time, records []engine.DailyActivityRecord) error {
	export := calendarExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		User:       userID,
		Month:      month.Format("2006-01"),
		Count:      len(records),
		Days:       []jsonDay{},
	}
	for _, r := range records {
		export.Days = append(export.Days, jsonDay{
			Date:           formatDate(r.Date),
			TasksCompleted: r.TasksCompleted,
			GoalReached:    r.GoalReached,
		})
	}
	return encode(w, export)
}

// AchievementsJSON writes the user's achievement list to path.
func AchievementsJSON(userID string, list []engine.Achievement, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteAchievementsJSON(w, userID, list)
	})
}

func WriteAchievementsJSON(w io.Writer, userID string, list []engine.Achievement) error {
	export := achievementsExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		User:         userID,
		Count:        len(list),
		Achievements: []jsonAchievement{},
	}
	for _, a := range list {
		ja := jsonAchievement{
			ID:            a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Category:      string(a.Category),
			Unlocked:      a.IsUnlocked,
			RequiredValue: a.RequiredValue,
			CurrentValue:  a.CurrentValue,
			Reward:        a.Reward,
		}
		if a.UnlockedAt != nil {
			ja.UnlockedAt = a.UnlockedAt.UTC().Format(time.RFC3339)
		}
		if a.IsUnlocked {
			export.Unlocked++
		}
		export.Achievements = append(export.Achievements, ja)
	}
	return encode(w, export)
}

func encode(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
