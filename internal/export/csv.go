package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/streakr/internal/engine"
)

// CalendarCSV writes a month of daily activity to path.
func CalendarCSV(records []engine.DailyActivityRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCalendarCSV(f, records)
}

// WriteCalendarCSV writes one row per record, oldest first as given.
func WriteCalendarCSV(out io.Writer, records []engine.DailyActivityRecord) error {
	w := csv.NewWriter(out)

	// Header
	if err := w.Write([]string{"Date", "Tasks Completed", "Goal Reached"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			formatDate(r.Date),
			strconv.Itoa(r.TasksCompleted),
			strconv.FormatBool(r.GoalReached),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
