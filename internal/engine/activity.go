package engine

import (
	"context"
	"time"
)

// GetUserActivityCalendar returns the user's daily activity records for one
// calendar month. Each (user, year, month) is cached independently.
func (e *Engine) GetUserActivityCalendar(ctx context.Context, userID string, year int, month time.Month) Result[[]DailyActivityRecord] {
	if userID == "" || month < time.January || month > time.December {
		return Result[[]DailyActivityRecord]{Value: []DailyActivityRecord{}, Source: SourceNone}
	}

	key := activityKey(userID, year, month)
	if recs, ok := e.activity.Get(key); ok {
		return Result[[]DailyActivityRecord]{Value: cloneRecords(recs), Source: SourceCache}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	v, err := e.do(key, func() (any, error) {
		recs, err := e.backend.ActivityRange(ctx, userID, first, last)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []DailyActivityRecord{}
		}
		e.activity.Set(key, recs)
		return recs, nil
	})
	if err != nil {
		e.logger.Warn("activity calendar fetch failed", "op", "get_user_activity_calendar",
			"user_id", userID, "year", year, "month", int(month), "error", err)
		return Result[[]DailyActivityRecord]{Value: []DailyActivityRecord{}, Source: SourceFailed, Err: err}
	}
	return Result[[]DailyActivityRecord]{Value: cloneRecords(v.([]DailyActivityRecord)), Source: SourceStore}
}

func cloneRecords(recs []DailyActivityRecord) []DailyActivityRecord {
	return append(make([]DailyActivityRecord, 0, len(recs)), recs...)
}
