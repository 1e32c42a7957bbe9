package store

import (
	"database/sql"
	"time"
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func parseNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
