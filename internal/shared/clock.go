package shared

import "time"

// DateLayout is the date-only format used for invoice issue and due dates.
const DateLayout = "2006-01-02"

// NowStamp returns the current UTC time in the timestamp format persisted
// on records.
func NowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Today returns the current UTC date in DateLayout.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// DaysFromToday returns the UTC date n days from now in DateLayout.
func DaysFromToday(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format(DateLayout)
}
