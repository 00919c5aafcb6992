package domain

import "time"

// TimeLayout fixed-width RFC3339 with milliseconds so stored timestamps
// sort lexicographically
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NowString current UTC time in TimeLayout
func NowString() string {
	return time.Now().UTC().Format(TimeLayout)
}
