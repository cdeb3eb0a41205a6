package repository

import (
	"os"
	"strconv"
	"time"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fixed nanosecond width keeps stored timestamps in lexicographic order,
// which the date range filters rely on. RFC3339Nano would drop trailing
// zeros and break that within a second.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func timeToString(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

func optionalTimeToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeToString(*t)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
