package dedup

import "time"

// dateLayout accepts DD/MM/YYYY with or without leading zeros.
const dateLayout = "2/1/2006"

// ParseDate reads a stored DD/MM/YYYY value. Empty, malformed or impossible
// dates report ok=false instead of an error. Surrounding whitespace makes a
// value malformed.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
