package processor

import "time"

// weekOf returns the Monday-Sunday week enclosing t: start is Monday
// 00:00:00 and end is the following Sunday 23:59:59, in t's location.
// Total over any time value; never fails.
func weekOf(t time.Time) (start, end time.Time) {
	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7 // Sunday closes the week, it does not open one
	}
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	start = midnight.AddDate(0, 0, -(dow - 1))
	ey, em, ed := start.AddDate(0, 0, 6).Date()
	end = time.Date(ey, em, ed, 23, 59, 59, 0, t.Location())
	return start, end
}

// weekKey formats a week start as the stable bucket key. Lexicographic
// order on these keys equals chronological order.
func weekKey(start time.Time) string {
	return start.Format("2006-01-02")
}

// weekDateRange renders the human-readable label for a week.
func weekDateRange(start, end time.Time) string {
	return start.Format("2006-01-02") + " - " + end.Format("2006-01-02")
}

// timestampLayouts covers the formats observed in production uploads.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
