package analytics

import (
	"math"
	"time"
)

// dateLayout is the canonical zero-padded ISO date format used everywhere
// inside the engine. All comparisons on Date values are plain string
// comparisons, which are only correct because the persistence adapter
// guarantees this exact layout.
const dateLayout = "2006-01-02"

// Date is a calendar date in zero-padded ISO yyyy-mm-dd form. The zero value
// ("") means the date could not be derived; records carrying a zero Date are
// excluded from window filtering rather than defaulted to today.
type Date string

// NewDate converts a time.Time to its calendar date. A zero time yields a
// zero Date.
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return ""
	}
	return Date(t.Format(dateLayout))
}

// ParseDate validates s as a zero-padded ISO date. It returns the zero Date
// when s is empty or malformed.
func ParseDate(s string) Date {
	if s == "" {
		return ""
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ""
	}
	return Date(s)
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d == ""
}

// Time converts the date back to a UTC midnight time.Time. The second return
// value is false for a zero or malformed date.
func (d Date) Time() (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Before reports whether d sorts before other. Lexicographic comparison on
// the canonical layout.
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d sorts after other.
func (d Date) After(other Date) bool {
	return d > other
}

// AddDays returns the date shifted by the given number of days. Zero dates
// stay zero.
func (d Date) AddDays(days int) Date {
	t, ok := d.Time()
	if !ok {
		return ""
	}
	return NewDate(t.AddDate(0, 0, days))
}

// String returns the ISO representation.
func (d Date) String() string {
	return string(d)
}

// defaultWindowDays is the divisor used for daily-revenue derivation when no
// explicit window is supplied.
const defaultWindowDays = 30

// Window is an inclusive [Start, End] date range. The zero value is the open
// window that passes every record through unchanged.
type Window struct {
	Start Date `json:"start_date,omitempty"`
	End   Date `json:"end_date,omitempty"`
}

// NewWindow builds a window from raw date strings, dropping malformed bounds.
func NewWindow(start, end string) Window {
	return Window{Start: ParseDate(start), End: ParseDate(end)}
}

// IsOpen reports whether the window has no bounds at all.
func (w Window) IsOpen() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether d falls inside the window. A zero date is never
// contained: records without a derivable canonical date are excluded from
// windowed computations.
func (w Window) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	if !w.Start.IsZero() && d.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && d.After(w.End) {
		return false
	}
	return true
}

// Days returns the window length in days used for daily-revenue derivation:
// ceil((end-start)/24h) clamped to at least 1, or 30 when the window is open
// or either bound is missing.
func (w Window) Days() int {
	start, okStart := w.Start.Time()
	end, okEnd := w.End.Time()
	if !okStart || !okEnd {
		return defaultWindowDays
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// DayWindow returns the single-day window covering d.
func DayWindow(d Date) Window {
	return Window{Start: d, End: d}
}
