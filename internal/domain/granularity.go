package domain

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the calendar window used to bucket transactions.
type Granularity int

const (
	Day Granularity = iota
	Month
	Quarter
	Year
)

// DefaultGranularity is used when a caller does not choose one.
const DefaultGranularity = Month

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity accepts the long names, their adjective forms and the
// single-letter resample codes D, M, Q and Y.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "d":
		return Day, nil
	case "month", "monthly", "m", "me", "ms":
		return Month, nil
	case "quarter", "quarterly", "q", "qe", "qs":
		return Quarter, nil
	case "year", "yearly", "annual", "y", "ye", "ys", "a":
		return Year, nil
	default:
		return Day, fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// StartOf returns the first day of the window containing d.
func (g Granularity) StartOf(d Date) Date {
	switch g {
	case Month:
		return NewDate(d.Year(), d.Month(), 1)
	case Quarter:
		first := (d.Month()-1)/3*3 + 1
		return NewDate(d.Year(), first, 1)
	case Year:
		return NewDate(d.Year(), time.January, 1)
	default:
		return d
	}
}

// Step moves d forward by n windows. d is expected to be a window start.
func (g Granularity) Step(d Date, n int) Date {
	switch g {
	case Month:
		return d.AddDate(0, n, 0)
	case Quarter:
		return d.AddDate(0, 3*n, 0)
	case Year:
		return d.AddDate(n, 0, 0)
	default:
		return d.AddDate(0, 0, n)
	}
}

// Ordinal is the number of whole windows between 1970-01-01 and the window
// containing d. It is monotonic and evenly spaced across window starts.
func (g Granularity) Ordinal(d Date) int64 {
	months := int64(d.Year()-1970)*12 + int64(d.Month()-1)
	switch g {
	case Month:
		return months
	case Quarter:
		return floorDiv(months, 3)
	case Year:
		return int64(d.Year() - 1970)
	default:
		return floorDiv(d.Time().Unix(), 86400)
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
