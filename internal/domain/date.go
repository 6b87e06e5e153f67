package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 representation used for storage, identity and JSON.
const DateFormat = "2006-01-02"

// readFormats are tried in order when parsing dates coming from uploads.
var readFormats = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/1/2",
	"1/2/2006",
	"01-02-06",
	"20060102",
}

// maxSerial is the spreadsheet serial of 9999-12-31.
const maxSerial = 2958465

// Year bounds of a storable date.
const (
	MinYear = 1
	MaxYear = 9999
)

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date is a calendar date without time of day.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y: y, m: m, d: d}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// InRange reports whether the year of d lies within MinYear..MaxYear.
func (d Date) InRange() bool { return d.y >= MinYear && d.y <= MaxYear }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int { return d.Time().Compare(x.Time()) }

// AddDate adds years, months and days and normalizes the result.
func (d Date) AddDate(years, months, days int) Date {
	return NewDate(d.y+years, d.m+time.Month(months), d.d+days)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time().Format(DateFormat) }

// ParseDate parses a date. It accepts ISO dates with or without a time part,
// the usual spreadsheet renderings and spreadsheet serial day numbers.
func ParseDate(str string) (Date, error) {
	s := strings.TrimSpace(str)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	for _, layout := range readFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial <= maxSerial {
		return DateOf(excelEpoch.AddDate(0, 0, int(serial))), nil
	}

	return Date{}, fmt.Errorf("invalid date %q want format %q", s, DateFormat)
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON reads a date from a JSON string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the date as a JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
