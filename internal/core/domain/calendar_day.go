package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCalendarDay = errors.New("invalid date (expected YYYY-MM-DD or ISO-8601 timestamp)")
)

const CalendarDayLayout = "2006-01-02"

// fallbackLayouts are tried when the input does not start with a YYYY-MM-DD prefix.
var fallbackLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006",
}

// CalendarDay identifies a civil date with no time-of-day and no zone.
// The zero value is not a valid day.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

func NewCalendarDay(year int, month time.Month, day int) CalendarDay {
	return CalendarDayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// CalendarDayOf takes the civil date of t in t's own location.
func CalendarDayOf(t time.Time) CalendarDay {
	y, m, d := t.Date()
	return CalendarDay{Year: y, Month: m, Day: d}
}

// ParseCalendarDay normalizes a raw date representation to a CalendarDay.
// Timestamps keep the date they were written with: the offset is not applied.
func ParseCalendarDay(raw string) (CalendarDay, error) {
	s := strings.TrimSpace(raw)

	if len(s) >= len(CalendarDayLayout) {
		prefix := s[:len(CalendarDayLayout)]
		rest := s[len(CalendarDayLayout):]
		if rest == "" || rest[0] == 'T' || rest[0] == 't' || rest[0] == ' ' {
			t, err := time.Parse(CalendarDayLayout, prefix)
			if err == nil {
				return CalendarDayOf(t), nil
			}
		}
	}

	// JS Date.toString() appends the zone name, e.g. "(Central European Standard Time)".
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CalendarDayOf(t), nil
		}
	}

	return CalendarDay{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDay, raw)
}

func MustParseCalendarDay(raw string) CalendarDay {
	d, err := ParseCalendarDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d CalendarDay) IsZero() bool {
	return d == CalendarDay{}
}

func (d CalendarDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d CalendarDay) AddDays(n int) CalendarDay {
	return CalendarDayOf(d.Time().AddDate(0, 0, n))
}

func (d CalendarDay) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d CalendarDay) Before(other CalendarDay) bool {
	return d.Compare(other) < 0
}

func (d CalendarDay) After(other CalendarDay) bool {
	return d.Compare(other) > 0
}

func (d CalendarDay) Compare(other CalendarDay) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// DaysSince returns the signed number of days from other to d.
func (d CalendarDay) DaysSince(other CalendarDay) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CalendarDay) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDay) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendarDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
