package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSchedule = errors.New("invalid schedule")
)

const DaysPerWeek = 7

// InvalidScheduleError reports a schedule that is not exactly seven booleans.
type InvalidScheduleError struct {
	Length int
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("schedule must be an array of %d boolean values, got %d", DaysPerWeek, e.Length)
}

func (e *InvalidScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

// ScheduleMask marks the weekdays a habit is expected on.
// Index 0 is Sunday, index 6 is Saturday, matching time.Weekday.
type ScheduleMask [DaysPerWeek]bool

// EveryDay is the mask with all seven weekdays active.
var EveryDay = ScheduleMask{true, true, true, true, true, true, true}

func NewScheduleMask(days []bool) (ScheduleMask, error) {
	var mask ScheduleMask
	if len(days) != DaysPerWeek {
		return mask, &InvalidScheduleError{Length: len(days)}
	}
	copy(mask[:], days)
	return mask, nil
}

// ScheduleFromWeekdays builds a mask from weekday numbers (0=Sunday..6=Saturday).
func ScheduleFromWeekdays(days ...time.Weekday) (ScheduleMask, error) {
	var mask ScheduleMask
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return ScheduleMask{}, fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidSchedule, d)
		}
		mask[d] = true
	}
	return mask, nil
}

// ParseScheduleMask reads the compact "0111110" form, Sunday first.
func ParseScheduleMask(s string) (ScheduleMask, error) {
	var mask ScheduleMask
	if len(s) != DaysPerWeek {
		return mask, &InvalidScheduleError{Length: len(s)}
	}
	for i, c := range s {
		switch c {
		case '1', 'x', 'X', 't', 'T':
			mask[i] = true
		case '0', '-', '.', 'f', 'F':
		default:
			return ScheduleMask{}, fmt.Errorf("%w: unexpected character %q at position %d", ErrInvalidSchedule, c, i)
		}
	}
	return mask, nil
}

func (m ScheduleMask) IsActive(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return m[day]
}

func (m ScheduleMask) ActiveDays() int {
	n := 0
	for _, active := range m {
		if active {
			n++
		}
	}
	return n
}

func (m ScheduleMask) IsEmpty() bool {
	return m.ActiveDays() == 0
}

func (m ScheduleMask) Slice() []bool {
	out := make([]bool, DaysPerWeek)
	copy(out, m[:])
	return out
}

func (m ScheduleMask) String() string {
	b := make([]byte, DaysPerWeek)
	for i, active := range m {
		if active {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}
