package domain

import (
	"sort"
	"time"
)

// CompletedDateSet holds each completed civil date once.
type CompletedDateSet map[CalendarDay]struct{}

// NewCompletedDateSet normalizes raw date strings into a set.
// Entries that cannot be parsed are returned in rejected and left out of the set.
func NewCompletedDateSet(raw []string) (set CompletedDateSet, rejected []string) {
	set = make(CompletedDateSet, len(raw))
	for _, r := range raw {
		day, err := ParseCalendarDay(r)
		if err != nil {
			rejected = append(rejected, r)
			continue
		}
		set[day] = struct{}{}
	}
	return set, rejected
}

func CompletedDateSetOf(days ...CalendarDay) CompletedDateSet {
	set := make(CompletedDateSet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

func CompletedDateSetFromTimes(times ...time.Time) CompletedDateSet {
	set := make(CompletedDateSet, len(times))
	for _, t := range times {
		set[CalendarDayOf(t)] = struct{}{}
	}
	return set
}

func (s CompletedDateSet) Contains(day CalendarDay) bool {
	_, ok := s[day]
	return ok
}

// Add reports whether day was not already present.
func (s CompletedDateSet) Add(day CalendarDay) bool {
	if s.Contains(day) {
		return false
	}
	s[day] = struct{}{}
	return true
}

// Remove reports whether day was present.
func (s CompletedDateSet) Remove(day CalendarDay) bool {
	if !s.Contains(day) {
		return false
	}
	delete(s, day)
	return true
}

func (s CompletedDateSet) Len() int {
	return len(s)
}

// Sorted returns the days in ascending order.
func (s CompletedDateSet) Sorted() []CalendarDay {
	days := make([]CalendarDay, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// Bounds returns the earliest and latest day. ok is false for an empty set.
func (s CompletedDateSet) Bounds() (first, last CalendarDay, ok bool) {
	for d := range s {
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last, ok
}

// Strings renders the set as sorted YYYY-MM-DD strings.
func (s CompletedDateSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}
