package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrNoteTooLong        = errors.New("note is too long (max 1000 chars)")
	ErrUnauthorized       = errors.New("unauthorized access to resource")
)

const (
	MaxNameLen = 100
	MaxDescLen = 500
	MaxNoteLen = 1000
)

type Habit struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Schedule       ScheduleMask      `json:"schedule"`
	CompletedDates []string          `json:"completed_dates"`
	Pinned         bool              `json:"pinned"`
	Notes          map[string]string `json:"notes,omitempty"`
	CurrentStreak  int               `json:"current_streak"`
	BestStreak     int               `json:"best_streak"`
	Version        int               `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
}

func validateNameAndDesc(name, desc string) (string, string, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return "", "", ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(cleanName) > MaxNameLen {
		return "", "", ErrHabitNameTooLong
	}

	cleanDesc := strings.TrimSpace(desc)
	if utf8.RuneCountInString(cleanDesc) > MaxDescLen {
		return "", "", ErrHabitDescTooLong
	}

	return cleanName, cleanDesc, nil
}

func NewHabit(userID, name, description string, schedule ScheduleMask) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, cleanDesc, err := validateNameAndDesc(name, description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           cleanName,
		Description:    cleanDesc,
		Schedule:       schedule,
		CompletedDates: []string{},
		Notes:          map[string]string{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (h *Habit) Update(name, description string, schedule ScheduleMask, pinned bool) error {
	cleanName, cleanDesc, err := validateNameAndDesc(name, description)
	if err != nil {
		return err
	}

	h.Name = cleanName
	h.Description = cleanDesc
	h.Schedule = schedule
	h.Pinned = pinned
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// CompletedSet normalizes the stored completion log.
// Entries that do not parse as a date are returned in rejected.
func (h *Habit) CompletedSet() (CompletedDateSet, []string) {
	return NewCompletedDateSet(h.CompletedDates)
}

// SetCompletion marks day as done or not done and reports whether anything changed.
func (h *Habit) SetCompletion(day CalendarDay, completed bool) bool {
	set, _ := h.CompletedSet()

	var changed bool
	if completed {
		changed = set.Add(day)
	} else {
		changed = set.Remove(day)
	}

	if !changed {
		return false
	}

	h.CompletedDates = set.Strings()
	h.UpdatedAt = time.Now().UTC()
	return true
}

// ToggleCompletion flips day and returns its new state.
func (h *Habit) ToggleCompletion(day CalendarDay) bool {
	set, _ := h.CompletedSet()
	completed := !set.Contains(day)
	h.SetCompletion(day, completed)
	return completed
}

// NormalizeCompletedDates rewrites the log in canonical form, dropping
// duplicates and unparseable entries.
func (h *Habit) NormalizeCompletedDates() []string {
	set, rejected := h.CompletedSet()
	h.CompletedDates = set.Strings()
	return rejected
}

func (h *Habit) SetNote(day CalendarDay, text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxNoteLen {
		return ErrNoteTooLong
	}

	if h.Notes == nil {
		h.Notes = make(map[string]string)
	}

	key := day.String()
	if text == "" {
		delete(h.Notes, key)
	} else {
		h.Notes[key] = text
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) UpdateStreak(current, best int) {
	h.CurrentStreak = current
	h.BestStreak = best
}

// Clone returns a deep copy that shares no slices or maps with h.
func (h *Habit) Clone() *Habit {
	c := *h
	c.CompletedDates = append([]string(nil), h.CompletedDates...)
	if c.CompletedDates == nil {
		c.CompletedDates = []string{}
	}
	c.Notes = make(map[string]string, len(h.Notes))
	for k, v := range h.Notes {
		c.Notes[k] = v
	}
	if h.DeletedAt != nil {
		t := *h.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
