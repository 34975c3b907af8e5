package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday is a Monday-first day of the week. It is a distinct type so that
// the weekly schedule can be indexed structurally instead of through an
// open string-keyed map.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists all seven weekdays in canonical monday-first order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// String returns the lowercase English weekday name used on the wire.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday parses a lowercase English weekday name.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if s == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday name %q", s)
}

// WeekdayOf converts a calendar date to its Monday-first weekday.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday is Sunday-first (Sunday=0).
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// WeeklySchedule maps each of the seven weekdays to the ordered list of
// section ids scheduled that day. An empty list means rest. The struct shape
// guarantees the seven-keys invariant; callers never see a missing weekday.
type WeeklySchedule struct {
	Monday    []primitive.ObjectID `bson:"monday" json:"monday"`
	Tuesday   []primitive.ObjectID `bson:"tuesday" json:"tuesday"`
	Wednesday []primitive.ObjectID `bson:"wednesday" json:"wednesday"`
	Thursday  []primitive.ObjectID `bson:"thursday" json:"thursday"`
	Friday    []primitive.ObjectID `bson:"friday" json:"friday"`
	Saturday  []primitive.ObjectID `bson:"saturday" json:"saturday"`
	Sunday    []primitive.ObjectID `bson:"sunday" json:"sunday"`
}

// NewWeeklySchedule returns a schedule with all seven slots present and empty.
func NewWeeklySchedule() WeeklySchedule {
	var w WeeklySchedule
	w.Normalize()
	return w
}

func (w *WeeklySchedule) slot(d Weekday) *[]primitive.ObjectID {
	switch d {
	case Monday:
		return &w.Monday
	case Tuesday:
		return &w.Tuesday
	case Wednesday:
		return &w.Wednesday
	case Thursday:
		return &w.Thursday
	case Friday:
		return &w.Friday
	case Saturday:
		return &w.Saturday
	default:
		return &w.Sunday
	}
}

// Slot returns the section ids scheduled on d.
func (w *WeeklySchedule) Slot(d Weekday) []primitive.ObjectID {
	return *w.slot(d)
}

// SetSlot replaces the section ids scheduled on d.
func (w *WeeklySchedule) SetSlot(d Weekday, ids []primitive.ObjectID) {
	*w.slot(d) = ids
}

// Append concatenates ids onto d's slot, preserving existing entries.
func (w *WeeklySchedule) Append(d Weekday, ids ...primitive.ObjectID) {
	s := w.slot(d)
	*s = append(*s, ids...)
}

// RemoveSections drops every occurrence of the given section ids from all
// seven slots. Used when a program is detached from a schedule.
func (w *WeeklySchedule) RemoveSections(ids []primitive.ObjectID) {
	drop := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	for _, d := range Weekdays {
		s := w.slot(d)
		kept := make([]primitive.ObjectID, 0, len(*s))
		for _, id := range *s {
			if _, gone := drop[id]; !gone {
				kept = append(kept, id)
			}
		}
		*s = kept
	}
}

// Normalize replaces nil slots with empty lists so every weekday serializes
// as [] rather than null.
func (w *WeeklySchedule) Normalize() {
	for _, d := range Weekdays {
		s := w.slot(d)
		if *s == nil {
			*s = []primitive.ObjectID{}
		}
	}
}

// UserSchedule is a user's weekly workout commitment. At most one schedule
// per user is active at a time; deactivated schedules are kept as history
// and never reused.
type UserSchedule struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID   `bson:"userId" json:"userId"`
	StartDate      time.Time            `bson:"startDate" json:"startDate"` // anchor for weekday-to-date projection
	WeeklySchedule WeeklySchedule       `bson:"weeklySchedule" json:"weeklySchedule"`
	IsActive       bool                 `bson:"isActive" json:"isActive"`
	ProgramIDs     []primitive.ObjectID `bson:"programIds" json:"programIds"` // programs currently contributing sections
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasProgram reports whether the program is attached to this schedule.
func (s *UserSchedule) HasProgram(programID primitive.ObjectID) bool {
	for _, id := range s.ProgramIDs {
		if id == programID {
			return true
		}
	}
	return false
}

// DetachProgram removes the program id from the schedule's program set.
func (s *UserSchedule) DetachProgram(programID primitive.ObjectID) {
	kept := make([]primitive.ObjectID, 0, len(s.ProgramIDs))
	for _, id := range s.ProgramIDs {
		if id != programID {
			kept = append(kept, id)
		}
	}
	s.ProgramIDs = kept
}
