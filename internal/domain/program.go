package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Focus categorizes what a program trains.
type Focus string

const (
	FocusStrength    Focus = "strength"
	FocusCardio      Focus = "cardio"
	FocusFlexibility Focus = "flexibility"
)

// ValidFocus reports whether f is one of the enumerated focus values.
func ValidFocus(f Focus) bool {
	switch f {
	case FocusStrength, FocusCardio, FocusFlexibility:
		return true
	}
	return false
}

// WorkoutProgram is a trainer- or system-authored workout plan composed of
// ordered sections. The scheduling core only ever reads programs; all
// mutation happens through trainer CRUD.
type WorkoutProgram struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrainerID       *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"` // nil = system default program
	Name            string              `bson:"name" json:"name"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	Focus           []Focus             `bson:"focus" json:"focus"`
	Difficulty      string              `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "beginner", "intermediate", "advanced"
	WeeklyFrequency int                 `bson:"weeklyFrequency" json:"weeklyFrequency"`           // target workout days per week
	SessionLength   int                 `bson:"sessionLength,omitempty" json:"sessionLength,omitempty"` // minutes per session
	IsDeleted       bool                `bson:"isDeleted" json:"-"`
	Sections        []ProgramSection    `bson:"sections" json:"sections"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ProgramSection is a single scheduled unit within a program ("Day 1"),
// either a workout day with exercises or a rest day.
type ProgramSection struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`                     // e.g. "Day 1"
	Type      string             `bson:"type,omitempty" json:"type,omitempty"` // e.g. "Upper Body"
	IsRestDay bool               `bson:"isRestDay" json:"isRestDay"`
	Order     int                `bson:"order" json:"order"` // iteration order for slot distribution
	Exercises []Exercise         `bson:"exercises" json:"exercises"`
}

// Exercise belongs to one section and carries its ordered sets.
type Exercise struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Order int                `bson:"order" json:"order"`
	Sets  []ExerciseSet      `bson:"sets" json:"sets"`
}

// ExerciseSet is one set within an exercise. Exactly one of Reps or
// TimeSeconds is populated depending on the exercise type.
type ExerciseSet struct {
	SetNumber   int  `bson:"setNumber" json:"setNumber"`
	Reps        *int `bson:"reps,omitempty" json:"reps,omitempty"`
	TimeSeconds *int `bson:"timeSeconds,omitempty" json:"timeSeconds,omitempty"`
	RestSeconds int  `bson:"restSeconds" json:"restSeconds"`
}

// WorkoutSections returns the program's non-rest sections sorted by Order.
func (p *WorkoutProgram) WorkoutSections() []ProgramSection {
	sections := make([]ProgramSection, 0, len(p.Sections))
	for _, s := range p.Sections {
		if !s.IsRestDay {
			sections = append(sections, s)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	return sections
}

// SectionIDs returns the ids of every section in the program, rest days included.
func (p *WorkoutProgram) SectionIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(p.Sections))
	for _, s := range p.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

// SectionByID looks up a section within the program.
func (p *WorkoutProgram) SectionByID(id primitive.ObjectID) (*ProgramSection, bool) {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i], true
		}
	}
	return nil, false
}
