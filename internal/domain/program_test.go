package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWorkoutSectionsFiltersAndSorts(t *testing.T) {
	rest := ProgramSection{ID: primitive.NewObjectID(), Name: "Rest", IsRestDay: true, Order: 1}
	first := ProgramSection{ID: primitive.NewObjectID(), Name: "Day 1", Order: 0}
	last := ProgramSection{ID: primitive.NewObjectID(), Name: "Day 3", Order: 2}

	// Deliberately out of order.
	p := WorkoutProgram{Sections: []ProgramSection{last, rest, first}}

	sections := p.WorkoutSections()
	assert.Len(t, sections, 2)
	assert.Equal(t, first.ID, sections[0].ID)
	assert.Equal(t, last.ID, sections[1].ID)
}

func TestSectionByID(t *testing.T) {
	sec := ProgramSection{ID: primitive.NewObjectID(), Name: "Day 1"}
	p := WorkoutProgram{Sections: []ProgramSection{sec}}

	found, ok := p.SectionByID(sec.ID)
	assert.True(t, ok)
	assert.Equal(t, "Day 1", found.Name)

	_, ok = p.SectionByID(primitive.NewObjectID())
	assert.False(t, ok)
}

func TestSectionIDsIncludesRestDays(t *testing.T) {
	workout := ProgramSection{ID: primitive.NewObjectID(), Order: 0}
	rest := ProgramSection{ID: primitive.NewObjectID(), IsRestDay: true, Order: 1}
	p := WorkoutProgram{Sections: []ProgramSection{workout, rest}}

	ids := p.SectionIDs()
	assert.ElementsMatch(t, []primitive.ObjectID{workout.ID, rest.ID}, ids)
}
