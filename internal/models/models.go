package models

import (
	"fmt"
	"time"

	"hkn-admin/internal/rooms"
)

type Slot struct {
	ID   int `db:"id"`
	Hour int `db:"hour"`
	Wday int `db:"wday"`
	Room int `db:"room"`
}

func (s Slot) RoomName() string {
	name, err := rooms.Name(s.Room)
	if err != nil {
		return fmt.Sprintf("room %d", s.Room)
	}
	return name
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s %d:00", s.RoomName(), WdayName(s.Wday), s.Hour)
}

// NewSlot carries the fields an administrator supplies for a Slot. Nil
// fields are reported as blank by validation.
type NewSlot struct {
	Hour *int `json:"hour" validate:"required"`
	Wday *int `json:"wday" validate:"required,oneof=1 2 3 4 5"`
	Room *int `json:"room" validate:"required,room"`
}

// SlotParams builds a NewSlot with every field set.
func SlotParams(hour, wday, room int) NewSlot {
	return NewSlot{Hour: &hour, Wday: &wday, Room: &room}
}

// Slot returns the record described by ns. Absent fields are left zero.
func (ns NewSlot) Slot() Slot {
	var s Slot
	if ns.Hour != nil {
		s.Hour = *ns.Hour
	}
	if ns.Wday != nil {
		s.Wday = *ns.Wday
	}
	if ns.Room != nil {
		s.Room = *ns.Room
	}
	return s
}

type Availability struct {
	ID         int    `db:"id"`
	TutorID    int    `db:"tutor_id"`
	Hour       int    `db:"hour"`
	Wday       int    `db:"wday"`
	Semester   string `db:"semester"`
	Preference int    `db:"preference"`
}

type Tutor struct {
	ID        int    `db:"id"`
	PersonID  int    `db:"person_id"`
	Name      string `db:"name"`
	Languages string `db:"languages"`
}

type Course struct {
	ID     int    `db:"id"`
	Dept   string `db:"dept"`
	Number string `db:"number"`
	Name   string `db:"name"`
}

func (c Course) String() string {
	return c.Dept + " " + c.Number
}

type Klass struct {
	ID         int    `db:"id"`
	CourseID   int    `db:"course_id"`
	Semester   string `db:"semester"`
	Section    string `db:"section"`
	Instructor string `db:"instructor"`
}

type SurveyStatus int

const (
	SurveyOpen SurveyStatus = iota
	SurveyScheduled
	SurveyDone
)

func (s SurveyStatus) String() string {
	switch s {
	case SurveyOpen:
		return "open"
	case SurveyScheduled:
		return "scheduled"
	case SurveyDone:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Coursesurvey struct {
	ID           int          `db:"id"`
	KlassID      int          `db:"klass_id"`
	MaxSurveyors int          `db:"max_surveyors"`
	Status       SurveyStatus `db:"status"`
	ScheduledAt  *time.Time   `db:"scheduled_at"`
}

// UpdateCoursesurvey defines what may be changed on an existing Coursesurvey.
type UpdateCoursesurvey struct {
	MaxSurveyors *int       `json:"max_surveyors" validate:"omitempty,min=0"`
	Status       *int       `json:"status" validate:"omitempty,oneof=0 1 2"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// ClassSurvey pairs a current-semester klass with its survey, if any.
type ClassSurvey struct {
	Klass  Klass
	Course Course
	Survey *Coursesurvey
}

// Property is the single row of administrator-editable settings.
type Property struct {
	Semester            string `db:"semester"`
	TutoringStart       int    `db:"tutoring_start"`
	TutoringEnd         int    `db:"tutoring_end"`
	CoursesurveysActive bool   `db:"coursesurveys_active"`
}

var wdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func WdayName(wday int) string {
	if wday < 0 || wday >= len(wdayNames) {
		return fmt.Sprintf("day %d", wday)
	}
	return wdayNames[wday]
}

// NewTutor contains information needed to create a new Tutor.
type NewTutor struct {
	PersonID  int    `json:"person_id" validate:"min=0"`
	Name      string `json:"name" validate:"required"`
	Languages string `json:"languages"`
}

// NewAvailability contains information needed to declare a tutor's free
// hour. An empty Semester means the active one.
type NewAvailability struct {
	TutorID    *int   `json:"tutor_id" validate:"required"`
	Hour       *int   `json:"hour" validate:"required,min=0,max=23"`
	Wday       *int   `json:"wday" validate:"required,oneof=1 2 3 4 5"`
	Semester   string `json:"semester" validate:"omitempty,numeric,len=5"`
	Preference int    `json:"preference" validate:"min=0,max=3"`
}

// NewClass describes a course offering to register for the active semester.
type NewClass struct {
	Dept       string `json:"dept" validate:"required,alpha"`
	Number     string `json:"number" validate:"required,alphanum"`
	Name       string `json:"name"`
	Section    string `json:"section"`
	Instructor string `json:"instructor"`
}

// UpdateProperty defines which administrator settings may be changed.
type UpdateProperty struct {
	Semester            *string `json:"semester" validate:"omitempty,numeric,len=5"`
	TutoringStart       *int    `json:"tutoring_start" validate:"omitempty,min=0,max=23"`
	TutoringEnd         *int    `json:"tutoring_end" validate:"omitempty,min=1,max=24"`
	CoursesurveysActive *bool   `json:"coursesurveys_active"`
}
