package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/internal/validation"
	"hkn-admin/pkg/response"
)

type result struct {
	response.Response
	Data any `json:"data,omitempty"`
}

type slotView struct {
	ID       int    `json:"id"`
	Hour     int    `json:"hour"`
	Wday     int    `json:"wday"`
	Room     int    `json:"room"`
	RoomName string `json:"room_name"`
	Day      string `json:"day"`
}

func newSlotView(s models.Slot) slotView {
	return slotView{
		ID:       s.ID,
		Hour:     s.Hour,
		Wday:     s.Wday,
		Room:     s.Room,
		RoomName: s.RoomName(),
		Day:      models.WdayName(s.Wday),
	}
}

type blockView struct {
	Room     int    `json:"room"`
	RoomName string `json:"room_name"`
	Wday     int    `json:"wday"`
	Day      string `json:"day"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	SlotIDs  []int  `json:"slot_ids"`
}

func newBlockView(b models.Block) blockView {
	ids := make([]int, 0, len(b.Slots))
	for _, s := range b.Slots {
		ids = append(ids, s.ID)
	}
	return blockView{
		Room:     b.Room,
		RoomName: models.Slot{Room: b.Room}.RoomName(),
		Wday:     b.Wday,
		Day:      models.WdayName(b.Wday),
		Start:    b.Start,
		End:      b.End,
		SlotIDs:  ids,
	}
}

type tutorView struct {
	ID        int    `json:"id"`
	PersonID  int    `json:"person_id"`
	Name      string `json:"name"`
	Languages string `json:"languages,omitempty"`
}

func newTutorView(t models.Tutor) tutorView {
	return tutorView{ID: t.ID, PersonID: t.PersonID, Name: t.Name, Languages: t.Languages}
}

type availabilityView struct {
	ID         int    `json:"id"`
	TutorID    int    `json:"tutor_id"`
	Hour       int    `json:"hour"`
	Wday       int    `json:"wday"`
	Semester   string `json:"semester"`
	Preference int    `json:"preference"`
}

func newAvailabilityView(a models.Availability) availabilityView {
	return availabilityView{
		ID:         a.ID,
		TutorID:    a.TutorID,
		Hour:       a.Hour,
		Wday:       a.Wday,
		Semester:   a.Semester,
		Preference: a.Preference,
	}
}

type propertyView struct {
	Semester            string `json:"semester"`
	TutoringStart       int    `json:"tutoring_start"`
	TutoringEnd         int    `json:"tutoring_end"`
	CoursesurveysActive bool   `json:"coursesurveys_active"`
}

func newPropertyView(p models.Property) propertyView {
	return propertyView{
		Semester:            p.Semester,
		TutoringStart:       p.TutoringStart,
		TutoringEnd:         p.TutoringEnd,
		CoursesurveysActive: p.CoursesurveysActive,
	}
}

type surveyView struct {
	ID           int        `json:"id"`
	KlassID      int        `json:"klass_id"`
	MaxSurveyors int        `json:"max_surveyors"`
	Status       string     `json:"status"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
}

func newSurveyView(s *models.Coursesurvey) *surveyView {
	if s == nil {
		return nil
	}
	return &surveyView{
		ID:           s.ID,
		KlassID:      s.KlassID,
		MaxSurveyors: s.MaxSurveyors,
		Status:       s.Status.String(),
		ScheduledAt:  s.ScheduledAt,
	}
}

type classView struct {
	ID         int         `json:"id"`
	Course     string      `json:"course"`
	Name       string      `json:"name,omitempty"`
	Section    string      `json:"section,omitempty"`
	Instructor string      `json:"instructor,omitempty"`
	Survey     *surveyView `json:"survey,omitempty"`
}

// emit prints v as JSON in -json mode and through text otherwise.
func (cli *commandLine) emit(v any, text func(w io.Writer)) error {
	if cli.json {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result{Data: v})
	}

	text(cli.out)
	return nil
}

func (cli *commandLine) emitSlots(slots []models.Slot) error {
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, newSlotView(s))
	}

	return cli.emit(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tROOM\tDAY\tHOUR")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d:00\n", v.ID, v.RoomName, v.Day, v.Hour)
		}
		_ = tw.Flush()
	})
}

func (cli *commandLine) emitTutors(tutors []models.Tutor) error {
	views := make([]tutorView, 0, len(tutors))
	for _, t := range tutors {
		views = append(views, newTutorView(t))
	}

	return cli.emit(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tLANGUAGES")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", v.ID, v.Name, v.Languages)
		}
		_ = tw.Flush()
	})
}

func (cli *commandLine) emitAvailabilities(avails []models.Availability) error {
	views := make([]availabilityView, 0, len(avails))
	for _, a := range avails {
		views = append(views, newAvailabilityView(a))
	}

	return cli.emit(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTUTOR\tSEMESTER\tPREFERENCE")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", v.ID, v.TutorID, v.Semester, v.Preference)
		}
		_ = tw.Flush()
	})
}

func (cli *commandLine) emitClasses(classes []models.ClassSurvey) error {
	views := make([]classView, 0, len(classes))
	for _, c := range classes {
		views = append(views, classView{
			ID:         c.Klass.ID,
			Course:     c.Course.String(),
			Name:       c.Course.Name,
			Section:    c.Klass.Section,
			Instructor: c.Klass.Instructor,
			Survey:     newSurveyView(c.Survey),
		})
	}

	return cli.emit(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOURSE\tSECTION\tINSTRUCTOR\tSURVEY")
		for _, v := range views {
			survey := "-"
			if v.Survey != nil {
				survey = fmt.Sprintf("#%d %s", v.Survey.ID, v.Survey.Status)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", v.ID, v.Course, v.Section, v.Instructor, survey)
		}
		_ = tw.Flush()
	})
}

func errorResponse(err error) response.Response {
	if verr, ok := validation.AsError(err); ok {
		fields := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Error())
		}
		return response.Error(response.VALIDATION_FAILED, "validation failed", fields...)
	}

	switch {
	case errors.Is(err, service.ErrSchedulingConflict):
		return response.Error(response.SCHEDULING_CONFLICT, err.Error())
	case errors.Is(err, response.ErrLocked):
		return response.Error(response.LOCKED, "tutor is being assigned by another admin, try again")
	case errors.Is(err, response.ErrNotFound):
		return response.Error(response.NOT_FOUND, err.Error())
	case errors.Is(err, response.ErrConflict):
		return response.Error(response.CONFLICT, err.Error())
	case errors.Is(err, response.ErrBadRequest):
		return response.Error(response.BAD_REQUEST, err.Error())
	default:
		return response.Error(response.FAILED_REQUEST, err.Error())
	}
}

// reportError prints err for the administrator, one field error per line.
func (cli *commandLine) reportError(err error) {
	resp := errorResponse(err)

	if cli.json {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}

	fmt.Fprintf(cli.out, "error: %s\n", resp.Message)
	for _, f := range resp.Fields {
		fmt.Fprintf(cli.out, "  %s\n", f)
	}
}
