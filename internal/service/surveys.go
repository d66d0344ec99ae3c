package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"hkn-admin/internal/models"
	"hkn-admin/internal/validation"
	"hkn-admin/pkg/response"
)

// SelectionResult counts the surveys SelectClasses created and removed.
type SelectionResult struct {
	Created int
	Deleted int
}

// AddClass registers a course offering for the active semester, creating
// the course on first use.
func (s *Service) AddClass(ctx context.Context, nc models.NewClass) (*models.Klass, error) {
	const op = "service.AddClass"

	if verr := s.validate.Struct(nc); verr != nil {
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dept := strings.ToUpper(nc.Dept)
	number := strings.ToUpper(nc.Number)

	var klass models.Klass
	err = s.store.InTx(ctx, func(tx Store) error {
		course, err := tx.FindCourse(ctx, dept, number)
		if errors.Is(err, response.ErrNotFound) {
			course = &models.Course{Dept: dept, Number: number, Name: nc.Name}
			course.ID, err = tx.CreateCourse(ctx, course)
		}
		if err != nil {
			return err
		}

		klass = models.Klass{
			CourseID:   course.ID,
			Semester:   settings.Semester,
			Section:    nc.Section,
			Instructor: nc.Instructor,
		}
		klass.ID, err = tx.CreateKlass(ctx, &klass)
		return err
	})
	if errors.Is(err, response.ErrConflict) {
		verr := &validation.Error{}
		verr.Add("section", validation.ErrDuplicate)
		return nil, fmt.Errorf("%s: %w", op, verr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Class added", slog.Int("id", klass.ID), slog.String("course", dept+" "+number))

	return &klass, nil
}

// ListClasses returns the active semester's classes with their survey, if
// any, ordered by department and course number.
func (s *Service) ListClasses(ctx context.Context) ([]models.ClassSurvey, error) {
	const op = "service.ListClasses"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	classes, err := classesIn(ctx, s.store, settings.Semester)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return classes, nil
}

// SelectClasses makes the set of surveyed classes equal to selected: a
// survey is created for every selected class lacking one and removed from
// every unselected class that has one. It also records whether course
// surveys are open. selected may only name active-semester classes.
func (s *Service) SelectClasses(ctx context.Context, selected []int, active bool) (SelectionResult, error) {
	const op = "service.SelectClasses"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return SelectionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var result SelectionResult

	err = s.store.InTx(ctx, func(tx Store) error {
		classes, err := classesIn(ctx, tx, settings.Semester)
		if err != nil {
			return err
		}

		known := make(map[int]bool, len(classes))
		for _, c := range classes {
			known[c.Klass.ID] = true
		}
		wanted := make(map[int]bool, len(selected))
		for _, id := range selected {
			if !known[id] {
				return fmt.Errorf("class %d: %w", id, response.ErrNotFound)
			}
			wanted[id] = true
		}

		for _, c := range classes {
			switch {
			case wanted[c.Klass.ID] && c.Survey == nil:
				if _, err := tx.CreateSurvey(ctx, &models.Coursesurvey{KlassID: c.Klass.ID}); err != nil {
					return err
				}
				result.Created++
			case !wanted[c.Klass.ID] && c.Survey != nil:
				if err := tx.DeleteSurvey(ctx, c.Survey.ID); err != nil {
					return err
				}
				result.Deleted++
			}
		}

		prop, err := propertyIn(ctx, tx, settings)
		if err != nil {
			return err
		}
		prop.CoursesurveysActive = active
		return tx.SaveProperty(ctx, prop)
	})
	if err != nil {
		return SelectionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Updated classes to be surveyed",
		slog.Int("created", result.Created),
		slog.Int("deleted", result.Deleted),
		slog.Bool("active", active),
	)

	return result, nil
}

// ListSurveys returns the active semester's classes that have a survey.
func (s *Service) ListSurveys(ctx context.Context) ([]models.ClassSurvey, error) {
	const op = "service.ListSurveys"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	classes, err := classesIn(ctx, s.store, settings.Semester)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	surveys := make([]models.ClassSurvey, 0, len(classes))
	for _, c := range classes {
		if c.Survey != nil {
			surveys = append(surveys, c)
		}
	}

	return surveys, nil
}

func (s *Service) UpdateSurvey(ctx context.Context, id int, uc models.UpdateCoursesurvey) (*models.Coursesurvey, error) {
	const op = "service.UpdateSurvey"

	if verr := s.validate.Struct(uc); verr != nil {
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	survey, err := s.store.GetSurvey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if uc.MaxSurveyors != nil {
		survey.MaxSurveyors = *uc.MaxSurveyors
	}
	if uc.Status != nil {
		survey.Status = models.SurveyStatus(*uc.Status)
	}
	if uc.ScheduledAt != nil {
		at := uc.ScheduledAt.UTC()
		survey.ScheduledAt = &at
	}

	if err := s.store.UpdateSurvey(ctx, survey); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Survey updated", slog.Int("id", id), slog.String("status", survey.Status.String()))

	return survey, nil
}

func classesIn(ctx context.Context, store Store, semester string) ([]models.ClassSurvey, error) {
	klasses, err := store.ListKlasses(ctx, semester)
	if err != nil {
		return nil, err
	}

	courses := make(map[int]*models.Course)
	result := make([]models.ClassSurvey, 0, len(klasses))
	for _, k := range klasses {
		course, ok := courses[k.CourseID]
		if !ok {
			course, err = store.GetCourse(ctx, k.CourseID)
			if err != nil {
				return nil, fmt.Errorf("course %d: %w", k.CourseID, err)
			}
			courses[k.CourseID] = course
		}

		survey, err := store.SurveyForKlass(ctx, k.ID)
		if err != nil && !errors.Is(err, response.ErrNotFound) {
			return nil, err
		}

		result = append(result, models.ClassSurvey{Klass: k, Course: *course, Survey: survey})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return classLess(result[i], result[j])
	})

	return result, nil
}

// propertyIn returns the saved properties row, or one built from settings
// when none has been saved yet.
func propertyIn(ctx context.Context, store Store, settings Settings) (*models.Property, error) {
	prop, err := store.GetProperty(ctx)
	if err == nil {
		return prop, nil
	}
	if !errors.Is(err, response.ErrNotFound) {
		return nil, err
	}

	return &models.Property{
		Semester:      settings.Semester,
		TutoringStart: settings.TutoringStart,
		TutoringEnd:   settings.TutoringEnd,
	}, nil
}

// classLess orders by department, then the numeric part of the course
// number (so 61A sorts before 170), then the full number and section.
func classLess(a, b models.ClassSurvey) bool {
	if a.Course.Dept != b.Course.Dept {
		return a.Course.Dept < b.Course.Dept
	}
	an, bn := leadingNumber(a.Course.Number), leadingNumber(b.Course.Number)
	if an != bn {
		return an < bn
	}
	if a.Course.Number != b.Course.Number {
		return a.Course.Number < b.Course.Number
	}
	return a.Klass.Section < b.Klass.Section
}

func leadingNumber(s string) int {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
