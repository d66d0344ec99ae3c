package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hkn-admin/internal/models"
	"hkn-admin/pkg/response"
)

func (cli *commandLine) tutor(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("tutor " + sub)

	switch sub {
	case "add":
		name := fs.String("name", "", "tutor's name")
		person := fs.Int("person", 0, "person id in the member directory")
		languages := fs.String("languages", "", "languages the tutor can help in")
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		tutor, err := cli.svc.CreateTutor(ctx, models.NewTutor{PersonID: *person, Name: *name, Languages: *languages})
		if err != nil {
			return err
		}
		return cli.emit(newTutorView(*tutor), func(w io.Writer) {
			fmt.Fprintf(w, "tutor %d: %s\n", tutor.ID, tutor.Name)
		})

	case "slots":
		id := fs.Int("id", 0, "tutor id")
		if _, err := cli.parse(fs, args, "id"); err != nil {
			return err
		}
		slots, err := cli.svc.TutorSlots(ctx, *id)
		if err != nil {
			return err
		}
		return cli.emitSlots(slots)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) availability(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("availability " + sub)

	switch sub {
	case "add":
		tutorID := fs.Int("tutor", 0, "tutor id")
		hour := fs.Int("hour", 0, "hour of day")
		wday := fs.Int("wday", 0, "weekday, 1 (Mon) to 5 (Fri)")
		semester := fs.String("semester", "", "semester code such as 20113 (default: the active one)")
		preference := fs.Int("preference", 0, "preference, 0 to 3")
		set, err := cli.parse(fs, args)
		if err != nil {
			return err
		}
		avail, err := cli.svc.CreateAvailability(ctx, models.NewAvailability{
			TutorID:    opt(set, "tutor", *tutorID),
			Hour:       opt(set, "hour", *hour),
			Wday:       opt(set, "wday", *wday),
			Semester:   *semester,
			Preference: *preference,
		})
		if err != nil {
			return err
		}
		return cli.emit(newAvailabilityView(*avail), func(w io.Writer) {
			fmt.Fprintf(w, "availability %d: tutor %d %s %d:00 (%s)\n",
				avail.ID, avail.TutorID, models.WdayName(avail.Wday), avail.Hour, avail.Semester)
		})

	case "delete":
		id := fs.Int("id", 0, "availability id")
		if _, err := cli.parse(fs, args, "id"); err != nil {
			return err
		}
		if err := cli.svc.DeleteAvailability(ctx, *id); err != nil {
			return err
		}
		return cli.emit(map[string]int{"deleted": *id}, func(w io.Writer) {
			fmt.Fprintf(w, "availability %d deleted\n", *id)
		})

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) property(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("property " + sub)

	var (
		prop *models.Property
		err  error
	)

	switch sub {
	case "show":
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		prop, err = cli.svc.Property(ctx)

	case "set":
		semester := fs.String("semester", "", "active semester code, e.g. 20113")
		start := fs.Int("start", 0, "first tutoring hour")
		end := fs.Int("end", 0, "hour tutoring stops (exclusive)")
		surveys := fs.Bool("surveys", false, "whether course surveys are open")
		set, perr := cli.parse(fs, args)
		if perr != nil {
			return perr
		}
		prop, err = cli.svc.UpdateProperty(ctx, models.UpdateProperty{
			Semester:            opt(set, "semester", *semester),
			TutoringStart:       opt(set, "start", *start),
			TutoringEnd:         opt(set, "end", *end),
			CoursesurveysActive: opt(set, "surveys", *surveys),
		})

	default:
		cli.printUsage()
		return errHelp
	}

	if err != nil {
		return err
	}

	return cli.emit(newPropertyView(*prop), func(w io.Writer) {
		fmt.Fprintf(w, "semester:             %s\n", prop.Semester)
		fmt.Fprintf(w, "tutoring hours:       %d:00-%d:00\n", prop.TutoringStart, prop.TutoringEnd)
		fmt.Fprintf(w, "course surveys open:  %t\n", prop.CoursesurveysActive)
	})
}

func (cli *commandLine) class(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("class " + sub)

	switch sub {
	case "add":
		dept := fs.String("dept", "", "department abbreviation, e.g. CS")
		number := fs.String("number", "", "course number, e.g. 61A")
		name := fs.String("name", "", "course title")
		section := fs.String("section", "", "section")
		instructor := fs.String("instructor", "", "instructor's name")
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		klass, err := cli.svc.AddClass(ctx, models.NewClass{
			Dept:       *dept,
			Number:     *number,
			Name:       *name,
			Section:    *section,
			Instructor: *instructor,
		})
		if err != nil {
			return err
		}
		return cli.emit(map[string]any{"id": klass.ID, "semester": klass.Semester}, func(w io.Writer) {
			fmt.Fprintf(w, "class %d added for %s\n", klass.ID, klass.Semester)
		})

	case "list":
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		classes, err := cli.svc.ListClasses(ctx)
		if err != nil {
			return err
		}
		return cli.emitClasses(classes)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) survey(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	sub, args := args[0], args[1:]
	fs := cli.newFlagSet("survey " + sub)

	switch sub {
	case "select":
		ids := fs.String("ids", "", "comma separated class ids to survey; empty clears the selection")
		active := fs.Bool("active", false, "open course surveys")
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		selected, err := parseIDs(*ids)
		if err != nil {
			return err
		}
		res, err := cli.svc.SelectClasses(ctx, selected, *active)
		if err != nil {
			return err
		}
		return cli.emit(map[string]int{"created": res.Created, "deleted": res.Deleted}, func(w io.Writer) {
			fmt.Fprintf(w, "%d surveys created, %d removed\n", res.Created, res.Deleted)
		})

	case "list":
		if _, err := cli.parse(fs, args); err != nil {
			return err
		}
		surveys, err := cli.svc.ListSurveys(ctx)
		if err != nil {
			return err
		}
		return cli.emitClasses(surveys)

	case "update":
		id := fs.Int("id", 0, "survey id")
		maxSurveyors := fs.Int("max", 0, "maximum number of surveyors")
		status := fs.Int("status", 0, "0 open, 1 scheduled, 2 done")
		at := fs.String("at", "", "scheduled time, RFC3339")
		set, err := cli.parse(fs, args, "id")
		if err != nil {
			return err
		}
		uc := models.UpdateCoursesurvey{
			MaxSurveyors: opt(set, "max", *maxSurveyors),
			Status:       opt(set, "status", *status),
		}
		if set["at"] {
			t, err := time.Parse(time.RFC3339, *at)
			if err != nil {
				return fmt.Errorf("%w: -at: %v", response.ErrBadRequest, err)
			}
			uc.ScheduledAt = &t
		}
		survey, err := cli.svc.UpdateSurvey(ctx, *id, uc)
		if err != nil {
			return err
		}
		return cli.emit(newSurveyView(survey), func(w io.Writer) {
			fmt.Fprintf(w, "survey %d: %s, up to %d surveyors\n", survey.ID, survey.Status, survey.MaxSurveyors)
		})

	default:
		cli.printUsage()
		return errHelp
	}
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a class id", response.ErrBadRequest, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
