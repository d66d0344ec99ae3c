package service

import (
	"context"
	"fmt"
	"log/slog"

	"hkn-admin/internal/models"
	"hkn-admin/internal/validation"
)

// Property returns the saved settings row, or one built from the active
// settings when none has been saved yet.
func (s *Service) Property(ctx context.Context) (*models.Property, error) {
	const op = "service.Property"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prop, err := propertyIn(ctx, s.store, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return prop, nil
}

func (s *Service) UpdateProperty(ctx context.Context, up models.UpdateProperty) (*models.Property, error) {
	const op = "service.UpdateProperty"

	verr := s.validate.Struct(up)
	if verr != nil {
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	prop, err := s.Property(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if up.Semester != nil {
		prop.Semester = *up.Semester
	}
	if up.TutoringStart != nil {
		prop.TutoringStart = *up.TutoringStart
	}
	if up.TutoringEnd != nil {
		prop.TutoringEnd = *up.TutoringEnd
	}
	if up.CoursesurveysActive != nil {
		prop.CoursesurveysActive = *up.CoursesurveysActive
	}

	if prop.TutoringStart >= prop.TutoringEnd {
		verr = &validation.Error{}
		verr.Add("tutoring_end", validation.ErrRange, "must be after tutoring_start")
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	if err := s.store.SaveProperty(ctx, prop); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Properties updated",
		slog.String("semester", prop.Semester),
		slog.Int("tutoring_start", prop.TutoringStart),
		slog.Int("tutoring_end", prop.TutoringEnd),
		slog.Bool("coursesurveys_active", prop.CoursesurveysActive),
	)

	return prop, nil
}
