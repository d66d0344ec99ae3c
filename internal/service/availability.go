package service

import (
	"context"
	"fmt"
	"log/slog"

	"hkn-admin/internal/models"
)

// Availabilities returns the availabilities declared for slot's hour and
// weekday in the active semester, in store order. Room is not part of the
// match.
func (s *Service) Availabilities(ctx context.Context, slot models.Slot) ([]models.Availability, error) {
	const op = "service.Availabilities"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	avails, err := s.store.FindAvailabilities(ctx, slot.Hour, slot.Wday, settings.Semester)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return avails, nil
}

func (s *Service) CreateAvailability(ctx context.Context, na models.NewAvailability) (*models.Availability, error) {
	const op = "service.CreateAvailability"

	if verr := s.validate.Struct(na); verr != nil {
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	if _, err := s.store.GetTutor(ctx, *na.TutorID); err != nil {
		return nil, fmt.Errorf("%s: tutor %d: %w", op, *na.TutorID, err)
	}

	semester := na.Semester
	if semester == "" {
		settings, err := s.settings.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		semester = settings.Semester
	}

	avail := models.Availability{
		TutorID:    *na.TutorID,
		Hour:       *na.Hour,
		Wday:       *na.Wday,
		Semester:   semester,
		Preference: na.Preference,
	}
	id, err := s.store.CreateAvailability(ctx, &avail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	avail.ID = id

	s.log.Info("Availability created", slog.Int("id", id), slog.Int("tutor_id", avail.TutorID))

	return &avail, nil
}

func (s *Service) DeleteAvailability(ctx context.Context, id int) error {
	const op = "service.DeleteAvailability"

	if err := s.store.DeleteAvailability(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
