package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hkn-admin/internal/models"
	"hkn-admin/pkg/response"
)

// ErrSchedulingConflict is returned when a tutor would be in two rooms at
// the same hour.
var ErrSchedulingConflict = errors.New("tutor is already scheduled at that time")

func (s *Service) CreateTutor(ctx context.Context, nt models.NewTutor) (*models.Tutor, error) {
	const op = "service.CreateTutor"

	if verr := s.validate.Struct(nt); verr != nil {
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	tutor := models.Tutor{
		PersonID:  nt.PersonID,
		Name:      nt.Name,
		Languages: nt.Languages,
	}
	id, err := s.store.CreateTutor(ctx, &tutor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tutor.ID = id

	s.log.Info("Tutor created", slog.Int("id", id), slog.String("name", tutor.Name))

	return &tutor, nil
}

// AssignTutor adds the tutor to the slot. It fails with
// ErrSchedulingConflict, writing nothing, when the tutor already holds a
// slot at the same hour and weekday in any room. Assigning a tutor to a
// slot they already hold is a no-op.
func (s *Service) AssignTutor(ctx context.Context, slotID, tutorID int) error {
	const op = "service.AssignTutor"

	lockKey := fmt.Sprintf("tutor:%d", tutorID)

	locked, err := s.locker.Lock(ctx, lockKey, s.lockTTL)
	if err != nil {
		return fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		// release even when ctx was cancelled mid-assignment
		if err := s.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			s.log.Warn("Failed to release tutor lock", slog.String("key", lockKey), slog.String("error", err.Error()))
		}
	}()

	err = s.store.InTx(ctx, func(tx Store) error {
		slot, err := tx.GetSlot(ctx, slotID)
		if err != nil {
			return fmt.Errorf("slot %d: %w", slotID, err)
		}
		if _, err := tx.GetTutor(ctx, tutorID); err != nil {
			return fmt.Errorf("tutor %d: %w", tutorID, err)
		}

		held, err := tx.SlotsForTutor(ctx, tutorID)
		if err != nil {
			return err
		}
		for _, h := range held {
			if h.ID == slot.ID {
				return nil
			}
			if h.Hour == slot.Hour && h.Wday == slot.Wday {
				return fmt.Errorf("%w: %s overlaps %s", ErrSchedulingConflict, slot, h)
			}
		}

		return tx.AddSlotTutor(ctx, slotID, tutorID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Tutor assigned", slog.Int("slot_id", slotID), slog.Int("tutor_id", tutorID))

	return nil
}

func (s *Service) UnassignTutor(ctx context.Context, slotID, tutorID int) error {
	const op = "service.UnassignTutor"

	if err := s.store.RemoveSlotTutor(ctx, slotID, tutorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Tutor unassigned", slog.Int("slot_id", slotID), slog.Int("tutor_id", tutorID))

	return nil
}

func (s *Service) SlotTutors(ctx context.Context, slotID int) ([]models.Tutor, error) {
	const op = "service.SlotTutors"

	if _, err := s.store.GetSlot(ctx, slotID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tutors, err := s.store.TutorsForSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tutors, nil
}

func (s *Service) TutorSlots(ctx context.Context, tutorID int) ([]models.Slot, error) {
	const op = "service.TutorSlots"

	if _, err := s.store.GetTutor(ctx, tutorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := s.store.SlotsForTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}
