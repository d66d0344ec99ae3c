package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hkn-admin/internal/models"
	"hkn-admin/internal/validation"
	"hkn-admin/pkg/response"
)

// ValidateSlot checks ns against the presence, range, weekday, room and
// uniqueness rules. excludeID names the record being updated (0 on create)
// so it does not collide with itself. Every violated rule is reported.
func (s *Service) ValidateSlot(ctx context.Context, ns models.NewSlot, excludeID int) error {
	const op = "service.ValidateSlot"

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	verr := s.validate.Struct(ns)
	if verr == nil {
		verr = &validation.Error{}
	}

	if ns.Hour != nil && (*ns.Hour < settings.TutoringStart || *ns.Hour >= settings.TutoringEnd) {
		verr.Add("hour", validation.ErrRange,
			fmt.Sprintf("must be during tutoring hours (%d:00-%d:00)", settings.TutoringStart, settings.TutoringEnd))
	}

	if ns.Hour != nil && ns.Wday != nil && ns.Room != nil {
		taken, err := s.store.FindSlots(ctx, *ns.Hour, *ns.Wday, *ns.Room)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, other := range taken {
			if other.ID != excludeID {
				verr.Add("hour", validation.ErrDuplicate)
				break
			}
		}
	}

	return verr.OrNil()
}

func (s *Service) CreateSlot(ctx context.Context, ns models.NewSlot) (*models.Slot, error) {
	const op = "service.CreateSlot"

	if err := s.ValidateSlot(ctx, ns, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slot := ns.Slot()
	id, err := s.store.CreateSlot(ctx, &slot)
	if err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, duplicateSlot())
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slot.ID = id

	s.log.Info("Slot created", slog.Int("id", id), slog.String("slot", slot.String()))

	return &slot, nil
}

func (s *Service) UpdateSlot(ctx context.Context, id int, ns models.NewSlot) (*models.Slot, error) {
	const op = "service.UpdateSlot"

	if _, err := s.store.GetSlot(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ValidateSlot(ctx, ns, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slot := ns.Slot()
	slot.ID = id
	if err := s.store.UpdateSlot(ctx, &slot); err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, duplicateSlot())
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Slot updated", slog.Int("id", id), slog.String("slot", slot.String()))

	return &slot, nil
}

func (s *Service) GetSlot(ctx context.Context, id int) (*models.Slot, error) {
	const op = "service.GetSlot"

	slot, err := s.store.GetSlot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slot, nil
}

func (s *Service) ListSlots(ctx context.Context) ([]models.Slot, error) {
	const op = "service.ListSlots"

	slots, err := s.store.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// Schedule returns every slot merged into runs of adjacent hours.
func (s *Service) Schedule(ctx context.Context) ([]models.Block, error) {
	const op = "service.Schedule"

	slots, err := s.store.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return models.MergeAdjacent(slots), nil
}

func (s *Service) DeleteSlot(ctx context.Context, id int) error {
	const op = "service.DeleteSlot"

	if err := s.store.DeleteSlot(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Slot deleted", slog.Int("id", id))

	return nil
}

// ClearSlots destroys every slot and its tutor assignments, as done at
// semester rollover.
func (s *Service) ClearSlots(ctx context.Context) (int, error) {
	const op = "service.ClearSlots"

	n, err := s.store.DeleteAllSlots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Slots cleared", slog.Int("count", n))

	return n, nil
}

func duplicateSlot() error {
	verr := &validation.Error{}
	verr.Add("hour", validation.ErrDuplicate)
	return verr
}
