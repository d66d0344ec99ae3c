package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"hkn-admin/internal/lock"
	"hkn-admin/internal/models"
	"hkn-admin/internal/rooms"
	"hkn-admin/internal/service"
	"hkn-admin/internal/validation"
	"hkn-admin/pkg/response"
)

func TestAssignTutor_ConflictAcrossRooms(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cory := mustSlot(t, f, 11, 1, rooms.Cory)
	soda := mustSlot(t, f, 11, 1, rooms.Soda)
	tutor := mustTutor(t, f, "Ada")

	if err := f.svc.AssignTutor(ctx, cory.ID, tutor.ID); err != nil {
		t.Fatalf("AssignTutor(cory) error = %v", err)
	}

	err := f.svc.AssignTutor(ctx, soda.ID, tutor.ID)
	if !errors.Is(err, service.ErrSchedulingConflict) {
		t.Fatalf("AssignTutor(soda) error = %v, want %v", err, service.ErrSchedulingConflict)
	}

	held, err := f.svc.TutorSlots(ctx, tutor.ID)
	if err != nil {
		t.Fatalf("TutorSlots() error = %v", err)
	}
	if len(held) != 1 || held[0].ID != cory.ID {
		t.Errorf("TutorSlots() = %v, want only %v", held, cory)
	}

	tutors, _ := f.svc.SlotTutors(ctx, soda.ID)
	if len(tutors) != 0 {
		t.Errorf("SlotTutors(soda) = %v, want none", tutors)
	}
}

func TestAssignTutor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	mon11 := mustSlot(t, f, 11, 1, rooms.Cory)
	mon12 := mustSlot(t, f, 12, 1, rooms.Soda)
	tue11 := mustSlot(t, f, 11, 2, rooms.Soda)
	ada := mustTutor(t, f, "Ada")
	grace := mustTutor(t, f, "Grace")

	for _, slot := range []*models.Slot{mon11, mon12, tue11} {
		if err := f.svc.AssignTutor(ctx, slot.ID, ada.ID); err != nil {
			t.Fatalf("AssignTutor(%v) error = %v", slot, err)
		}
	}

	// re-assigning is a no-op
	if err := f.svc.AssignTutor(ctx, mon11.ID, ada.ID); err != nil {
		t.Errorf("AssignTutor(again) error = %v", err)
	}

	if err := f.svc.AssignTutor(ctx, mon11.ID, grace.ID); err != nil {
		t.Errorf("AssignTutor(second tutor) error = %v", err)
	}

	tutors, err := f.svc.SlotTutors(ctx, mon11.ID)
	if err != nil {
		t.Fatalf("SlotTutors() error = %v", err)
	}
	if len(tutors) != 2 {
		t.Errorf("SlotTutors() = %v, want Ada and Grace", tutors)
	}

	held, _ := f.svc.TutorSlots(ctx, ada.ID)
	if len(held) != 3 {
		t.Errorf("TutorSlots() = %v, want 3 slots", held)
	}

	if err := f.svc.UnassignTutor(ctx, mon11.ID, ada.ID); err != nil {
		t.Fatalf("UnassignTutor() error = %v", err)
	}
	if err := f.svc.UnassignTutor(ctx, mon11.ID, ada.ID); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("UnassignTutor(again) error = %v, want %v", err, response.ErrNotFound)
	}
}

func TestAssignTutor_Missing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	slot := mustSlot(t, f, 11, 1, 0)
	tutor := mustTutor(t, f, "Ada")

	if err := f.svc.AssignTutor(ctx, 999, tutor.ID); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("AssignTutor(missing slot) error = %v, want %v", err, response.ErrNotFound)
	}
	if err := f.svc.AssignTutor(ctx, slot.ID, 999); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("AssignTutor(missing tutor) error = %v, want %v", err, response.ErrNotFound)
	}
}

func TestAssignTutor_Locked(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	slot := mustSlot(t, f, 11, 1, 0)
	tutor := mustTutor(t, f, "Ada")

	key := fmt.Sprintf("tutor:%d", tutor.ID)
	if ok, _ := f.locker.Lock(ctx, key, time.Minute); !ok {
		t.Fatalf("could not take %s", key)
	}

	if err := f.svc.AssignTutor(ctx, slot.ID, tutor.ID); !errors.Is(err, response.ErrLocked) {
		t.Fatalf("AssignTutor() error = %v, want %v", err, response.ErrLocked)
	}

	_ = f.locker.Unlock(ctx, key)
	if err := f.svc.AssignTutor(ctx, slot.ID, tutor.ID); err != nil {
		t.Errorf("AssignTutor() after unlock error = %v", err)
	}
}

// cancellingLock cancels the caller's context as soon as the lock is taken
// and records the state of the context Unlock is given.
type cancellingLock struct {
	*lock.MemoryLock
	cancel    context.CancelFunc
	unlockErr error
}

func (c *cancellingLock) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.MemoryLock.Lock(ctx, key, ttl)
	c.cancel()
	return ok, err
}

func (c *cancellingLock) Unlock(ctx context.Context, key string) error {
	c.unlockErr = ctx.Err()
	return c.MemoryLock.Unlock(ctx, key)
}

func TestAssignTutor_ReleasesLockAfterCancel(t *testing.T) {
	f := newFixture(t, nil)

	slot := mustSlot(t, f, 11, 1, 0)
	tutor := mustTutor(t, f, "Ada")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	locker := &cancellingLock{MemoryLock: lock.NewMemoryLock(), cancel: cancel}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(log, f.store, locker, service.StaticSettings(defaultSettings))

	if err := svc.AssignTutor(ctx, slot.ID, tutor.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("AssignTutor() error = %v, want %v", err, context.Canceled)
	}
	if locker.unlockErr != nil {
		t.Errorf("Unlock() got a context with error %v, want a live one", locker.unlockErr)
	}

	key := fmt.Sprintf("tutor:%d", tutor.ID)
	if ok, _ := locker.MemoryLock.Lock(context.Background(), key, time.Minute); !ok {
		t.Errorf("%s still held after AssignTutor returned", key)
	}

	held, err := f.store.SlotsForTutor(context.Background(), tutor.ID)
	if err != nil {
		t.Fatalf("SlotsForTutor() error = %v", err)
	}
	if len(held) != 0 {
		t.Errorf("SlotsForTutor() = %v, want nothing written", held)
	}
}

func TestCreateTutor_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateTutor(context.Background(), models.NewTutor{PersonID: -1})
	verr := validationErr(t, err)
	if !verr.Has("name", validation.ErrPresence) {
		t.Errorf("error = %v, want name presence error", err)
	}
	if !verr.Has("person_id", validation.ErrRange) {
		t.Errorf("error = %v, want person_id range error", err)
	}
}
