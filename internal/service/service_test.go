package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"hkn-admin/internal/lock"
	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/internal/storage/inmem"
	"hkn-admin/internal/validation"
)

var defaultSettings = service.Settings{TutoringStart: 11, TutoringEnd: 17, Semester: "20113"}

type fixture struct {
	svc    *service.Service
	store  *inmem.Storage
	locker *lock.MemoryLock
}

// newFixture builds a service over an empty in-memory store. A nil
// settings provider means defaultSettings.
func newFixture(t *testing.T, settings service.SettingsProvider) fixture {
	t.Helper()

	if settings == nil {
		settings = service.StaticSettings(defaultSettings)
	}
	return fixtureWithStore(t, inmem.New(), settings)
}

// newPropertyFixture reads settings from the store's properties row, the
// way the admin tool runs.
func newPropertyFixture(t *testing.T) fixture {
	t.Helper()

	store := inmem.New()
	return fixtureWithStore(t, store, service.NewPropertySettings(store, defaultSettings))
}

func fixtureWithStore(t *testing.T, store *inmem.Storage, settings service.SettingsProvider) fixture {
	t.Helper()

	locker := lock.NewMemoryLock()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		svc:    service.NewService(log, store, locker, settings),
		store:  store,
		locker: locker,
	}
}

func ptr[T any](v T) *T { return &v }

func mustSlot(t *testing.T, f fixture, hour, wday, room int) *models.Slot {
	t.Helper()
	slot, err := f.svc.CreateSlot(context.Background(), models.SlotParams(hour, wday, room))
	if err != nil {
		t.Fatalf("CreateSlot(%d, %d, %d) error = %v", hour, wday, room, err)
	}
	return slot
}

func mustTutor(t *testing.T, f fixture, name string) *models.Tutor {
	t.Helper()
	tutor, err := f.svc.CreateTutor(context.Background(), models.NewTutor{Name: name})
	if err != nil {
		t.Fatalf("CreateTutor(%q) error = %v", name, err)
	}
	return tutor
}

func validationErr(t *testing.T, err error) *validation.Error {
	t.Helper()
	verr, ok := validation.AsError(err)
	if !ok {
		t.Fatalf("error = %v, want a validation error", err)
	}
	return verr
}
