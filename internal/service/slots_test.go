package service_test

import (
	"context"
	"errors"
	"testing"

	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/internal/validation"
	"hkn-admin/pkg/response"
)

func TestValidateSlot_Presence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		slot    models.NewSlot
		missing []string
	}{
		{"no hour", models.NewSlot{Wday: ptr(1), Room: ptr(0)}, []string{"hour"}},
		{"no wday", models.NewSlot{Hour: ptr(12), Room: ptr(0)}, []string{"wday"}},
		{"no room", models.NewSlot{Hour: ptr(12), Wday: ptr(1)}, []string{"room"}},
		{"nothing", models.NewSlot{}, []string{"hour", "wday", "room"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validationErr(t, f.svc.ValidateSlot(ctx, tt.slot, 0))
			for _, field := range tt.missing {
				if !verr.Has(field, validation.ErrPresence) {
					t.Errorf("%s: got %v, want presence error", field, verr)
				}
				if msgs := verr.On(field); len(msgs) != 1 || msgs[0] != "can't be blank" {
					t.Errorf("On(%q) = %v", field, msgs)
				}
			}
			if len(verr.Fields) != len(tt.missing) {
				t.Errorf("got %d field errors, want %d: %v", len(verr.Fields), len(tt.missing), verr)
			}
		})
	}
}

func TestValidateSlot_TutoringWindow(t *testing.T) {
	f := newFixture(t, service.StaticSettings{TutoringStart: 12, TutoringEnd: 14, Semester: "20113"})
	ctx := context.Background()

	tests := []struct {
		hour int
		ok   bool
	}{
		{hour: 11, ok: false},
		{hour: 12, ok: true},
		{hour: 13, ok: true},
		{hour: 14, ok: false},
		{hour: 15, ok: false},
	}

	for _, tt := range tests {
		err := f.svc.ValidateSlot(ctx, models.SlotParams(tt.hour, 2, 0), 0)
		if tt.ok {
			if err != nil {
				t.Errorf("hour %d: unexpected error %v", tt.hour, err)
			}
			continue
		}
		if !errors.Is(err, validation.ErrRange) {
			t.Errorf("hour %d: error = %v, want range error", tt.hour, err)
			continue
		}
		if msgs := validationErr(t, err).On("hour"); len(msgs) != 1 || msgs[0] != "must be during tutoring hours (12:00-14:00)" {
			t.Errorf("hour %d: On(hour) = %v", tt.hour, msgs)
		}
	}
}

func TestValidateSlot_Wday(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, wday := range []int{0, 6, 7, -1} {
		err := f.svc.ValidateSlot(ctx, models.SlotParams(12, wday, 0), 0)
		if !validationErr(t, err).Has("wday", validation.ErrInclusion) {
			t.Errorf("wday %d: error = %v, want inclusion error", wday, err)
		}
	}

	for wday := 1; wday <= 5; wday++ {
		if err := f.svc.ValidateSlot(ctx, models.SlotParams(12, wday, 0), 0); err != nil {
			t.Errorf("wday %d: unexpected error %v", wday, err)
		}
	}
}

func TestValidateSlot_Room(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, room := range []int{3, 2, -1} {
		err := f.svc.ValidateSlot(ctx, models.SlotParams(12, 1, room), 0)
		verr := validationErr(t, err)
		if !verr.Has("room", validation.ErrInvalidRoom) {
			t.Errorf("room %d: error = %v, want invalid room", room, err)
		}
	}
}

func TestValidateSlot_ReportsEveryRule(t *testing.T) {
	f := newFixture(t, nil)

	err := f.svc.ValidateSlot(context.Background(), models.SlotParams(20, 0, 3), 0)
	for _, kind := range []error{validation.ErrRange, validation.ErrInclusion, validation.ErrInvalidRoom} {
		if !errors.Is(err, kind) {
			t.Errorf("error = %v, want it to include %v", err, kind)
		}
	}
}

func TestCreateSlot_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	mustSlot(t, f, 11, 1, 1)

	_, err := f.svc.CreateSlot(ctx, models.SlotParams(11, 1, 1))
	if !errors.Is(err, validation.ErrDuplicate) {
		t.Fatalf("CreateSlot(duplicate) error = %v, want duplicate error", err)
	}
	if msgs := validationErr(t, err).On("hour"); len(msgs) != 1 || msgs[0] != "has already been taken" {
		t.Errorf("On(hour) = %v", msgs)
	}

	slots, _ := f.svc.ListSlots(ctx)
	if len(slots) != 1 {
		t.Errorf("ListSlots() = %v, want a single slot", slots)
	}

	if _, err := f.svc.CreateSlot(ctx, models.SlotParams(11, 1, 0)); err != nil {
		t.Errorf("CreateSlot(other room) error = %v", err)
	}
}

func TestUpdateSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := mustSlot(t, f, 11, 1, 0)
	mustSlot(t, f, 12, 1, 0)

	// saving a slot unchanged does not collide with itself
	if _, err := f.svc.UpdateSlot(ctx, a.ID, models.SlotParams(11, 1, 0)); err != nil {
		t.Errorf("UpdateSlot(unchanged) error = %v", err)
	}

	if _, err := f.svc.UpdateSlot(ctx, a.ID, models.SlotParams(12, 1, 0)); !errors.Is(err, validation.ErrDuplicate) {
		t.Errorf("UpdateSlot(onto taken) error = %v, want duplicate error", err)
	}

	moved, err := f.svc.UpdateSlot(ctx, a.ID, models.SlotParams(15, 3, 1))
	if err != nil {
		t.Fatalf("UpdateSlot() error = %v", err)
	}
	if moved.ID != a.ID || moved.Hour != 15 || moved.Wday != 3 || moved.Room != 1 {
		t.Errorf("UpdateSlot() = %+v", moved)
	}

	if _, err := f.svc.UpdateSlot(ctx, 999, models.SlotParams(15, 3, 1)); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("UpdateSlot(missing) error = %v, want %v", err, response.ErrNotFound)
	}
}

func TestValidateSlot_ReadsSettingsEachCall(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	if err := f.svc.ValidateSlot(ctx, models.SlotParams(11, 1, 0), 0); err != nil {
		t.Fatalf("ValidateSlot() before update error = %v", err)
	}

	if _, err := f.svc.UpdateProperty(ctx, models.UpdateProperty{TutoringStart: ptr(12)}); err != nil {
		t.Fatalf("UpdateProperty() error = %v", err)
	}

	if err := f.svc.ValidateSlot(ctx, models.SlotParams(11, 1, 0), 0); !errors.Is(err, validation.ErrRange) {
		t.Errorf("ValidateSlot() after update error = %v, want range error", err)
	}
}

func TestScheduleAndClear(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	mustSlot(t, f, 11, 1, 0)
	mustSlot(t, f, 12, 1, 0)
	mustSlot(t, f, 14, 1, 0)
	mustSlot(t, f, 12, 1, 1)

	blocks, err := f.svc.Schedule(ctx)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("Schedule() = %v, want 3 blocks", blocks)
	}
	if b := blocks[0]; b.Room != 0 || b.Start != 11 || b.End != 13 || len(b.Slots) != 2 {
		t.Errorf("blocks[0] = %+v", b)
	}

	n, err := f.svc.ClearSlots(ctx)
	if err != nil || n != 4 {
		t.Fatalf("ClearSlots() = %d, %v, want 4", n, err)
	}
	slots, _ := f.svc.ListSlots(ctx)
	if len(slots) != 0 {
		t.Errorf("ListSlots() after clear = %v", slots)
	}
}
