// Package storetest checks that a service.Store behaves the way the service
// relies on. Every implementation runs the same cases through Run.
package storetest

import (
	"context"
	"errors"
	"testing"

	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/pkg/response"
)

// Run runs every case against a store from open. open must return an empty
// store each time it is called.
func Run(t *testing.T, open func(t *testing.T) service.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s service.Store)
	}{
		{"SlotUniqueness", testSlotUniqueness},
		{"ListSlotsOrder", testListSlotsOrder},
		{"DeleteSlotDropsAssignments", testDeleteSlotDropsAssignments},
		{"DeleteAllSlotsDropsAssignments", testDeleteAllSlotsDropsAssignments},
		{"Assignments", testAssignments},
		{"InTxRollback", testInTxRollback},
		{"InTxRollbackOnConflict", testInTxRollbackOnConflict},
		{"InTxCommit", testInTxCommit},
		{"FindAvailabilities", testFindAvailabilities},
		{"PropertyUpsert", testPropertyUpsert},
		{"Klasses", testKlasses},
		{"SurveyPerKlass", testSurveyPerKlass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func mustSlot(t *testing.T, s service.Store, hour, wday, room int) int {
	t.Helper()
	id, err := s.CreateSlot(context.Background(), &models.Slot{Hour: hour, Wday: wday, Room: room})
	if err != nil {
		t.Fatalf("CreateSlot(%d, %d, %d) error = %v", hour, wday, room, err)
	}
	return id
}

func mustTutor(t *testing.T, s service.Store, name string) int {
	t.Helper()
	id, err := s.CreateTutor(context.Background(), &models.Tutor{Name: name})
	if err != nil {
		t.Fatalf("CreateTutor(%q) error = %v", name, err)
	}
	return id
}

func mustAssign(t *testing.T, s service.Store, slotID, tutorID int) {
	t.Helper()
	if err := s.AddSlotTutor(context.Background(), slotID, tutorID); err != nil {
		t.Fatalf("AddSlotTutor(%d, %d) error = %v", slotID, tutorID, err)
	}
}

func slotIDs(slots []models.Slot) []int {
	ids := make([]int, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}

func equalIDs(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func testSlotUniqueness(t *testing.T, s service.Store) {
	ctx := context.Background()

	id := mustSlot(t, s, 11, 1, 1)

	if _, err := s.CreateSlot(ctx, &models.Slot{Hour: 11, Wday: 1, Room: 1}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("CreateSlot(duplicate) error = %v, want %v", err, response.ErrConflict)
	}

	mustSlot(t, s, 11, 1, 0)

	if err := s.UpdateSlot(ctx, &models.Slot{ID: id, Hour: 11, Wday: 1, Room: 0}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("UpdateSlot(onto taken) error = %v, want %v", err, response.ErrConflict)
	}
	if err := s.UpdateSlot(ctx, &models.Slot{ID: id, Hour: 11, Wday: 1, Room: 1}); err != nil {
		t.Errorf("UpdateSlot(unchanged) error = %v", err)
	}
	if err := s.UpdateSlot(ctx, &models.Slot{ID: id + 999, Hour: 15, Wday: 1, Room: 1}); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("UpdateSlot(missing) error = %v, want %v", err, response.ErrNotFound)
	}

	if _, err := s.GetSlot(ctx, id+999); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("GetSlot(missing) error = %v, want %v", err, response.ErrNotFound)
	}
	if err := s.DeleteSlot(ctx, id+999); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("DeleteSlot(missing) error = %v, want %v", err, response.ErrNotFound)
	}

	found, err := s.FindSlots(ctx, 11, 1, 1)
	if err != nil {
		t.Fatalf("FindSlots() error = %v", err)
	}
	if !equalIDs(slotIDs(found), []int{id}) {
		t.Errorf("FindSlots(11, 1, 1) = %v, want slot %d only", found, id)
	}
}

func testListSlotsOrder(t *testing.T, s service.Store) {
	for _, slot := range []models.Slot{
		{Hour: 13, Wday: 2, Room: 1},
		{Hour: 11, Wday: 2, Room: 0},
		{Hour: 16, Wday: 1, Room: 1},
		{Hour: 11, Wday: 2, Room: 1},
	} {
		mustSlot(t, s, slot.Hour, slot.Wday, slot.Room)
	}

	slots, err := s.ListSlots(context.Background())
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}

	want := [][3]int{{16, 1, 1}, {11, 2, 0}, {11, 2, 1}, {13, 2, 1}}
	if len(slots) != len(want) {
		t.Fatalf("ListSlots() returned %d slots, want %d", len(slots), len(want))
	}
	for i, w := range want {
		got := [3]int{slots[i].Hour, slots[i].Wday, slots[i].Room}
		if got != w {
			t.Errorf("slots[%d] = %v, want %v", i, got, w)
		}
	}
}

func testDeleteSlotDropsAssignments(t *testing.T, s service.Store) {
	ctx := context.Background()

	slotID := mustSlot(t, s, 12, 2, 0)
	tutorID := mustTutor(t, s, "Ada")

	mustAssign(t, s, slotID, tutorID)
	if err := s.AddSlotTutor(ctx, slotID, tutorID); !errors.Is(err, response.ErrConflict) {
		t.Errorf("AddSlotTutor(again) error = %v, want %v", err, response.ErrConflict)
	}

	if err := s.DeleteSlot(ctx, slotID); err != nil {
		t.Fatalf("DeleteSlot() error = %v", err)
	}

	slots, err := s.SlotsForTutor(ctx, tutorID)
	if err != nil {
		t.Fatalf("SlotsForTutor() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("SlotsForTutor() = %v, want none", slots)
	}
}

func testDeleteAllSlotsDropsAssignments(t *testing.T, s service.Store) {
	ctx := context.Background()

	first := mustSlot(t, s, 12, 2, 0)
	second := mustSlot(t, s, 13, 2, 0)
	tutorID := mustTutor(t, s, "Ada")
	mustAssign(t, s, first, tutorID)
	mustAssign(t, s, second, tutorID)

	n, err := s.DeleteAllSlots(ctx)
	if err != nil {
		t.Fatalf("DeleteAllSlots() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteAllSlots() = %d, want 2", n)
	}

	held, err := s.SlotsForTutor(ctx, tutorID)
	if err != nil {
		t.Fatalf("SlotsForTutor() error = %v", err)
	}
	if len(held) != 0 {
		t.Errorf("SlotsForTutor() after clear = %v, want none", held)
	}

	again := mustSlot(t, s, 12, 2, 0)
	tutors, err := s.TutorsForSlot(ctx, again)
	if err != nil {
		t.Fatalf("TutorsForSlot() error = %v", err)
	}
	if len(tutors) != 0 {
		t.Errorf("TutorsForSlot() on a recreated slot = %v, want none", tutors)
	}

	if n, err := s.DeleteAllSlots(ctx); err != nil || n != 1 {
		t.Errorf("DeleteAllSlots() = %d, %v, want 1, nil", n, err)
	}
}

func testAssignments(t *testing.T, s service.Store) {
	ctx := context.Background()

	late := mustSlot(t, s, 14, 3, 1)
	early := mustSlot(t, s, 11, 3, 0)
	other := mustSlot(t, s, 12, 4, 0)
	ada := mustTutor(t, s, "Ada")
	grace := mustTutor(t, s, "Grace")

	mustAssign(t, s, late, ada)
	mustAssign(t, s, early, ada)
	mustAssign(t, s, other, grace)

	held, err := s.SlotsForTutor(ctx, ada)
	if err != nil {
		t.Fatalf("SlotsForTutor() error = %v", err)
	}
	if !equalIDs(slotIDs(held), []int{early, late}) {
		t.Errorf("SlotsForTutor(ada) = %v, want slots %d and %d", held, early, late)
	}

	tutors, err := s.TutorsForSlot(ctx, other)
	if err != nil {
		t.Fatalf("TutorsForSlot() error = %v", err)
	}
	if len(tutors) != 1 || tutors[0].ID != grace || tutors[0].Name != "Grace" {
		t.Errorf("TutorsForSlot(other) = %v, want Grace only", tutors)
	}

	if err := s.AddSlotTutor(ctx, late+999, ada); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("AddSlotTutor(missing slot) error = %v, want %v", err, response.ErrNotFound)
	}
	if err := s.AddSlotTutor(ctx, late, grace+999); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("AddSlotTutor(missing tutor) error = %v, want %v", err, response.ErrNotFound)
	}

	if err := s.RemoveSlotTutor(ctx, late, ada); err != nil {
		t.Fatalf("RemoveSlotTutor() error = %v", err)
	}
	if err := s.RemoveSlotTutor(ctx, late, ada); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("RemoveSlotTutor(again) error = %v, want %v", err, response.ErrNotFound)
	}

	held, _ = s.SlotsForTutor(ctx, ada)
	if !equalIDs(slotIDs(held), []int{early}) {
		t.Errorf("SlotsForTutor(ada) after remove = %v, want slot %d", held, early)
	}
}

func testInTxRollback(t *testing.T, s service.Store) {
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx service.Store) error {
		slotID, err := tx.CreateSlot(ctx, &models.Slot{Hour: 11, Wday: 1, Room: 0})
		if err != nil {
			return err
		}
		tutorID, err := tx.CreateTutor(ctx, &models.Tutor{Name: "Grace"})
		if err != nil {
			return err
		}
		if err := tx.AddSlotTutor(ctx, slotID, tutorID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	slots, err := s.ListSlots(ctx)
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("ListSlots() after rollback = %v, want none", slots)
	}
}

func testInTxRollbackOnConflict(t *testing.T, s service.Store) {
	ctx := context.Background()

	kept := mustSlot(t, s, 11, 1, 0)

	err := s.InTx(ctx, func(tx service.Store) error {
		if _, err := tx.CreateSlot(ctx, &models.Slot{Hour: 12, Wday: 1, Room: 0}); err != nil {
			return err
		}
		_, err := tx.CreateSlot(ctx, &models.Slot{Hour: 11, Wday: 1, Room: 0})
		return err
	})
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("InTx() error = %v, want %v", err, response.ErrConflict)
	}

	slots, err := s.ListSlots(ctx)
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}
	if !equalIDs(slotIDs(slots), []int{kept}) {
		t.Errorf("ListSlots() after rollback = %v, want slot %d only", slots, kept)
	}
}

func testInTxCommit(t *testing.T, s service.Store) {
	ctx := context.Background()

	var id int
	err := s.InTx(ctx, func(tx service.Store) error {
		var err error
		id, err = tx.CreateSlot(ctx, &models.Slot{Hour: 11, Wday: 1, Room: 0})
		if err != nil {
			return err
		}
		// nested transactions join the outer one
		return tx.InTx(ctx, func(inner service.Store) error {
			_, err := inner.GetSlot(ctx, id)
			return err
		})
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}

	if _, err := s.GetSlot(ctx, id); err != nil {
		t.Errorf("GetSlot() after commit error = %v", err)
	}
}

func testFindAvailabilities(t *testing.T, s service.Store) {
	ctx := context.Background()

	tutorID := mustTutor(t, s, "Ada")
	var want []int
	for _, a := range []models.Availability{
		{TutorID: tutorID, Hour: 12, Wday: 3, Semester: "20113", Preference: 1},
		{TutorID: tutorID, Hour: 12, Wday: 3, Semester: "20111"},
		{TutorID: tutorID, Hour: 13, Wday: 3, Semester: "20113"},
		{TutorID: tutorID, Hour: 12, Wday: 4, Semester: "20113"},
		{TutorID: tutorID, Hour: 12, Wday: 3, Semester: "20113", Preference: 2},
	} {
		id, err := s.CreateAvailability(ctx, &a)
		if err != nil {
			t.Fatalf("CreateAvailability() error = %v", err)
		}
		if a.Hour == 12 && a.Wday == 3 && a.Semester == "20113" {
			want = append(want, id)
		}
	}

	got, err := s.FindAvailabilities(ctx, 12, 3, "20113")
	if err != nil {
		t.Fatalf("FindAvailabilities() error = %v", err)
	}
	ids := make([]int, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	if !equalIDs(ids, want) {
		t.Fatalf("FindAvailabilities() = %v, want ids %v", got, want)
	}
	if got[0].Preference != 1 || got[1].Preference != 2 {
		t.Errorf("FindAvailabilities() preferences = %d, %d, want 1, 2", got[0].Preference, got[1].Preference)
	}

	if err := s.DeleteAvailability(ctx, want[0]); err != nil {
		t.Fatalf("DeleteAvailability() error = %v", err)
	}
	if err := s.DeleteAvailability(ctx, want[0]); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("DeleteAvailability(again) error = %v, want %v", err, response.ErrNotFound)
	}
}

func testPropertyUpsert(t *testing.T, s service.Store) {
	ctx := context.Background()

	if _, err := s.GetProperty(ctx); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("GetProperty() on empty store error = %v, want %v", err, response.ErrNotFound)
	}

	for _, want := range []models.Property{
		{Semester: "20121", TutoringStart: 10, TutoringEnd: 16},
		{Semester: "20123", TutoringStart: 11, TutoringEnd: 17, CoursesurveysActive: true},
	} {
		if err := s.SaveProperty(ctx, &want); err != nil {
			t.Fatalf("SaveProperty(%+v) error = %v", want, err)
		}

		got, err := s.GetProperty(ctx)
		if err != nil {
			t.Fatalf("GetProperty() error = %v", err)
		}
		if *got != want {
			t.Errorf("GetProperty() = %+v, want %+v", *got, want)
		}
	}
}

func testKlasses(t *testing.T, s service.Store) {
	ctx := context.Background()

	courseID, err := s.CreateCourse(ctx, &models.Course{Dept: "CS", Number: "61A", Name: "SICP"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if _, err := s.CreateCourse(ctx, &models.Course{Dept: "CS", Number: "61A"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("CreateCourse(duplicate) error = %v, want %v", err, response.ErrConflict)
	}

	course, err := s.FindCourse(ctx, "CS", "61A")
	if err != nil || course.ID != courseID || course.Name != "SICP" {
		t.Errorf("FindCourse() = %v, %v, want course %d", course, err, courseID)
	}
	if _, err := s.FindCourse(ctx, "CS", "70"); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("FindCourse(missing) error = %v, want %v", err, response.ErrNotFound)
	}

	first, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID, Semester: "20113", Section: "1"})
	if err != nil {
		t.Fatalf("CreateKlass() error = %v", err)
	}
	if _, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID, Semester: "20113", Section: "1"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("CreateKlass(duplicate) error = %v, want %v", err, response.ErrConflict)
	}
	second, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID, Semester: "20113", Section: "2"})
	if err != nil {
		t.Fatalf("CreateKlass(other section) error = %v", err)
	}
	if _, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID, Semester: "20111", Section: "1"}); err != nil {
		t.Fatalf("CreateKlass(other semester) error = %v", err)
	}
	if _, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID + 999, Semester: "20113"}); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("CreateKlass(unknown course) error = %v, want %v", err, response.ErrNotFound)
	}

	klasses, err := s.ListKlasses(ctx, "20113")
	if err != nil {
		t.Fatalf("ListKlasses() error = %v", err)
	}
	ids := make([]int, 0, len(klasses))
	for _, k := range klasses {
		ids = append(ids, k.ID)
	}
	if !equalIDs(ids, []int{first, second}) {
		t.Errorf("ListKlasses(20113) = %v, want klasses %d and %d", klasses, first, second)
	}
}

func testSurveyPerKlass(t *testing.T, s service.Store) {
	ctx := context.Background()

	courseID, err := s.CreateCourse(ctx, &models.Course{Dept: "EE", Number: "40"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	klassID, err := s.CreateKlass(ctx, &models.Klass{CourseID: courseID, Semester: "20113"})
	if err != nil {
		t.Fatalf("CreateKlass() error = %v", err)
	}

	id, err := s.CreateSurvey(ctx, &models.Coursesurvey{KlassID: klassID})
	if err != nil {
		t.Fatalf("CreateSurvey() error = %v", err)
	}
	if _, err := s.CreateSurvey(ctx, &models.Coursesurvey{KlassID: klassID}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("CreateSurvey(second) error = %v, want %v", err, response.ErrConflict)
	}
	if _, err := s.CreateSurvey(ctx, &models.Coursesurvey{KlassID: klassID + 999}); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("CreateSurvey(unknown klass) error = %v, want %v", err, response.ErrNotFound)
	}

	update := models.Coursesurvey{ID: id, KlassID: klassID, MaxSurveyors: 3, Status: models.SurveyDone}
	if err := s.UpdateSurvey(ctx, &update); err != nil {
		t.Fatalf("UpdateSurvey() error = %v", err)
	}

	got, err := s.SurveyForKlass(ctx, klassID)
	if err != nil {
		t.Fatalf("SurveyForKlass() error = %v", err)
	}
	if got.ID != id || got.MaxSurveyors != 3 || got.Status != models.SurveyDone || got.ScheduledAt != nil {
		t.Errorf("SurveyForKlass() = %+v, want the updated survey %d", *got, id)
	}

	if err := s.DeleteSurvey(ctx, id); err != nil {
		t.Fatalf("DeleteSurvey() error = %v", err)
	}
	if _, err := s.GetSurvey(ctx, id); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("GetSurvey(deleted) error = %v, want %v", err, response.ErrNotFound)
	}
	if err := s.UpdateSurvey(ctx, &update); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("UpdateSurvey(deleted) error = %v, want %v", err, response.ErrNotFound)
	}
}
