// Package inmem is a Store kept in process memory. Tables are plain maps
// guarded by one RWMutex; transactions run against a copy that replaces the
// live tables only when the callback succeeds.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/pkg/response"
)

type assignment struct{ slotID, tutorID int }

type tables struct {
	seq            int
	slots          map[int]models.Slot
	tutors         map[int]models.Tutor
	assignments    map[assignment]struct{}
	availabilities map[int]models.Availability
	courses        map[int]models.Course
	klasses        map[int]models.Klass
	surveys        map[int]models.Coursesurvey
	property       *models.Property
}

func newTables() *tables {
	return &tables{
		slots:          make(map[int]models.Slot),
		tutors:         make(map[int]models.Tutor),
		assignments:    make(map[assignment]struct{}),
		availabilities: make(map[int]models.Availability),
		courses:        make(map[int]models.Course),
		klasses:        make(map[int]models.Klass),
		surveys:        make(map[int]models.Coursesurvey),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:            t.seq,
		slots:          make(map[int]models.Slot, len(t.slots)),
		tutors:         make(map[int]models.Tutor, len(t.tutors)),
		assignments:    make(map[assignment]struct{}, len(t.assignments)),
		availabilities: make(map[int]models.Availability, len(t.availabilities)),
		courses:        make(map[int]models.Course, len(t.courses)),
		klasses:        make(map[int]models.Klass, len(t.klasses)),
		surveys:        make(map[int]models.Coursesurvey, len(t.surveys)),
	}
	for k, v := range t.slots {
		c.slots[k] = v
	}
	for k, v := range t.tutors {
		c.tutors[k] = v
	}
	for k, v := range t.assignments {
		c.assignments[k] = v
	}
	for k, v := range t.availabilities {
		c.availabilities[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.klasses {
		c.klasses[k] = v
	}
	for k, v := range t.surveys {
		c.surveys[k] = v
	}
	if t.property != nil {
		p := *t.property
		c.property = &p
	}
	return c
}

func (t *tables) nextID() int {
	t.seq++
	return t.seq
}

var _ service.Store = (*Storage)(nil)

// Storage implements service.Store.
type Storage struct {
	mu   *sync.RWMutex
	data *tables
	inTx bool
}

func New() *Storage {
	return &Storage{mu: &sync.RWMutex{}, data: newTables()}
}

func (s *Storage) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Storage) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Storage) InTx(ctx context.Context, fn func(tx service.Store) error) error {
	const op = "storage.inmem.InTx"

	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Storage{mu: s.mu, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.data = tx.data
	return nil
}

// Slots

func (s *Storage) CreateSlot(_ context.Context, slot *models.Slot) (int, error) {
	defer s.lock()()

	for _, other := range s.data.slots {
		if other.Hour == slot.Hour && other.Wday == slot.Wday && other.Room == slot.Room {
			return 0, fmt.Errorf("storage.inmem.CreateSlot: %w", response.ErrConflict)
		}
	}

	row := *slot
	row.ID = s.data.nextID()
	s.data.slots[row.ID] = row
	return row.ID, nil
}

func (s *Storage) GetSlot(_ context.Context, id int) (*models.Slot, error) {
	defer s.rlock()()

	slot, ok := s.data.slots[id]
	if !ok {
		return nil, fmt.Errorf("storage.inmem.GetSlot: %w", response.ErrNotFound)
	}
	return &slot, nil
}

func (s *Storage) ListSlots(_ context.Context) ([]models.Slot, error) {
	defer s.rlock()()

	slots := make([]models.Slot, 0, len(s.data.slots))
	for _, slot := range s.data.slots {
		slots = append(slots, slot)
	}
	sortSlots(slots)
	return slots, nil
}

func (s *Storage) FindSlots(_ context.Context, hour, wday, room int) ([]models.Slot, error) {
	defer s.rlock()()

	var slots []models.Slot
	for _, slot := range s.data.slots {
		if slot.Hour == hour && slot.Wday == wday && slot.Room == room {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (s *Storage) UpdateSlot(_ context.Context, slot *models.Slot) error {
	defer s.lock()()

	if _, ok := s.data.slots[slot.ID]; !ok {
		return fmt.Errorf("storage.inmem.UpdateSlot: %w", response.ErrNotFound)
	}
	for _, other := range s.data.slots {
		if other.ID != slot.ID && other.Hour == slot.Hour && other.Wday == slot.Wday && other.Room == slot.Room {
			return fmt.Errorf("storage.inmem.UpdateSlot: %w", response.ErrConflict)
		}
	}
	s.data.slots[slot.ID] = *slot
	return nil
}

func (s *Storage) DeleteSlot(_ context.Context, id int) error {
	defer s.lock()()

	if _, ok := s.data.slots[id]; !ok {
		return fmt.Errorf("storage.inmem.DeleteSlot: %w", response.ErrNotFound)
	}
	delete(s.data.slots, id)
	for a := range s.data.assignments {
		if a.slotID == id {
			delete(s.data.assignments, a)
		}
	}
	return nil
}

func (s *Storage) DeleteAllSlots(_ context.Context) (int, error) {
	defer s.lock()()

	n := len(s.data.slots)
	s.data.slots = make(map[int]models.Slot)
	s.data.assignments = make(map[assignment]struct{})
	return n, nil
}

// Tutors

func (s *Storage) CreateTutor(_ context.Context, tutor *models.Tutor) (int, error) {
	defer s.lock()()

	row := *tutor
	row.ID = s.data.nextID()
	s.data.tutors[row.ID] = row
	return row.ID, nil
}

func (s *Storage) GetTutor(_ context.Context, id int) (*models.Tutor, error) {
	defer s.rlock()()

	tutor, ok := s.data.tutors[id]
	if !ok {
		return nil, fmt.Errorf("storage.inmem.GetTutor: %w", response.ErrNotFound)
	}
	return &tutor, nil
}

func (s *Storage) SlotsForTutor(_ context.Context, tutorID int) ([]models.Slot, error) {
	defer s.rlock()()

	var slots []models.Slot
	for a := range s.data.assignments {
		if a.tutorID == tutorID {
			slots = append(slots, s.data.slots[a.slotID])
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (s *Storage) TutorsForSlot(_ context.Context, slotID int) ([]models.Tutor, error) {
	defer s.rlock()()

	var tutors []models.Tutor
	for a := range s.data.assignments {
		if a.slotID == slotID {
			tutors = append(tutors, s.data.tutors[a.tutorID])
		}
	}
	sort.Slice(tutors, func(i, j int) bool { return tutors[i].ID < tutors[j].ID })
	return tutors, nil
}

func (s *Storage) AddSlotTutor(_ context.Context, slotID, tutorID int) error {
	defer s.lock()()

	if _, ok := s.data.slots[slotID]; !ok {
		return fmt.Errorf("storage.inmem.AddSlotTutor: slot: %w", response.ErrNotFound)
	}
	if _, ok := s.data.tutors[tutorID]; !ok {
		return fmt.Errorf("storage.inmem.AddSlotTutor: tutor: %w", response.ErrNotFound)
	}
	a := assignment{slotID: slotID, tutorID: tutorID}
	if _, ok := s.data.assignments[a]; ok {
		return fmt.Errorf("storage.inmem.AddSlotTutor: %w", response.ErrConflict)
	}
	s.data.assignments[a] = struct{}{}
	return nil
}

func (s *Storage) RemoveSlotTutor(_ context.Context, slotID, tutorID int) error {
	defer s.lock()()

	a := assignment{slotID: slotID, tutorID: tutorID}
	if _, ok := s.data.assignments[a]; !ok {
		return fmt.Errorf("storage.inmem.RemoveSlotTutor: %w", response.ErrNotFound)
	}
	delete(s.data.assignments, a)
	return nil
}

// Availabilities

func (s *Storage) CreateAvailability(_ context.Context, availability *models.Availability) (int, error) {
	defer s.lock()()

	row := *availability
	row.ID = s.data.nextID()
	s.data.availabilities[row.ID] = row
	return row.ID, nil
}

func (s *Storage) DeleteAvailability(_ context.Context, id int) error {
	defer s.lock()()

	if _, ok := s.data.availabilities[id]; !ok {
		return fmt.Errorf("storage.inmem.DeleteAvailability: %w", response.ErrNotFound)
	}
	delete(s.data.availabilities, id)
	return nil
}

func (s *Storage) FindAvailabilities(_ context.Context, hour, wday int, semester string) ([]models.Availability, error) {
	defer s.rlock()()

	var avails []models.Availability
	for _, a := range s.data.availabilities {
		if a.Hour == hour && a.Wday == wday && a.Semester == semester {
			avails = append(avails, a)
		}
	}
	sort.Slice(avails, func(i, j int) bool { return avails[i].ID < avails[j].ID })
	return avails, nil
}

// Properties

func (s *Storage) GetProperty(_ context.Context) (*models.Property, error) {
	defer s.rlock()()

	if s.data.property == nil {
		return nil, fmt.Errorf("storage.inmem.GetProperty: %w", response.ErrNotFound)
	}
	p := *s.data.property
	return &p, nil
}

func (s *Storage) SaveProperty(_ context.Context, property *models.Property) error {
	defer s.lock()()

	p := *property
	s.data.property = &p
	return nil
}

// Classes and course surveys

func (s *Storage) CreateCourse(_ context.Context, course *models.Course) (int, error) {
	defer s.lock()()

	for _, other := range s.data.courses {
		if other.Dept == course.Dept && other.Number == course.Number {
			return 0, fmt.Errorf("storage.inmem.CreateCourse: %w", response.ErrConflict)
		}
	}
	row := *course
	row.ID = s.data.nextID()
	s.data.courses[row.ID] = row
	return row.ID, nil
}

func (s *Storage) GetCourse(_ context.Context, id int) (*models.Course, error) {
	defer s.rlock()()

	course, ok := s.data.courses[id]
	if !ok {
		return nil, fmt.Errorf("storage.inmem.GetCourse: %w", response.ErrNotFound)
	}
	return &course, nil
}

func (s *Storage) FindCourse(_ context.Context, dept, number string) (*models.Course, error) {
	defer s.rlock()()

	for _, course := range s.data.courses {
		if course.Dept == dept && course.Number == number {
			return &course, nil
		}
	}
	return nil, fmt.Errorf("storage.inmem.FindCourse: %w", response.ErrNotFound)
}

func (s *Storage) CreateKlass(_ context.Context, klass *models.Klass) (int, error) {
	defer s.lock()()

	if _, ok := s.data.courses[klass.CourseID]; !ok {
		return 0, fmt.Errorf("storage.inmem.CreateKlass: course: %w", response.ErrNotFound)
	}
	for _, other := range s.data.klasses {
		if other.CourseID == klass.CourseID && other.Semester == klass.Semester && other.Section == klass.Section {
			return 0, fmt.Errorf("storage.inmem.CreateKlass: %w", response.ErrConflict)
		}
	}
	row := *klass
	row.ID = s.data.nextID()
	s.data.klasses[row.ID] = row
	return row.ID, nil
}

func (s *Storage) ListKlasses(_ context.Context, semester string) ([]models.Klass, error) {
	defer s.rlock()()

	var klasses []models.Klass
	for _, k := range s.data.klasses {
		if k.Semester == semester {
			klasses = append(klasses, k)
		}
	}
	sort.Slice(klasses, func(i, j int) bool { return klasses[i].ID < klasses[j].ID })
	return klasses, nil
}

func (s *Storage) CreateSurvey(_ context.Context, survey *models.Coursesurvey) (int, error) {
	defer s.lock()()

	if _, ok := s.data.klasses[survey.KlassID]; !ok {
		return 0, fmt.Errorf("storage.inmem.CreateSurvey: klass: %w", response.ErrNotFound)
	}
	for _, other := range s.data.surveys {
		if other.KlassID == survey.KlassID {
			return 0, fmt.Errorf("storage.inmem.CreateSurvey: %w", response.ErrConflict)
		}
	}
	row := *survey
	row.ID = s.data.nextID()
	s.data.surveys[row.ID] = row
	return row.ID, nil
}

func (s *Storage) GetSurvey(_ context.Context, id int) (*models.Coursesurvey, error) {
	defer s.rlock()()

	survey, ok := s.data.surveys[id]
	if !ok {
		return nil, fmt.Errorf("storage.inmem.GetSurvey: %w", response.ErrNotFound)
	}
	return &survey, nil
}

func (s *Storage) SurveyForKlass(_ context.Context, klassID int) (*models.Coursesurvey, error) {
	defer s.rlock()()

	for _, survey := range s.data.surveys {
		if survey.KlassID == klassID {
			return &survey, nil
		}
	}
	return nil, fmt.Errorf("storage.inmem.SurveyForKlass: %w", response.ErrNotFound)
}

func (s *Storage) UpdateSurvey(_ context.Context, survey *models.Coursesurvey) error {
	defer s.lock()()

	if _, ok := s.data.surveys[survey.ID]; !ok {
		return fmt.Errorf("storage.inmem.UpdateSurvey: %w", response.ErrNotFound)
	}
	s.data.surveys[survey.ID] = *survey
	return nil
}

func (s *Storage) DeleteSurvey(_ context.Context, id int) error {
	defer s.lock()()

	if _, ok := s.data.surveys[id]; !ok {
		return fmt.Errorf("storage.inmem.DeleteSurvey: %w", response.ErrNotFound)
	}
	delete(s.data.surveys, id)
	return nil
}

func sortSlots(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Wday != b.Wday {
			return a.Wday < b.Wday
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.Room < b.Room
	})
}
