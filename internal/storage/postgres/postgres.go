package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hkn-admin/internal/models"
	"hkn-admin/internal/service"
	"hkn-admin/pkg/response"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var _ service.Store = (*Storage)(nil)

type Storage struct {
	db *sqlx.DB
	q  sqlx.ExtContext
	tx *sqlx.Tx
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sqlx.Connect("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, q: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil || s.tx != nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) InTx(ctx context.Context, fn func(tx service.Store) error) error {
	const op = "storage.postgres.InTx"

	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	if err := fn(&Storage{db: s.db, q: tx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// storageErr maps driver errors onto the response sentinels.
func storageErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, response.ErrConflict)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, response.ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (s *Storage) insert(ctx context.Context, op, query string, args ...any) (int, error) {
	var id int
	if err := sqlx.GetContext(ctx, s.q, &id, query, args...); err != nil {
		return 0, storageErr(op, err)
	}
	return id, nil
}

// exec runs a statement expected to touch at least one row.
func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### slots ####

func (s *Storage) CreateSlot(ctx context.Context, slot *models.Slot) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateSlot",
		`INSERT INTO slots (hour, wday, room) VALUES ($1, $2, $3) RETURNING id`,
		slot.Hour, slot.Wday, slot.Room)
}

func (s *Storage) GetSlot(ctx context.Context, id int) (*models.Slot, error) {
	const op = "storage.postgres.GetSlot"

	var slot models.Slot
	err := sqlx.GetContext(ctx, s.q, &slot, `SELECT id, hour, wday, room FROM slots WHERE id = $1`, id)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &slot, nil
}

func (s *Storage) ListSlots(ctx context.Context) ([]models.Slot, error) {
	const op = "storage.postgres.ListSlots"

	var slots []models.Slot
	err := sqlx.SelectContext(ctx, s.q, &slots, `SELECT id, hour, wday, room FROM slots ORDER BY wday, hour, room`)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return slots, nil
}

func (s *Storage) FindSlots(ctx context.Context, hour, wday, room int) ([]models.Slot, error) {
	const op = "storage.postgres.FindSlots"

	var slots []models.Slot
	err := sqlx.SelectContext(ctx, s.q, &slots,
		`SELECT id, hour, wday, room FROM slots WHERE hour = $1 AND wday = $2 AND room = $3 ORDER BY id`,
		hour, wday, room)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return slots, nil
}

func (s *Storage) UpdateSlot(ctx context.Context, slot *models.Slot) error {
	return s.exec(ctx, "storage.postgres.UpdateSlot",
		`UPDATE slots SET hour = $1, wday = $2, room = $3 WHERE id = $4`,
		slot.Hour, slot.Wday, slot.Room, slot.ID)
}

func (s *Storage) DeleteSlot(ctx context.Context, id int) error {
	return s.exec(ctx, "storage.postgres.DeleteSlot", `DELETE FROM slots WHERE id = $1`, id)
}

func (s *Storage) DeleteAllSlots(ctx context.Context) (int, error) {
	const op = "storage.postgres.DeleteAllSlots"

	res, err := s.q.ExecContext(ctx, `DELETE FROM slots`)
	if err != nil {
		return 0, storageErr(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(n), nil
}

// #### tutors ####

func (s *Storage) CreateTutor(ctx context.Context, tutor *models.Tutor) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateTutor",
		`INSERT INTO tutors (person_id, name, languages) VALUES ($1, $2, $3) RETURNING id`,
		tutor.PersonID, tutor.Name, tutor.Languages)
}

func (s *Storage) GetTutor(ctx context.Context, id int) (*models.Tutor, error) {
	const op = "storage.postgres.GetTutor"

	var tutor models.Tutor
	err := sqlx.GetContext(ctx, s.q, &tutor, `SELECT id, person_id, name, languages FROM tutors WHERE id = $1`, id)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &tutor, nil
}

func (s *Storage) SlotsForTutor(ctx context.Context, tutorID int) ([]models.Slot, error) {
	const op = "storage.postgres.SlotsForTutor"

	var slots []models.Slot
	err := sqlx.SelectContext(ctx, s.q, &slots, `
		SELECT s.id, s.hour, s.wday, s.room
		FROM slots s
		JOIN slots_tutors st ON st.slot_id = s.id
		WHERE st.tutor_id = $1
		ORDER BY s.wday, s.hour, s.room`, tutorID)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return slots, nil
}

func (s *Storage) TutorsForSlot(ctx context.Context, slotID int) ([]models.Tutor, error) {
	const op = "storage.postgres.TutorsForSlot"

	var tutors []models.Tutor
	err := sqlx.SelectContext(ctx, s.q, &tutors, `
		SELECT t.id, t.person_id, t.name, t.languages
		FROM tutors t
		JOIN slots_tutors st ON st.tutor_id = t.id
		WHERE st.slot_id = $1
		ORDER BY t.id`, slotID)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return tutors, nil
}

func (s *Storage) AddSlotTutor(ctx context.Context, slotID, tutorID int) error {
	const op = "storage.postgres.AddSlotTutor"

	_, err := s.q.ExecContext(ctx, `INSERT INTO slots_tutors (slot_id, tutor_id) VALUES ($1, $2)`, slotID, tutorID)
	if err != nil {
		return storageErr(op, err)
	}

	return nil
}

func (s *Storage) RemoveSlotTutor(ctx context.Context, slotID, tutorID int) error {
	return s.exec(ctx, "storage.postgres.RemoveSlotTutor",
		`DELETE FROM slots_tutors WHERE slot_id = $1 AND tutor_id = $2`, slotID, tutorID)
}

// #### availabilities ####

func (s *Storage) CreateAvailability(ctx context.Context, a *models.Availability) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateAvailability", `
		INSERT INTO availabilities (tutor_id, hour, wday, semester, preference)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.TutorID, a.Hour, a.Wday, a.Semester, a.Preference)
}

func (s *Storage) DeleteAvailability(ctx context.Context, id int) error {
	return s.exec(ctx, "storage.postgres.DeleteAvailability", `DELETE FROM availabilities WHERE id = $1`, id)
}

func (s *Storage) FindAvailabilities(ctx context.Context, hour, wday int, semester string) ([]models.Availability, error) {
	const op = "storage.postgres.FindAvailabilities"

	var avails []models.Availability
	err := sqlx.SelectContext(ctx, s.q, &avails, `
		SELECT id, tutor_id, hour, wday, semester, preference
		FROM availabilities
		WHERE hour = $1 AND wday = $2 AND semester = $3
		ORDER BY id`, hour, wday, semester)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return avails, nil
}

// #### properties ####

func (s *Storage) GetProperty(ctx context.Context) (*models.Property, error) {
	const op = "storage.postgres.GetProperty"

	var prop models.Property
	err := sqlx.GetContext(ctx, s.q, &prop, `
		SELECT semester, tutoring_start, tutoring_end, coursesurveys_active
		FROM properties WHERE id = 1`)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &prop, nil
}

func (s *Storage) SaveProperty(ctx context.Context, prop *models.Property) error {
	const op = "storage.postgres.SaveProperty"

	_, err := sqlx.NamedExecContext(ctx, s.q, `
		INSERT INTO properties (id, semester, tutoring_start, tutoring_end, coursesurveys_active)
		VALUES (1, :semester, :tutoring_start, :tutoring_end, :coursesurveys_active)
		ON CONFLICT (id) DO UPDATE
		SET semester = EXCLUDED.semester,
			tutoring_start = EXCLUDED.tutoring_start,
			tutoring_end = EXCLUDED.tutoring_end,
			coursesurveys_active = EXCLUDED.coursesurveys_active`, prop)
	if err != nil {
		return storageErr(op, err)
	}

	return nil
}

// #### classes and course surveys ####

func (s *Storage) CreateCourse(ctx context.Context, c *models.Course) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateCourse",
		`INSERT INTO courses (dept, number, name) VALUES ($1, $2, $3) RETURNING id`,
		c.Dept, c.Number, c.Name)
}

func (s *Storage) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	const op = "storage.postgres.GetCourse"

	var c models.Course
	if err := sqlx.GetContext(ctx, s.q, &c, `SELECT id, dept, number, name FROM courses WHERE id = $1`, id); err != nil {
		return nil, storageErr(op, err)
	}

	return &c, nil
}

func (s *Storage) FindCourse(ctx context.Context, dept, number string) (*models.Course, error) {
	const op = "storage.postgres.FindCourse"

	var c models.Course
	err := sqlx.GetContext(ctx, s.q, &c,
		`SELECT id, dept, number, name FROM courses WHERE dept = $1 AND number = $2`, dept, number)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &c, nil
}

func (s *Storage) CreateKlass(ctx context.Context, k *models.Klass) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateKlass", `
		INSERT INTO klasses (course_id, semester, section, instructor)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		k.CourseID, k.Semester, k.Section, k.Instructor)
}

func (s *Storage) ListKlasses(ctx context.Context, semester string) ([]models.Klass, error) {
	const op = "storage.postgres.ListKlasses"

	var klasses []models.Klass
	err := sqlx.SelectContext(ctx, s.q, &klasses, `
		SELECT id, course_id, semester, section, instructor
		FROM klasses WHERE semester = $1 ORDER BY id`, semester)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return klasses, nil
}

func (s *Storage) CreateSurvey(ctx context.Context, cs *models.Coursesurvey) (int, error) {
	return s.insert(ctx, "storage.postgres.CreateSurvey", `
		INSERT INTO coursesurveys (klass_id, max_surveyors, status, scheduled_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		cs.KlassID, cs.MaxSurveyors, cs.Status, cs.ScheduledAt)
}

func (s *Storage) GetSurvey(ctx context.Context, id int) (*models.Coursesurvey, error) {
	const op = "storage.postgres.GetSurvey"

	var cs models.Coursesurvey
	err := sqlx.GetContext(ctx, s.q, &cs, `
		SELECT id, klass_id, max_surveyors, status, scheduled_at
		FROM coursesurveys WHERE id = $1`, id)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &cs, nil
}

func (s *Storage) SurveyForKlass(ctx context.Context, klassID int) (*models.Coursesurvey, error) {
	const op = "storage.postgres.SurveyForKlass"

	var cs models.Coursesurvey
	err := sqlx.GetContext(ctx, s.q, &cs, `
		SELECT id, klass_id, max_surveyors, status, scheduled_at
		FROM coursesurveys WHERE klass_id = $1`, klassID)
	if err != nil {
		return nil, storageErr(op, err)
	}

	return &cs, nil
}

func (s *Storage) UpdateSurvey(ctx context.Context, cs *models.Coursesurvey) error {
	return s.exec(ctx, "storage.postgres.UpdateSurvey", `
		UPDATE coursesurveys SET max_surveyors = $1, status = $2, scheduled_at = $3
		WHERE id = $4`,
		cs.MaxSurveyors, cs.Status, cs.ScheduledAt, cs.ID)
}

func (s *Storage) DeleteSurvey(ctx context.Context, id int) error {
	return s.exec(ctx, "storage.postgres.DeleteSurvey", `DELETE FROM coursesurveys WHERE id = $1`, id)
}
