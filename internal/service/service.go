package service

import (
	"context"
	"log/slog"
	"time"

	"hkn-admin/internal/lock"
	"hkn-admin/internal/models"
	"hkn-admin/internal/rooms"
	"hkn-admin/internal/validation"

	"github.com/go-playground/validator/v10"
)

const defaultLockTTL = 10 * time.Second

type Service struct {
	store    Store
	locker   lock.Locker
	settings SettingsProvider
	validate *validation.Validator
	log      *slog.Logger
	lockTTL  time.Duration
}

func NewService(log *slog.Logger, store Store, locker lock.Locker, settings SettingsProvider) *Service {
	v := validation.New()
	err := v.RegisterValidation("room", func(fl validator.FieldLevel) bool {
		return rooms.Valid(int(fl.Field().Int()))
	}, validation.ErrInvalidRoom.Error(), validation.ErrInvalidRoom)
	if err != nil {
		panic("service: register room validation: " + err.Error())
	}

	return &Service{
		store:    store,
		locker:   locker,
		settings: settings,
		validate: v,
		log:      log,
		lockTTL:  defaultLockTTL,
	}
}

// WithLockTTL sets how long a tutor assignment lock may be held.
func (s *Service) WithLockTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// Store is the persistence layer. Lookups of a single record return
// response.ErrNotFound when it does not exist; inserts violating a unique
// constraint return response.ErrConflict.
type Store interface {
	// InTx runs fn against a transactional view of the store. Nothing fn
	// wrote is kept when it returns an error.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Slots
	CreateSlot(ctx context.Context, slot *models.Slot) (int, error)
	GetSlot(ctx context.Context, id int) (*models.Slot, error)
	ListSlots(ctx context.Context) ([]models.Slot, error)
	FindSlots(ctx context.Context, hour, wday, room int) ([]models.Slot, error)
	UpdateSlot(ctx context.Context, slot *models.Slot) error
	DeleteSlot(ctx context.Context, id int) error
	DeleteAllSlots(ctx context.Context) (int, error)

	// Tutors
	CreateTutor(ctx context.Context, tutor *models.Tutor) (int, error)
	GetTutor(ctx context.Context, id int) (*models.Tutor, error)
	SlotsForTutor(ctx context.Context, tutorID int) ([]models.Slot, error)
	TutorsForSlot(ctx context.Context, slotID int) ([]models.Tutor, error)
	AddSlotTutor(ctx context.Context, slotID, tutorID int) error
	RemoveSlotTutor(ctx context.Context, slotID, tutorID int) error

	// Availabilities
	CreateAvailability(ctx context.Context, availability *models.Availability) (int, error)
	DeleteAvailability(ctx context.Context, id int) error
	FindAvailabilities(ctx context.Context, hour, wday int, semester string) ([]models.Availability, error)

	// Properties
	GetProperty(ctx context.Context) (*models.Property, error)
	SaveProperty(ctx context.Context, property *models.Property) error

	// Classes and course surveys
	CreateCourse(ctx context.Context, course *models.Course) (int, error)
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	FindCourse(ctx context.Context, dept, number string) (*models.Course, error)
	CreateKlass(ctx context.Context, klass *models.Klass) (int, error)
	ListKlasses(ctx context.Context, semester string) ([]models.Klass, error)
	CreateSurvey(ctx context.Context, survey *models.Coursesurvey) (int, error)
	GetSurvey(ctx context.Context, id int) (*models.Coursesurvey, error)
	SurveyForKlass(ctx context.Context, klassID int) (*models.Coursesurvey, error)
	UpdateSurvey(ctx context.Context, survey *models.Coursesurvey) error
	DeleteSurvey(ctx context.Context, id int) error
}
