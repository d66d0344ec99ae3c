package service

import (
	"context"
	"errors"
	"fmt"

	"hkn-admin/internal/models"
	"hkn-admin/pkg/response"
)

// Settings are the administrator-controlled values the slot rules depend
// on. Hours form the half-open window [TutoringStart, TutoringEnd).
type Settings struct {
	TutoringStart int
	TutoringEnd   int
	Semester      string
}

// SettingsProvider is consulted on every validation and lookup, so changes
// made by an administrator apply immediately.
type SettingsProvider interface {
	Settings(ctx context.Context) (Settings, error)
}

type StaticSettings Settings

func (s StaticSettings) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

type PropertyGetter interface {
	GetProperty(ctx context.Context) (*models.Property, error)
}

// PropertySettings reads the properties row, falling back to defaults until
// one has been saved.
type PropertySettings struct {
	store    PropertyGetter
	defaults Settings
}

func NewPropertySettings(store PropertyGetter, defaults Settings) *PropertySettings {
	return &PropertySettings{store: store, defaults: defaults}
}

func (p *PropertySettings) Settings(ctx context.Context) (Settings, error) {
	const op = "service.PropertySettings.Settings"

	prop, err := p.store.GetProperty(ctx)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return p.defaults, nil
		}
		return Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	return Settings{
		TutoringStart: prop.TutoringStart,
		TutoringEnd:   prop.TutoringEnd,
		Semester:      prop.Semester,
	}, nil
}
