package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hkn-admin/pkg/response"

	"github.com/lib/pq"
)

func TestStorageErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, response.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), response.ErrNotFound},
		{"unique", &pq.Error{Code: uniqueViolation, Constraint: "slots_hour_wday_room_key"}, response.ErrConflict},
		{"foreign key", &pq.Error{Code: foreignKeyViolation}, response.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storageErr("op", tt.err)
			if !errors.Is(err, tt.want) {
				t.Errorf("storageErr(%v) = %v, want %v", tt.err, err, tt.want)
			}
		})
	}

	other := errors.New("connection reset")
	err := storageErr("op", other)
	if !errors.Is(err, other) || errors.Is(err, response.ErrNotFound) || errors.Is(err, response.ErrConflict) {
		t.Errorf("storageErr(%v) = %v, want it wrapped unchanged", other, err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups++
		case strings.HasSuffix(name, ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("got %d up and %d down migrations, want a matching non-zero count", ups, downs)
	}
}
