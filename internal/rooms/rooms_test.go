package rooms

import (
	"errors"
	"testing"
)

func TestValid(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{code: Cory, want: true},
		{code: Soda, want: true},
		{code: -1, want: false},
		{code: 3, want: false},
	}
	for _, tt := range tests {
		if got := Valid(tt.code); got != tt.want {
			t.Errorf("Valid(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	if name, err := Name(Soda); err != nil || name != "Soda" {
		t.Errorf("Name(Soda) = %q, %v", name, err)
	}
	if name, err := Name(Cory); err != nil || name != "Cory" {
		t.Errorf("Name(Cory) = %q, %v", name, err)
	}
	if _, err := Name(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Name(3) error = %v, want ErrNotFound", err)
	}
}

func TestAll(t *testing.T) {
	got := All()
	if len(got) != 2 || got[0] != Cory || got[1] != Soda {
		t.Errorf("All() = %v", got)
	}
}
