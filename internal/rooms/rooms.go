// Package rooms is the fixed registry of tutoring offices.
package rooms

import (
	"errors"
	"fmt"
	"sort"
)

const (
	Cory = 0
	Soda = 1
)

var ErrNotFound = errors.New("room not found")

var names = map[int]string{
	Cory: "Cory",
	Soda: "Soda",
}

func Valid(code int) bool {
	_, ok := names[code]
	return ok
}

// Name returns the display name for a room code.
func Name(code int) (string, error) {
	name, ok := names[code]
	if !ok {
		return "", fmt.Errorf("room %d: %w", code, ErrNotFound)
	}
	return name, nil
}

// All returns every valid room code in ascending order.
func All() []int {
	codes := make([]int, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
