package models

import "sort"

// AdjacentTo reports whether s and other fall on the same weekday one hour
// apart. Rooms are not compared.
func (s Slot) AdjacentTo(other Slot) bool {
	if s.Wday != other.Wday {
		return false
	}
	d := s.Hour - other.Hour
	return d == 1 || d == -1
}

// Block is a run of adjacent slots in one room, e.g. Cory Mon 11:00-13:00.
type Block struct {
	Room  int
	Wday  int
	Start int
	End   int // exclusive
	Slots []Slot
}

// MergeAdjacent groups slots into blocks of consecutive hours per room and
// weekday, ordered by room, weekday and start hour.
func MergeAdjacent(slots []Slot) []Block {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		if a.Wday != b.Wday {
			return a.Wday < b.Wday
		}
		return a.Hour < b.Hour
	})

	var blocks []Block
	for _, s := range sorted {
		if n := len(blocks); n > 0 {
			last := &blocks[n-1]
			prev := last.Slots[len(last.Slots)-1]
			if last.Room == s.Room && prev.AdjacentTo(s) {
				last.End = s.Hour + 1
				last.Slots = append(last.Slots, s)
				continue
			}
		}
		blocks = append(blocks, Block{
			Room:  s.Room,
			Wday:  s.Wday,
			Start: s.Hour,
			End:   s.Hour + 1,
			Slots: []Slot{s},
		})
	}
	return blocks
}
