// Package importer turns scraped timetable CSV files into lesson occupancy
// and reconciles it with the lessons table.
package importer

import (
	"sort"
	"time"

	"github.com/example/room-booking/internal/slot"
)

// Key identifies one lesson row.
type Key struct {
	RoomID int64
	Date   time.Time
}

// Schedule maps (room, date) to the union of every slot imported for it.
type Schedule map[Key]slot.Set

// Add unions slots into the entry for key.
func (s Schedule) Add(key Key, slots slot.Set) {
	if slots.IsEmpty() {
		return
	}
	s[key] = s[key].Union(slots)
}

// Merge unions every entry of other into s.
func (s Schedule) Merge(other Schedule) {
	for k, v := range other {
		s.Add(k, v)
	}
}

// Keys returns the keys ordered by date, then room.
func (s Schedule) Keys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].Date.Equal(keys[j].Date) {
			return keys[i].Date.Before(keys[j].Date)
		}
		return keys[i].RoomID < keys[j].RoomID
	})
}

// RoomLookup maps a classroom number to a room ID.
type RoomLookup func(number int) (int64, bool)

// DefaultRoomLookup is the fixed classroom table: 635 is room 3, 101-108 are
// rooms 4-11 and 116-119 are rooms 12-15.
func DefaultRoomLookup(number int) (int64, bool) {
	switch {
	case number == 635:
		return 3, true
	case number >= 101 && number <= 108:
		return int64(4 + number - 101), true
	case number >= 116 && number <= 119:
		return int64(12 + number - 116), true
	default:
		return 0, false
	}
}
