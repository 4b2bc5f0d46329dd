// Package slot encodes and decodes the compact time representations used by
// bookings and imported lessons.
package slot

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Count is the number of bookable daily periods. Valid indices are 0..Count-1.
const Count = 12

// ErrMalformedSlotData is returned when a persisted slot string contains a
// token that is not an integer.
var ErrMalformedSlotData = errors.New("slot: malformed slot data")

// Set is a sorted, de-duplicated collection of slot indices. The zero value is
// the empty set. Values built through New, Parse, Union or Intersect always
// satisfy the ordering invariant.
type Set []int

// New builds a Set from arbitrary indices.
func New(indices ...int) Set {
	if len(indices) == 0 {
		return nil
	}
	out := make([]int, len(indices))
	copy(out, indices)
	sort.Ints(out)

	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return Set(out[:n])
}

// Parse decodes a comma separated list of indices. Blank input yields an
// empty set and blank tokens are skipped.
func Parse(raw string) (Set, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	tokens := strings.Split(raw, ",")
	values := make([]int, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		v, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: token %q", ErrMalformedSlotData, token)
		}
		values = append(values, v)
	}
	return New(values...), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Set {
	s, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Canonical re-encodes a persisted slot string in sorted, de-duplicated form.
func Canonical(raw string) (string, error) {
	s, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// String returns the canonical comma-joined representation.
func (s Set) String() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Len returns the number of indices in the set.
func (s Set) Len() int { return len(s) }

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool { return len(s) == 0 }

// First returns the smallest index. ok is false for the empty set.
func (s Set) First() (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[0], true
}

// Contains reports whether index is a member.
func (s Set) Contains(index int) bool {
	i := sort.SearchInts(s, index)
	return i < len(s) && s[i] == index
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(other Set) Set {
	var out Set
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] < other[j]:
			i++
		case s[i] > other[j]:
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

// Overlaps reports whether the two sets share at least one index.
func (s Set) Overlaps(other Set) bool {
	return len(s.Intersect(other)) > 0
}

// Union returns the members present in either set.
func (s Set) Union(other Set) Set {
	merged := make([]int, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return New(merged...)
}

// Equal reports whether both sets hold the same indices.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// OutOfRange returns the members outside 0..Count-1.
func (s Set) OutOfRange() []int {
	var bad []int
	for _, v := range s {
		if v < 0 || v >= Count {
			bad = append(bad, v)
		}
	}
	return bad
}

// Values returns a copy of the indices.
func (s Set) Values() []int {
	if len(s) == 0 {
		return []int{}
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}
