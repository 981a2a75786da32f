package petri

import "github.com/pflow-xyz/stpn/errs"

// Marking maps place name to non-negative token count; a place absent from
// the map is treated as holding zero tokens (spec.md §3).
type Marking map[string]int

// NewMarking returns an empty Marking.
func NewMarking() Marking { return make(Marking) }

// Get returns the token count of place, or 0 if absent.
func (m Marking) Get(place string) int { return m[place] }

// AddTokens increases place's count by n.
func (m Marking) AddTokens(place string, n int) {
	m[place] += n
}

// RemoveTokens decreases place's count by n, failing with an
// *errs.DomainError (UnderflowError) if the result would go negative.
func (m Marking) RemoveTokens(place string, n int) error {
	cur := m[place]
	if cur-n < 0 {
		return errs.UnderflowError(place, cur, n)
	}
	m[place] = cur - n
	return nil
}

// SetTokens assigns place's count directly.
func (m Marking) SetTokens(place string, n int) {
	m[place] = n
}

// SetTokensFrom replaces m's contents with a copy of other's.
func (m Marking) SetTokensFrom(other Marking) {
	for k := range m {
		delete(m, k)
	}
	for k, v := range other {
		m[k] = v
	}
}

// Clone returns an independent copy of m.
func (m Marking) Clone() Marking {
	out := make(Marking, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether m and other hold the same token count for every
// place either mentions (absent == 0).
func (m Marking) Equal(other Marking) bool {
	for k, v := range m {
		if other.Get(k) != v {
			return false
		}
	}
	for k, v := range other {
		if m.Get(k) != v {
			return false
		}
	}
	return true
}

