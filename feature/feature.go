// Package feature implements the Featurizable substrate: a type-tagged map
// from feature-type-tag to feature-value, shared by states, transitions and
// successions (spec.md §3, design note §9: "model this ... as a type-keyed
// map to a small enumerated union ... where dynamic extensibility by third
// parties is desired"). At most one value is stored per tag.
package feature

import (
	"fmt"
	"reflect"
	"sort"
)

// Tag names a feature kind. Tags are plain strings rather than an iota enum
// so that a caller outside this module can attach its own feature kinds to
// a Featurizable without touching this package — the "dynamic
// extensibility" the design notes call for.
type Tag string

// Equaler lets a feature value define content equality instead of falling
// back to reflect.DeepEqual. Feature value types that embed slices/maps
// with meaningful order-independent equality should implement this.
type Equaler interface {
	FeatureEqual(other any) bool
}

// Hasher lets a feature value contribute a stable string to a
// Featurizable's derived hash instead of the default fmt-based fallback.
type Hasher interface {
	FeatureHash() string
}

// Featurizable is an immutable-by-convention map from Tag to feature value.
// The zero value is not usable; use New.
type Featurizable struct {
	values map[Tag]any
}

// New returns an empty Featurizable.
func New() Featurizable {
	return Featurizable{values: make(map[Tag]any)}
}

// Set attaches (or replaces) the value stored under tag.
func (f *Featurizable) Set(tag Tag, value any) {
	if f.values == nil {
		f.values = make(map[Tag]any)
	}
	f.values[tag] = value
}

// Get returns the value stored under tag, if any.
func (f Featurizable) Get(tag Tag) (any, bool) {
	v, ok := f.values[tag]
	return v, ok
}

// Has reports whether tag is present.
func (f Featurizable) Has(tag Tag) bool {
	_, ok := f.values[tag]
	return ok
}

// Delete removes the value stored under tag, if any.
func (f *Featurizable) Delete(tag Tag) {
	delete(f.values, tag)
}

// Tags returns the set of tags present, in sorted order (for deterministic
// iteration; insertion order is not semantically significant per spec.md §3:
// "Featurizable equals/hash must hash by the unordered collection of
// feature values").
func (f Featurizable) Tags() []Tag {
	tags := make([]Tag, 0, len(f.values))
	for t := range f.values {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Len returns the number of features attached.
func (f Featurizable) Len() int { return len(f.values) }

// Clone returns a shallow copy: a new map with the same tag->value
// pairings. Feature values themselves are treated as immutable or
// nearly-immutable records per spec.md §3 and are not deep-copied.
func (f Featurizable) Clone() Featurizable {
	out := New()
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether f and other carry the same unordered collection of
// feature values: same tag set, and for each tag, equal values (via
// Equaler when a value implements it, else reflect.DeepEqual).
func (f Featurizable) Equal(other Featurizable) bool {
	if len(f.values) != len(other.values) {
		return false
	}
	for tag, v := range f.values {
		ov, ok := other.values[tag]
		if !ok {
			return false
		}
		if !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if eq, ok := a.(Equaler); ok {
		return eq.FeatureEqual(b)
	}
	return reflect.DeepEqual(a, b)
}

// Hash derives a stable string digest from the unordered collection of
// feature values: tag-sorted so that map iteration order never leaks in,
// using Hasher when a value implements it and a DeepEqual-stable fallback
// (the value's type name plus a %v rendering with map keys sorted)
// otherwise.
func (f Featurizable) Hash() string {
	tags := f.Tags()
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		v := f.values[t]
		var h string
		if hasher, ok := v.(Hasher); ok {
			h = hasher.FeatureHash()
		} else {
			h = reflectHash(v)
		}
		parts = append(parts, string(t)+"="+h)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

func reflectHash(v any) string {
	return reflect.TypeOf(v).String() + ":" + sprintStable(v)
}

// sprintStable renders v deterministically enough for hashing purposes;
// it is not meant to be a pretty printer.
func sprintStable(v any) string {
	return toStableString(reflect.ValueOf(v))
}

func toStableString(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		strs := make([]string, len(keys))
		for i, k := range keys {
			strs[i] = toStableString(k) + ":" + toStableString(rv.MapIndex(k))
		}
		sort.Strings(strs)
		out := "{"
		for i, s := range strs {
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out + "}"
	case reflect.Slice, reflect.Array:
		out := "["
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				out += ","
			}
			out += toStableString(rv.Index(i))
		}
		return out + "]"
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return toStableString(rv.Elem())
	default:
		return fmt.Sprintf("%v", rv.Interface())
	}
}
