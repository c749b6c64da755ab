package models

// fieldGroup is implemented by the value types a Section can hold.
type fieldGroup interface {
	// IsEmpty reports whether no field of the group is set.
	IsEmpty() bool
}

// Section is a sub-grouping of a person: either absent, or present with at
// least one field set. The zero Section is absent.
type Section[T fieldGroup] struct {
	value   T
	present bool
}

// Absent returns the empty section.
func Absent[T fieldGroup]() Section[T] {
	return Section[T]{}
}

// SectionOf wraps v as a present section. A value with no field set collapses
// to Absent, so "present but empty" cannot be represented.
func SectionOf[T fieldGroup](v T) Section[T] {
	if v.IsEmpty() {
		return Section[T]{}
	}
	return Section[T]{value: v, present: true}
}

func (s Section[T]) IsPresent() bool {
	return s.present
}

// Get returns the held value and whether the section is present.
func (s Section[T]) Get() (T, bool) {
	return s.value, s.present
}
