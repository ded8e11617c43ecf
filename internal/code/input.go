package code

import "strings"

// InputSet is the ordered list of stdin fragments a user fills in, one slot
// per line.
type InputSet []string

// NewInputSet returns an input set with the single empty slot the editor
// starts with.
func NewInputSet() InputSet {
	return InputSet{""}
}

// Compose joins the fragments into the stdin stream for a run. Disabled input
// always yields the empty string. Empty fragments are kept as empty lines.
func Compose(fragments []string, enabled bool) string {
	if !enabled {
		return ""
	}
	return strings.Join(fragments, "\n")
}

// AddFragment returns a copy of fragments with one more empty slot.
func AddFragment(fragments InputSet) InputSet {
	out := make(InputSet, len(fragments), len(fragments)+1)
	copy(out, fragments)
	return append(out, "")
}

// RemoveFragment returns a copy of fragments without the last slot. The slot
// count never drops below one.
func RemoveFragment(fragments InputSet) InputSet {
	switch len(fragments) {
	case 0:
		return NewInputSet()
	case 1:
		return fragments.Clone()
	}
	out := make(InputSet, len(fragments)-1)
	copy(out, fragments)
	return out
}

// Clone returns an independent copy, used to snapshot the set when a run
// starts.
func (s InputSet) Clone() InputSet {
	if s == nil {
		return nil
	}
	out := make(InputSet, len(s))
	copy(out, s)
	return out
}
