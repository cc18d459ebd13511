package damage

import "strings"

// LabelSet is the lower-cased set of concepts detected in one image.
// It is immutable once built.
type LabelSet struct {
	labels []string
	index  map[string]struct{}
}

// NormalizeLabels lower-cases provider labels into a LabelSet. Blank entries and
// duplicates are dropped; nil input yields an empty set.
func NormalizeLabels(raw []string) LabelSet {
	s := LabelSet{index: make(map[string]struct{}, len(raw))}
	for _, l := range raw {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := s.index[l]; ok {
			continue
		}
		s.index[l] = struct{}{}
		s.labels = append(s.labels, l)
	}
	return s
}

// Len returns the number of distinct labels.
func (s LabelSet) Len() int {
	return len(s.labels)
}

// Has reports whether label is in the set exactly.
func (s LabelSet) Has(label string) bool {
	_, ok := s.index[label]
	return ok
}

// HasAny reports whether any of terms is in the set exactly.
func (s LabelSet) HasAny(terms []string) bool {
	for _, t := range terms {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Mentions reports whether term is a substring of any label.
func (s LabelSet) Mentions(term string) bool {
	for _, l := range s.labels {
		if strings.Contains(l, term) {
			return true
		}
	}
	return false
}

// Match returns the terms that are substrings of at least one label, in the
// order of terms.
func (s LabelSet) Match(terms []string) []string {
	var found []string
	for _, t := range terms {
		if s.Mentions(t) {
			found = append(found, t)
		}
	}
	return found
}
