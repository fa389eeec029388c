package region

import "strings"

// FieldMap is the declared mapping from a logical input field to the
// physical regions it feeds. It is generated at scaffold time from the
// region naming convention (a base name plus suffixed variants), which
// replaces ad-hoc prefix matching at substitution time: a field named
// Department can never accidentally capture an unrelated region that
// merely shares the prefix.
type FieldMap map[string][]string

// NewFieldMap returns an empty field map.
func NewFieldMap() FieldMap { return make(FieldMap) }

// Register binds a freshly scaffolded region name to the fields that feed
// it: the region's own name, and its family base when the name is a
// suffixed variant (Department_4 belongs to the Department family,
// ProjectTitle_Ack to ProjectTitle).
func (m FieldMap) Register(name string) {
	m.bind(name, name)
	if base := FamilyBase(name); base != name {
		m.bind(base, name)
	}
}

// Regions returns the physical regions fed by the field, in scaffold
// order. Fields with no bound region return nil; substitution skips them.
func (m FieldMap) Regions(field string) []string { return m[field] }

// Drop removes the given regions from every binding, pruning fields left
// with no region. Called when tail regions are discarded en masse.
func (m FieldMap) Drop(names []string) {
	gone := make(map[string]bool, len(names))
	for _, n := range names {
		gone[n] = true
	}
	for field, regions := range m {
		kept := regions[:0]
		for _, r := range regions {
			if !gone[r] {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(m, field)
			continue
		}
		m[field] = kept
	}
}

func (m FieldMap) bind(field, name string) {
	for _, r := range m[field] {
		if r == name {
			return
		}
	}
	m[field] = append(m[field], name)
}

// FamilyBase returns the logical family of a region name: everything
// before the first underscore. Names without a variant suffix are their
// own family.
func FamilyBase(name string) string {
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}
