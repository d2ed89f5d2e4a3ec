package partition

// Set holds partitions keyed by identity.
type Set map[string]Partition

// NewSet builds a set from partitions; duplicates collapse.
func NewSet(ps ...Partition) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

// Add inserts p.
func (s Set) Add(p Partition) {
	s[p.ID()] = p
}

// Has reports whether an equal partition is present.
func (s Set) Has(p Partition) bool {
	_, ok := s[p.ID()]
	return ok
}

// Minus returns the members of s not present in other, sorted.
func (s Set) Minus(other Set) []Partition {
	out := make([]Partition, 0, len(s))
	for id, p := range s {
		if _, ok := other[id]; !ok {
			out = append(out, p)
		}
	}
	Sort(out)
	return out
}

// Union returns a new set with the members of both sets.
func (s Set) Union(other Set) Set {
	u := make(Set, len(s)+len(other))
	for id, p := range s {
		u[id] = p
	}
	for id, p := range other {
		u[id] = p
	}
	return u
}

// Sorted returns the members in Partition order.
func (s Set) Sorted() []Partition {
	out := make([]Partition, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	Sort(out)
	return out
}
