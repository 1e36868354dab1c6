package deps

// Seed is one entry of a merged dependency list: a dependency name with the
// version required by each side. An empty version means the dependency is
// missing on that side.
type Seed struct {
	Name          string `json:"name"`
	FirstVersion  string `json:"first_version,omitempty"`
	SecondVersion string `json:"second_version,omitempty"`
}

// Merge combines two sibling dependency lists into one seed per distinct name.
//
// Names keep first-seen order: every name of first in its original order,
// then the names only present in second in their original order. If a name
// is listed twice within the same list, the first occurrence wins.
// Entries with an empty name are skipped.
func Merge(first, second []Module) []Seed {
	seeds := make([]Seed, 0, max(len(first), len(second)))
	index := make(map[string]int, len(first)+len(second))

	for _, m := range first {
		if m.Name == "" {
			continue
		}
		if _, ok := index[m.Name]; ok {
			continue
		}
		index[m.Name] = len(seeds)
		seeds = append(seeds, Seed{Name: m.Name, FirstVersion: m.Version})
	}

	seen := make(map[string]bool, len(second))
	for _, m := range second {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		if i, ok := index[m.Name]; ok {
			seeds[i].SecondVersion = m.Version
			continue
		}
		index[m.Name] = len(seeds)
		seeds = append(seeds, Seed{Name: m.Name, SecondVersion: m.Version})
	}
	return seeds
}
