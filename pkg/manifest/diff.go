package manifest

import "sort"

// Changes lists outputs that differ between two manifests, each sorted.
type Changes struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether nothing differs.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Changed) == 0 && len(c.Removed) == 0
}

// Compare reports how next differs from m by output path and fingerprint.
// A nil m treats every output of next as added. When a path appears more
// than once the last entry counts, as it is the one left on disk.
func (m *Manifest) Compare(next *Manifest) Changes {
	before := fingerprints(m)
	after := fingerprints(next)

	var c Changes
	for out, fp := range after {
		prev, ok := before[out]
		switch {
		case !ok:
			c.Added = append(c.Added, out)
		case prev != fp:
			c.Changed = append(c.Changed, out)
		}
	}
	for out := range before {
		if _, ok := after[out]; !ok {
			c.Removed = append(c.Removed, out)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Changed)
	sort.Strings(c.Removed)
	return c
}

func fingerprints(m *Manifest) map[string]string {
	out := map[string]string{}
	if m == nil {
		return out
	}
	for _, e := range m.Entries {
		out[e.Output] = e.Fingerprint
	}
	return out
}
