package detector

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Alternative is a header that loosely resembles one of a role's candidates
type Alternative struct {
	Header    string `json:"header"`
	Candidate string `json:"candidate"`
	Distance  int    `json:"distance"`
}

// Suggest ranks headers that fuzzily contain one of the role's candidates
// (e.g. "Fecha de emisión" for "fecha"). It is only a hint for a human picking
// a column; Detect never uses it.
func (d *Detector) Suggest(headers []string, role Role, limit int) []Alternative {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	best := make(map[int]Alternative)
	for _, candidate := range d.synonyms[role] {
		for _, rank := range fuzzy.RankFindNormalizedFold(candidate, normalized) {
			alt, ok := best[rank.OriginalIndex]
			if ok && alt.Distance <= rank.Distance {
				continue
			}
			best[rank.OriginalIndex] = Alternative{
				Header:    headers[rank.OriginalIndex],
				Candidate: candidate,
				Distance:  rank.Distance,
			}
		}
	}

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		da, db := best[idx[a]].Distance, best[idx[b]].Distance
		if da != db {
			return da < db
		}
		return idx[a] < idx[b]
	})

	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]Alternative, len(idx))
	for i, j := range idx {
		out[i] = best[j]
	}
	return out
}

// SuggestUnresolved returns alternatives for every role m leaves empty
func (d *Detector) SuggestUnresolved(headers []string, m Mapping, limit int) map[Role][]Alternative {
	out := make(map[Role][]Alternative)
	for _, role := range m.Unresolved() {
		if alts := d.Suggest(headers, role, limit); len(alts) > 0 {
			out[role] = alts
		}
	}
	return out
}
