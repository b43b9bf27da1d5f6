// Package ordering computes rank assignments for explicitly ordered
// collections (staff details within a department or division, staff
// form inputs). Ranks are contiguous and zero-based in list order.
package ordering

// Placement is the rank assignment for a single item
type Placement struct {
	ID          string `json:"_id"`
	Position    int    `json:"position"`
	Subposition int    `json:"subposition"`
}

// Result reports which identifiers of a batch update matched a stored
// item and which did not, so callers can tell a fully applied reorder
// from a partially applied one.
type Result struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// FullyApplied reports whether every requested identifier matched
func (r Result) FullyApplied() bool {
	return len(r.Missing) == 0
}

// Assign maps an ordered identifier list to placements: position is the
// zero-based index in list order. When divisionScoped is set the same
// index is also assigned as subposition, otherwise subposition resets
// to 0. Blank identifiers are skipped without consuming a rank.
func Assign(ids []string, divisionScoped bool) []Placement {
	placements := make([]Placement, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		p := Placement{ID: id, Position: len(placements)}
		if divisionScoped {
			p.Subposition = p.Position
		}
		placements = append(placements, p)
	}
	return placements
}
