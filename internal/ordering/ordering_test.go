package ordering

import (
	"reflect"
	"testing"
)

// TestAssignContiguous tests that placements form a contiguous
// zero-based sequence in list order
func TestAssignContiguous(t *testing.T) {
	ids := []string{"a", "b", "c"}

	placements := Assign(ids, false)
	if len(placements) != 3 {
		t.Fatalf("Expected 3 placements, got %d", len(placements))
	}
	for i, p := range placements {
		if p.ID != ids[i] {
			t.Errorf("Placement %d has ID %q, want %q", i, p.ID, ids[i])
		}
		if p.Position != i {
			t.Errorf("Placement %d has position %d, want %d", i, p.Position, i)
		}
		if p.Subposition != 0 {
			t.Errorf("Placement %d has subposition %d, want 0 without division scope", i, p.Subposition)
		}
	}
}

// TestAssignDivisionScoped tests that a division-scoped reorder also
// assigns subpositions
func TestAssignDivisionScoped(t *testing.T) {
	placements := Assign([]string{"x", "y"}, true)
	for i, p := range placements {
		if p.Position != i || p.Subposition != i {
			t.Errorf("Placement %d = %+v, want position=subposition=%d", i, p, i)
		}
	}
}

// TestAssignIdempotent tests that repeated assignment of the same list
// yields identical placements
func TestAssignIdempotent(t *testing.T) {
	ids := []string{"a", "b", "c"}
	first := Assign(ids, true)
	second := Assign(ids, true)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical placements, got %+v then %+v", first, second)
	}
}

// TestAssignSkipsBlankIDs tests that blank identifiers do not consume
// a rank
func TestAssignSkipsBlankIDs(t *testing.T) {
	placements := Assign([]string{"a", "", "b"}, false)
	if len(placements) != 2 {
		t.Fatalf("Expected 2 placements, got %d", len(placements))
	}
	if placements[1].ID != "b" || placements[1].Position != 1 {
		t.Errorf("Expected b at position 1, got %+v", placements[1])
	}
}

// TestResultFullyApplied tests batch application reporting
func TestResultFullyApplied(t *testing.T) {
	full := Result{Matched: []string{"a"}, Missing: []string{}}
	if !full.FullyApplied() {
		t.Error("Expected result with no missing IDs to be fully applied")
	}

	partial := Result{Matched: []string{"a"}, Missing: []string{"b"}}
	if partial.FullyApplied() {
		t.Error("Expected result with missing IDs to not be fully applied")
	}
}
