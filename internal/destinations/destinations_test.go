package destinations

import "testing"

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	all := Search("")
	if len(all) != 5 {
		t.Fatalf("got %d destinations, want 5", len(all))
	}

	// The returned slice must be a copy, not a window into the catalog.
	all[0].Name = "mutated"
	if Search("")[0].Name == "mutated" {
		t.Error("Search result aliases the catalog")
	}
}

func TestSearchByNameAndDescription(t *testing.T) {
	if got := Search("桂林"); len(got) != 1 || got[0].ID != "guilin" {
		t.Errorf("Search(桂林) = %v", got)
	}
	if got := Search("西湖"); len(got) != 1 || got[0].ID != "hangzhou" {
		t.Errorf("Search(西湖) = %v (description match)", got)
	}
	if got := Search("火星"); got != nil {
		t.Errorf("Search(火星) = %v, want nil", got)
	}
}

func TestByID(t *testing.T) {
	d := ByID("xian")
	if d == nil || d.Name != "西安" {
		t.Fatalf("ByID(xian) = %v", d)
	}
	if ByID("nowhere") != nil {
		t.Error("ByID(nowhere) should be nil")
	}
}
