package catalog

import "testing"

func TestLookup(t *testing.T) {
	q, ok := Lookup("Annual leave")
	if !ok || q == "" {
		t.Fatalf("expected query for Annual leave, got %q ok=%v", q, ok)
	}
	if _, ok := Lookup("annual leave"); ok {
		t.Error("labels are matched exactly")
	}
}

func TestAllIsACopy(t *testing.T) {
	a := All()
	a[0].Query = "changed"
	if All()[0].Query == "changed" {
		t.Error("All must not expose the backing table")
	}
}

func TestLabelsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i, l := range Labels() {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
		if All()[i].Label != l {
			t.Errorf("label %d = %q, want display order", i, l)
		}
	}
}
