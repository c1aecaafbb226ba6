package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDropsIncompleteRows(t *testing.T) {
	records, stats, err := Load(filepath.Join("testdata", "penguins_sample.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 20 {
		t.Fatalf("expected 20 rows, got %d", stats.Total)
	}
	// One all-NA row and one row with an empty sex cell.
	if stats.Dropped != 2 {
		t.Fatalf("expected 2 dropped rows, got %d", stats.Dropped)
	}
	if stats.Kept != len(records) || stats.Kept != 18 {
		t.Fatalf("expected 18 kept records, got kept=%d len=%d", stats.Kept, len(records))
	}
}

func TestLoadFoldsCategoryCase(t *testing.T) {
	records, _, err := Load(filepath.Join("testdata", "penguins_sample.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range records {
		if r.Sex != "male" && r.Sex != "female" {
			t.Fatalf("sex not folded: %q", r.Sex)
		}
		switch r.Island {
		case "Torgersen", "Biscoe", "Dream":
		default:
			t.Fatalf("island not folded: %q", r.Island)
		}
		switch r.Species {
		case "Adelie", "Chinstrap", "Gentoo":
		default:
			t.Fatalf("species not folded: %q", r.Species)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join("testdata", "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("species,island\nAdelie,Biscoe\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for missing column")
	}
}
