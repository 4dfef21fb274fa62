package charuco

import (
	"path/filepath"
	"testing"
)

func TestSaveThenLoadBoardSpecRoundTrips(t *testing.T) {
	spec := testBoardSpec()
	path := filepath.Join(t.TempDir(), "board.yaml")

	if err := SaveBoardSpec(path, spec); err != nil {
		t.Fatalf("SaveBoardSpec: %v", err)
	}

	b, err := LoadBoardSpec(path)
	if err != nil {
		t.Fatalf("LoadBoardSpec: %v", err)
	}
	if b.Spec != spec {
		t.Errorf("loaded spec = %+v, want %+v", b.Spec, spec)
	}
}

func TestLoadBoardSpecMissingFile(t *testing.T) {
	_, err := LoadBoardSpec(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error reading a missing file")
	}
}
