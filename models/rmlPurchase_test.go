package models

import (
	"testing"
	"time"
)

func TestMintSkuLabel(t *testing.T) {
	inward := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	got := MintSkuLabel("Lot A", dec("5"), inward)
	want := "Lot A, 5%, 10/03/2025"
	if got != want {
		t.Fatalf("label = %q, want %q", got, want)
	}
}

func TestMintSkuLabelStable(t *testing.T) {
	inward := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := MintSkuLabel("Lot A", dec("5"), inward)
	second := MintSkuLabel("Lot A", dec("5"), inward)
	if first != second {
		t.Fatalf("label not stable: %q vs %q", first, second)
	}
}

func TestMintSkuLabelDistinguishesCombinations(t *testing.T) {
	inward := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	base := MintSkuLabel("Lot A", dec("5"), inward)

	if MintSkuLabel("Lot B", dec("5"), inward) == base {
		t.Fatal("different remarks must mint a different label")
	}
	if MintSkuLabel("Lot A", dec("3"), inward) == base {
		t.Fatal("different antimony must mint a different label")
	}
	if MintSkuLabel("Lot A", dec("5"), inward.AddDate(0, 0, 1)) == base {
		t.Fatal("different date must mint a different label")
	}
}

func TestMintSkuLabelEmptyRemarks(t *testing.T) {
	inward := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	got := MintSkuLabel("  ", dec("2.5"), inward)
	want := "RML, 2.5%, 10/03/2025"
	if got != want {
		t.Fatalf("label = %q, want %q", got, want)
	}
}

func TestClassifyInputSource(t *testing.T) {
	cases := []struct {
		source string
		want   InputSourceClass
	}{
		{"", InputSourceClassManual},
		{"manual", InputSourceClassManual},
		{"SANTOSH", InputSourceClassSantosh},
		{"Lot A, 5%, 10/03/2025", InputSourceClassRml},
		// Case-sensitive on purpose; a lowercase santosh is a label.
		{"santosh", InputSourceClassRml},
	}
	for _, tc := range cases {
		if got := ClassifyInputSource(tc.source); got != tc.want {
			t.Errorf("ClassifyInputSource(%q) = %s, want %s", tc.source, got, tc.want)
		}
	}
}
