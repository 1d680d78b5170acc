package workflow

import (
	"testing"

	"github.com/sbmetals/leadtrack_backend/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuildSkuSbIndex(t *testing.T) {
	purchases := []models.RmlPurchaseBatch{
		{ID: 1, Sku: "Lot A, 5%, 10/03/2025", SbPercentage: dec("5")},
		{ID: 2, Sku: "Lot B, 0%, 11/03/2025", SbPercentage: dec("0")},
		{ID: 3, Sku: "", SbPercentage: dec("4")},
		// Duplicate label; the earliest purchase wins.
		{ID: 4, Sku: "Lot A, 5%, 10/03/2025", SbPercentage: dec("7")},
	}

	index := BuildSkuSbIndex(purchases)
	if len(index) != 1 {
		t.Fatalf("got %d index entries, want 1", len(index))
	}
	entry, ok := index["Lot A, 5%, 10/03/2025"]
	if !ok {
		t.Fatal("lot A missing from index")
	}
	if entry.rmlBatchId != 1 {
		t.Fatalf("rmlBatchId = %d, want 1", entry.rmlBatchId)
	}
	if !entry.sbPercentage.Equal(dec("5")) {
		t.Fatalf("sbPercentage = %s, want 5", entry.sbPercentage.String())
	}
}

func TestFillMissingAntimony(t *testing.T) {
	index := map[string]skuSbEntry{
		"Lot A, 5%, 10/03/2025": {rmlBatchId: 1, sbPercentage: dec("5")},
	}
	batches := []models.RefiningBatch{
		{ID: 10, InputSource: "Lot A, 5%, 10/03/2025"},
		{ID: 11, InputSource: models.InputSourceManual},
		{ID: 12, InputSource: models.InputSourceSantosh},
		{ID: 13, InputSource: "Unknown Lot, 9%, 01/01/2020"},
	}

	changed := FillMissingAntimony(batches, index)
	if len(changed) != 1 {
		t.Fatalf("got %d changed batches, want 1", len(changed))
	}
	b := changed[0]
	if b.ID != 10 {
		t.Fatalf("changed batch id = %d, want 10", b.ID)
	}
	if b.SbPercentage == nil || !b.SbPercentage.Equal(dec("5")) {
		t.Fatal("antimony percentage not filled from purchase")
	}
	if b.RmlBatchId == nil || *b.RmlBatchId != 1 {
		t.Fatal("purchase reference not filled")
	}
}

func TestFillMissingAntimonyIdempotent(t *testing.T) {
	index := map[string]skuSbEntry{
		"Lot A, 5%, 10/03/2025": {rmlBatchId: 1, sbPercentage: dec("5")},
	}
	batches := []models.RefiningBatch{
		{ID: 10, InputSource: "Lot A, 5%, 10/03/2025"},
	}

	changed := FillMissingAntimony(batches, index)
	if len(changed) != 1 {
		t.Fatalf("first pass changed %d batches, want 1", len(changed))
	}

	again := FillMissingAntimony(changed, index)
	if len(again) != 0 {
		t.Fatalf("second pass changed %d batches, want 0", len(again))
	}
}

func TestFillMissingAntimonyKeepsExistingValue(t *testing.T) {
	index := map[string]skuSbEntry{
		"Lot A, 5%, 10/03/2025": {rmlBatchId: 1, sbPercentage: dec("5")},
	}
	id := 1
	batches := []models.RefiningBatch{
		{ID: 10, InputSource: "Lot A, 5%, 10/03/2025", SbPercentage: decPtr("3"), RmlBatchId: &id},
	}

	if changed := FillMissingAntimony(batches, index); len(changed) != 0 {
		t.Fatalf("filled batch must not be rewritten, changed %d", len(changed))
	}
}

func TestFillMissingAntimonyFillsReferenceOnly(t *testing.T) {
	index := map[string]skuSbEntry{
		"Lot A, 5%, 10/03/2025": {rmlBatchId: 1, sbPercentage: dec("5")},
	}
	batches := []models.RefiningBatch{
		{ID: 10, InputSource: "Lot A, 5%, 10/03/2025", SbPercentage: decPtr("3")},
	}

	changed := FillMissingAntimony(batches, index)
	if len(changed) != 1 {
		t.Fatalf("got %d changed batches, want 1", len(changed))
	}
	if !changed[0].SbPercentage.Equal(dec("3")) {
		t.Fatal("recorded antimony value must be kept")
	}
	if changed[0].RmlBatchId == nil || *changed[0].RmlBatchId != 1 {
		t.Fatal("missing purchase reference must be filled")
	}
}
