package models

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func requireEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got.String(), want.String())
	}
}

func TestComputeSummaryPureLeadOnly(t *testing.T) {
	ev := &LedgerEvents{
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, PureLeadKg: dec("75.0")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "pure_lead_stock", s.PureLeadStock, dec("75.00"))
	requireEqual(t, "high_lead_stock", s.HighLeadStock, dec("0"))
	requireEqual(t, "rml_stock", s.RmlStock, dec("0"))
}

func TestComputeSummaryRmlNetting(t *testing.T) {
	inward := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sku := MintSkuLabel("Lot A", dec("5"), inward)

	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("100"), SbPercentage: dec("5"), Sku: sku, InwardDate: inward},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: sku, SbPercentage: decPtr("5"), LeadIngotKg: dec("40")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "rml_stock", s.RmlStock, dec("60.00"))
	requireEqual(t, "antimony_recoverable", s.AntimonyRecoverable, dec("2.00"))
}

func TestComputeSummaryAntimonySkipsMissingAndZero(t *testing.T) {
	ev := &LedgerEvents{
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, SbPercentage: decPtr("5"), LeadIngotKg: dec("40")},
			{InputSource: InputSourceManual, SbPercentage: decPtr("0"), LeadIngotKg: dec("999")},
			{InputSource: InputSourceManual, LeadIngotKg: dec("999")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "antimony_recoverable", s.AntimonyRecoverable, dec("2.00"))
}

func TestComputeSummaryReceivableOffsetBySantosh(t *testing.T) {
	ev := &LedgerEvents{
		RecyclingBatches: []RecyclingBatch{
			{BatteryType: BatteryTypePP, ReceivableKg: dec("30")},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceSantosh, LeadIngotKg: dec("12.5")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "total_receivable", s.TotalReceivable, dec("17.50"))
}

// SANTOSH consumption offsets receivables only. Folding it into RML
// consumption would deplete RML stock it never touched.
func TestComputeSummarySantoshDoesNotDepleteRmlStock(t *testing.T) {
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("100"), Sku: "Lot A, 5%, 10/03/2025"},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceSantosh, LeadIngotKg: dec("40")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "rml_stock", s.RmlStock, dec("100.00"))
}

func TestComputeSummaryClampsNegativeToZero(t *testing.T) {
	ev := &LedgerEvents{
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, PureLeadKg: dec("10")},
		},
		Sales: []Sale{
			{SkuType: SkuPureLead, QuantityKg: dec("25")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "pure_lead_stock", s.PureLeadStock, dec("0"))
	if s.PureLeadStock.IsNegative() {
		t.Fatal("clamped figure must never be negative")
	}
}

func TestComputeSummaryTotalDrossIsCumulative(t *testing.T) {
	ev := &LedgerEvents{
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, InitialDrossKg: dec("5"), Dross2ndKg: dec("3"), Dross3rdKg: dec("1.5")},
			{InputSource: InputSourceManual, InitialDrossKg: dec("2")},
		},
		DrossRecyclingBatches: []DrossRecyclingBatch{
			// Sending dross out does not deplete the cumulative total.
			{QuantitySentKg: dec("6"), HighLeadRecoveredKg: dec("4")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "total_dross", s.TotalDross, dec("11.50"))
	requireEqual(t, "high_lead_stock", s.HighLeadStock, dec("4.00"))
}

func TestComputeSummaryIdempotent(t *testing.T) {
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("100"), SbPercentage: dec("5"), Sku: "Lot A, 5%, 10/03/2025"},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: "Lot A, 5%, 10/03/2025", SbPercentage: decPtr("5"), LeadIngotKg: dec("40"), PureLeadKg: dec("30")},
		},
		RecyclingBatches: []RecyclingBatch{
			{BatteryType: BatteryTypePP, ReceivableKg: dec("10.5")},
		},
		Sales: []Sale{
			{SkuType: SkuPureLead, QuantityKg: dec("5")},
		},
	}

	first := ComputeSummary(testLogger(), ev)
	second := ComputeSummary(testLogger(), ev)
	requireEqual(t, "pure_lead_stock", second.PureLeadStock, first.PureLeadStock)
	requireEqual(t, "high_lead_stock", second.HighLeadStock, first.HighLeadStock)
	requireEqual(t, "rml_stock", second.RmlStock, first.RmlStock)
	requireEqual(t, "total_dross", second.TotalDross, first.TotalDross)
	requireEqual(t, "antimony_recoverable", second.AntimonyRecoverable, first.AntimonyRecoverable)
	requireEqual(t, "total_receivable", second.TotalReceivable, first.TotalReceivable)
}

func TestComputeSummaryConservation(t *testing.T) {
	produced := dec("120.5")
	sold := dec("45.25")
	ev := &LedgerEvents{
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, PureLeadKg: dec("100")},
			{InputSource: InputSourceManual, PureLeadKg: dec("20.5")},
		},
		Sales: []Sale{
			{SkuType: SkuPureLead, QuantityKg: dec("45.25")},
		},
	}

	s := ComputeSummary(testLogger(), ev)
	requireEqual(t, "pure_lead_stock + sold", s.PureLeadStock.Add(sold), produced)
}

func TestComputeSummaryEmptyEvents(t *testing.T) {
	s := ComputeSummary(testLogger(), &LedgerEvents{})
	for name, v := range map[string]decimal.Decimal{
		"pure_lead_stock":      s.PureLeadStock,
		"high_lead_stock":      s.HighLeadStock,
		"rml_stock":            s.RmlStock,
		"total_dross":          s.TotalDross,
		"antimony_recoverable": s.AntimonyRecoverable,
		"total_receivable":     s.TotalReceivable,
	} {
		requireEqual(t, name, v, dec("0"))
	}
}

func TestListAvailableSkusOrderingAndOmission(t *testing.T) {
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("100"), SbPercentage: dec("5"), Sku: "Lot A, 5%, 10/03/2025"},
			{ID: 2, QuantityKg: dec("50"), SbPercentage: dec("3"), Sku: "Lot B, 3%, 11/03/2025"},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: InputSourceManual, PureLeadKg: dec("30")},
			// Drains Lot B entirely; it must be omitted from the listing.
			{InputSource: "Lot B, 3%, 11/03/2025", LeadIngotKg: dec("50")},
		},
		DrossRecyclingBatches: []DrossRecyclingBatch{
			{HighLeadRecoveredKg: dec("12")},
		},
	}

	skus := ListAvailableSkus(testLogger(), ev)
	if len(skus) != 3 {
		t.Fatalf("got %d skus, want 3", len(skus))
	}
	if skus[0].SkuType != SkuPureLead || skus[1].SkuType != SkuHighLead {
		t.Fatalf("well-known skus must lead the listing, got %s, %s", skus[0].SkuType, skus[1].SkuType)
	}
	requireEqual(t, "pure lead", skus[0].AvailableKg, dec("30.00"))
	requireEqual(t, "high lead", skus[1].AvailableKg, dec("12.00"))
	if skus[2].SkuType != "Lot A, 5%, 10/03/2025" {
		t.Fatalf("unexpected rml sku %s", skus[2].SkuType)
	}
	requireEqual(t, "lot A", skus[2].AvailableKg, dec("100.00"))
	if skus[2].SbPercentage == nil || !skus[2].SbPercentage.Equal(dec("5")) {
		t.Fatal("rml line must carry its antimony percentage")
	}
}

func TestListAvailableSkusUnmatchedSaleNeverListed(t *testing.T) {
	ev := &LedgerEvents{
		Sales: []Sale{
			{SkuType: "No Such Lot, 9%, 01/01/2020", QuantityKg: dec("10")},
		},
	}

	skus := ListAvailableSkus(testLogger(), ev)
	if len(skus) != 0 {
		t.Fatalf("unmatched sale surfaced in listing: %+v", skus)
	}
}

func TestListAvailableSkusResolvesByBatchReference(t *testing.T) {
	batchId := 7
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 7, QuantityKg: dec("80"), SbPercentage: dec("4"), Sku: "Lot C, 4%, 12/03/2025"},
		},
		Sales: []Sale{
			// Label drifted but the reference still pins the right lot.
			{SkuType: "lot c, 4%, 12/03/2025", RmlBatchId: &batchId, QuantityKg: dec("30")},
		},
	}

	skus := ListAvailableSkus(testLogger(), ev)
	if len(skus) != 1 {
		t.Fatalf("got %d skus, want 1", len(skus))
	}
	requireEqual(t, "lot C", skus[0].AvailableKg, dec("50.00"))
}

func TestListAvailableSkusOversoldLotClampsToOmission(t *testing.T) {
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("20"), Sku: "Lot D, 2%, 13/03/2025"},
		},
		Sales: []Sale{
			{SkuType: "Lot D, 2%, 13/03/2025", QuantityKg: dec("35")},
		},
	}

	skus := ListAvailableSkus(testLogger(), ev)
	for _, sku := range skus {
		if sku.AvailableKg.IsNegative() {
			t.Fatalf("sku %s has negative stock %s", sku.SkuType, sku.AvailableKg.String())
		}
	}
	if len(skus) != 0 {
		t.Fatalf("oversold lot must be omitted, got %+v", skus)
	}
}

func TestListAvailableSkusDuplicateLabelsCollapse(t *testing.T) {
	ev := &LedgerEvents{
		RmlPurchaseBatches: []RmlPurchaseBatch{
			{ID: 1, QuantityKg: dec("40"), SbPercentage: dec("5"), Sku: "Lot E, 5%, 14/03/2025"},
			{ID: 2, QuantityKg: dec("60"), SbPercentage: dec("5"), Sku: "Lot E, 5%, 14/03/2025"},
		},
		RefiningBatches: []RefiningBatch{
			{InputSource: "Lot E, 5%, 14/03/2025", LeadIngotKg: dec("70")},
		},
	}

	skus := ListAvailableSkus(testLogger(), ev)
	if len(skus) != 1 {
		t.Fatalf("duplicate labels must net as one lot, got %d lines", len(skus))
	}
	requireEqual(t, "lot E", skus[0].AvailableKg, dec("30.00"))
}
