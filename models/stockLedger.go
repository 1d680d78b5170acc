package models

import (
	"context"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LedgerEvents is a full snapshot of the event streams the stock ledger
// folds over. Every aggregation is a pure read-only pass over a snapshot;
// nothing here is cached or mutated between calls.
type LedgerEvents struct {
	RmlPurchaseBatches    []RmlPurchaseBatch
	RefiningBatches       []RefiningBatch
	RecyclingBatches      []RecyclingBatch
	DrossRecyclingBatches []DrossRecyclingBatch
	Sales                 []Sale
}

// SummaryStats is the headline figure set. Every field is rounded to two
// decimal places and clamped at zero.
type SummaryStats struct {
	PureLeadStock       decimal.Decimal `json:"pure_lead_stock"`
	HighLeadStock       decimal.Decimal `json:"high_lead_stock"`
	RmlStock            decimal.Decimal `json:"rml_stock"`
	TotalDross          decimal.Decimal `json:"total_dross"`
	AntimonyRecoverable decimal.Decimal `json:"antimony_recoverable"`
	TotalReceivable     decimal.Decimal `json:"total_receivable"`
}

// AvailableSku is one sellable line in the per-SKU breakdown.
type AvailableSku struct {
	SkuType      string           `json:"sku_type"`
	SbPercentage *decimal.Decimal `json:"sb_percentage,omitempty"`
	AvailableKg  decimal.Decimal  `json:"available_kg"`
}

// rmlLot is the netting bucket for one minted SKU label. Purchase batches
// sharing an identical label collapse into a single lot.
type rmlLot struct {
	sku          string
	sbPercentage decimal.Decimal
	purchasedKg  decimal.Decimal
	consumedKg   decimal.Decimal
	soldKg       decimal.Decimal
}

// clampStock floors a derived figure at zero. The raw subtraction going
// negative means over-consumption or a missing purchase record; the figure
// is preserved as zero for compatibility but the discrepancy is logged.
func clampStock(logger *logrus.Logger, name string, value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"figure": name,
				"raw":    value.String(),
			}).Warn("stock figure clamped to zero")
		}
		return decimal.Zero
	}
	return value
}

// buildRmlLots indexes purchase batches by minted label in first-seen order
// and returns a lookup from purchase batch id to its label.
func buildRmlLots(purchases []RmlPurchaseBatch) (lots []*rmlLot, byLabel map[string]*rmlLot, labelById map[int]string) {
	byLabel = make(map[string]*rmlLot)
	labelById = make(map[int]string)
	for _, p := range purchases {
		labelById[p.ID] = p.Sku
		lot, ok := byLabel[p.Sku]
		if !ok {
			lot = &rmlLot{sku: p.Sku, sbPercentage: p.SbPercentage}
			byLabel[p.Sku] = lot
			lots = append(lots, lot)
		}
		lot.purchasedKg = lot.purchasedKg.Add(p.QuantityKg)
	}
	return lots, byLabel, labelById
}

// resolveLot finds the netting bucket for a consumption or sale. The batch
// reference wins when present; otherwise the label must match exactly. A nil
// return is the unmatched bucket: it still nets against aggregate RML stock
// but never surfaces in the per-SKU listing.
func resolveLot(byLabel map[string]*rmlLot, labelById map[int]string, rmlBatchId *int, label string) *rmlLot {
	if rmlBatchId != nil {
		if sku, ok := labelById[*rmlBatchId]; ok {
			return byLabel[sku]
		}
	}
	return byLabel[label]
}

// ComputeSummary folds the full event snapshot into the headline figures.
// It is a pure function of its input: the same snapshot always yields the
// same figures. Missing optional fields count as zero and unknown SKU
// references are never rejected.
func ComputeSummary(logger *logrus.Logger, ev *LedgerEvents) *SummaryStats {
	hundred := decimal.NewFromInt(100)

	var purePb, highPb, rmlPurchased, rmlConsumed, rmlSold decimal.Decimal
	var totalDross, antimony, receivable, santoshOffset decimal.Decimal

	for _, b := range ev.RefiningBatches {
		purePb = purePb.Add(b.PureLeadKg)
		totalDross = totalDross.Add(b.TotalDrossKg())

		sb := decimal.Zero
		if b.SbPercentage != nil {
			sb = *b.SbPercentage
		}
		if !sb.IsZero() {
			antimony = antimony.Add(sb.Mul(b.LeadIngotKg).Div(hundred))
		}

		switch ClassifyInputSource(b.InputSource) {
		case InputSourceClassRml:
			rmlConsumed = rmlConsumed.Add(b.LeadIngotKg)
		case InputSourceClassSantosh:
			santoshOffset = santoshOffset.Add(b.LeadIngotKg)
		}
	}

	for _, b := range ev.RmlPurchaseBatches {
		rmlPurchased = rmlPurchased.Add(b.QuantityKg)
	}
	for _, b := range ev.DrossRecyclingBatches {
		highPb = highPb.Add(b.HighLeadRecoveredKg)
	}
	for _, b := range ev.RecyclingBatches {
		receivable = receivable.Add(b.ReceivableKg)
	}

	var purePbSold, highPbSold decimal.Decimal
	for _, s := range ev.Sales {
		switch s.SkuType {
		case SkuPureLead:
			purePbSold = purePbSold.Add(s.QuantityKg)
		case SkuHighLead:
			highPbSold = highPbSold.Add(s.QuantityKg)
		default:
			rmlSold = rmlSold.Add(s.QuantityKg)
		}
	}

	return &SummaryStats{
		PureLeadStock:       clampStock(logger, "pure_lead_stock", purePb.Sub(purePbSold)).Round(2),
		HighLeadStock:       clampStock(logger, "high_lead_stock", highPb.Sub(highPbSold)).Round(2),
		RmlStock:            clampStock(logger, "rml_stock", rmlPurchased.Sub(rmlConsumed).Sub(rmlSold)).Round(2),
		TotalDross:          totalDross.Round(2),
		AntimonyRecoverable: antimony.Round(2),
		TotalReceivable:     clampStock(logger, "total_receivable", receivable.Sub(santoshOffset)).Round(2),
	}
}

// ListAvailableSkus produces the per-SKU breakdown: Pure Lead, High Lead,
// then each distinct RML lot in purchase order. Lines whose computed stock
// is not positive are omitted. The ledger never blocks an oversell; callers
// that want quantity validation do it themselves.
func ListAvailableSkus(logger *logrus.Logger, ev *LedgerEvents) []*AvailableSku {
	lots, byLabel, labelById := buildRmlLots(ev.RmlPurchaseBatches)

	var purePb, highPb, purePbSold, highPbSold decimal.Decimal
	for _, b := range ev.RefiningBatches {
		purePb = purePb.Add(b.PureLeadKg)
		if ClassifyInputSource(b.InputSource) == InputSourceClassRml {
			if lot := resolveLot(byLabel, labelById, b.RmlBatchId, b.InputSource); lot != nil {
				lot.consumedKg = lot.consumedKg.Add(b.LeadIngotKg)
			}
		}
	}
	for _, b := range ev.DrossRecyclingBatches {
		highPb = highPb.Add(b.HighLeadRecoveredKg)
	}
	for _, s := range ev.Sales {
		switch s.SkuType {
		case SkuPureLead:
			purePbSold = purePbSold.Add(s.QuantityKg)
		case SkuHighLead:
			highPbSold = highPbSold.Add(s.QuantityKg)
		default:
			if lot := resolveLot(byLabel, labelById, s.RmlBatchId, s.SkuType); lot != nil {
				lot.soldKg = lot.soldKg.Add(s.QuantityKg)
			}
		}
	}

	var skus []*AvailableSku
	if stock := clampStock(logger, SkuPureLead, purePb.Sub(purePbSold)).Round(2); stock.IsPositive() {
		skus = append(skus, &AvailableSku{SkuType: SkuPureLead, AvailableKg: stock})
	}
	if stock := clampStock(logger, SkuHighLead, highPb.Sub(highPbSold)).Round(2); stock.IsPositive() {
		skus = append(skus, &AvailableSku{SkuType: SkuHighLead, AvailableKg: stock})
	}
	for _, lot := range lots {
		stock := clampStock(logger, lot.sku, lot.purchasedKg.Sub(lot.consumedKg).Sub(lot.soldKg)).Round(2)
		if !stock.IsPositive() {
			continue
		}
		sb := lot.sbPercentage
		skus = append(skus, &AvailableSku{
			SkuType:      lot.sku,
			SbPercentage: &sb,
			AvailableKg:  stock,
		})
	}
	return skus
}

// LoadLedgerEvents reads the full event history from the database.
func LoadLedgerEvents(ctx context.Context) (*LedgerEvents, error) {
	db := config.GetDB()

	var ev LedgerEvents
	if err := db.WithContext(ctx).Order("id ASC").Find(&ev.RmlPurchaseBatches).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Order("id ASC").Find(&ev.RefiningBatches).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Order("id ASC").Find(&ev.RecyclingBatches).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Order("id ASC").Find(&ev.DrossRecyclingBatches).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Order("id ASC").Find(&ev.Sales).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetSummary loads the event snapshot and computes the headline figures.
func GetSummary(ctx context.Context) (*SummaryStats, error) {
	ev, err := LoadLedgerEvents(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeSummary(config.GetLogger(), ev), nil
}

// GetAvailableSkus loads the event snapshot and lists sellable SKUs.
func GetAvailableSkus(ctx context.Context) ([]*AvailableSku, error) {
	ev, err := LoadLedgerEvents(ctx)
	if err != nil {
		return nil, err
	}
	return ListAvailableSkus(config.GetLogger(), ev), nil
}
