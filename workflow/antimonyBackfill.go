package workflow

import (
	"fmt"

	"github.com/sbmetals/leadtrack_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// skuSbEntry carries what a refining batch is missing: the minting purchase
// batch id and its antimony percentage.
type skuSbEntry struct {
	rmlBatchId   int
	sbPercentage decimal.Decimal
}

// BuildSkuSbIndex maps each minted SKU label to its purchase batch. Labels
// with a zero antimony percentage are skipped: filling them would pin a
// meaningless zero onto the refining batch and block a later re-run from
// picking up a corrected purchase. When duplicate labels exist the earliest
// purchase wins, matching how the ledger nets them.
func BuildSkuSbIndex(purchases []models.RmlPurchaseBatch) map[string]skuSbEntry {
	index := make(map[string]skuSbEntry)
	for _, p := range purchases {
		if p.Sku == "" || p.SbPercentage.IsZero() {
			continue
		}
		if _, ok := index[p.Sku]; ok {
			continue
		}
		index[p.Sku] = skuSbEntry{rmlBatchId: p.ID, sbPercentage: p.SbPercentage}
	}
	return index
}

// FillMissingAntimony returns only the refining batches that would change:
// batches whose input source names an RML SKU but whose antimony percentage
// or purchase reference is missing. Pure function, safe to call repeatedly;
// a second pass over already-filled batches returns nothing.
func FillMissingAntimony(batches []models.RefiningBatch, index map[string]skuSbEntry) []models.RefiningBatch {
	var changed []models.RefiningBatch
	for _, b := range batches {
		if models.ClassifyInputSource(b.InputSource) != models.InputSourceClassRml {
			continue
		}
		hasSb := b.SbPercentage != nil && !b.SbPercentage.IsZero()
		if hasSb && b.RmlBatchId != nil {
			continue
		}
		entry, ok := index[b.InputSource]
		if !ok {
			continue
		}
		if !hasSb {
			sb := entry.sbPercentage
			b.SbPercentage = &sb
		}
		if b.RmlBatchId == nil {
			id := entry.rmlBatchId
			b.RmlBatchId = &id
		}
		changed = append(changed, b)
	}
	return changed
}

// BackfillAntimony repairs historical refining batches that reference an RML
// SKU but were recorded without the purchase's antimony percentage. Only the
// batches that change are written. With dryRun set it reports what would
// change and writes nothing.
func BackfillAntimony(db *gorm.DB, logger *logrus.Logger, dryRun bool) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("antimony backfill: db is nil")
	}

	var purchases []models.RmlPurchaseBatch
	if err := db.Order("id ASC").Find(&purchases).Error; err != nil {
		return 0, err
	}
	var batches []models.RefiningBatch
	if err := db.Order("id ASC").Find(&batches).Error; err != nil {
		return 0, err
	}

	changed := FillMissingAntimony(batches, BuildSkuSbIndex(purchases))

	for _, b := range changed {
		logger.WithFields(logrus.Fields{
			"batch_id":      b.ID,
			"input_source":  b.InputSource,
			"sb_percentage": b.SbPercentage.String(),
			"dry_run":       dryRun,
		}).Info("antimony.backfill.batch")

		if dryRun {
			continue
		}
		if err := db.Model(&models.RefiningBatch{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{
				"sb_percentage": b.SbPercentage,
				"rml_batch_id":  b.RmlBatchId,
			}).Error; err != nil {
			return 0, err
		}
	}

	return len(changed), nil
}
