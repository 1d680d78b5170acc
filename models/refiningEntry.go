package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/utils"
	"github.com/shopspring/decimal"
)

// RefiningEntry is one shift's worth of refining batches submitted together.
type RefiningEntry struct {
	ID        int             `gorm:"primary_key" json:"id"`
	UserId    int             `gorm:"index;not null" json:"user_id"`
	UserName  string          `gorm:"size:100;not null" json:"user_name"`
	Batches   []RefiningBatch `gorm:"foreignKey:EntryId" json:"batches"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// RefiningBatch consumes metal from one input source and yields pure lead
// plus dross. When the source is an RML lot, RmlBatchId points at the
// purchase batch that minted the label and SbPercentage is copied from it.
// The label itself is kept as well so a batch created before the referenced
// purchase existed (or after it was deleted) still nets by exact label.
type RefiningBatch struct {
	ID              int              `gorm:"primary_key" json:"id"`
	EntryId         int              `gorm:"index;not null" json:"entry_id"`
	InputSource     string           `gorm:"size:255;not null;default:manual" json:"input_source"`
	RmlBatchId      *int             `gorm:"index" json:"rml_batch_id"`
	SbPercentage    *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sb_percentage"`
	LeadIngotKg     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"lead_ingot_kg"`
	LeadIngotPieces int              `gorm:"default:0" json:"lead_ingot_pieces"`
	InitialDrossKg  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"initial_dross_kg"`
	Dross2ndKg      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"dross_2nd_kg"`
	Dross3rdKg      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"dross_3rd_kg"`
	PureLeadKg      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"pure_lead_kg"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// TotalDrossKg sums the three skimming stages.
func (b *RefiningBatch) TotalDrossKg() decimal.Decimal {
	return b.InitialDrossKg.Add(b.Dross2ndKg).Add(b.Dross3rdKg)
}

type NewRefiningBatch struct {
	InputSource     string           `json:"input_source"`
	SbPercentage    *decimal.Decimal `json:"sb_percentage"`
	LeadIngotKg     decimal.Decimal  `json:"lead_ingot_kg"`
	LeadIngotPieces int              `json:"lead_ingot_pieces"`
	InitialDrossKg  decimal.Decimal  `json:"initial_dross_kg"`
	Dross2ndKg      decimal.Decimal  `json:"dross_2nd_kg"`
	Dross3rdKg      decimal.Decimal  `json:"dross_3rd_kg"`
	PureLeadKg      decimal.Decimal  `json:"pure_lead_kg"`
}

type NewRefiningEntry struct {
	Batches []NewRefiningBatch `json:"batches" validate:"required,min=1,dive"`
}

func CreateRefiningEntry(ctx context.Context, input *NewRefiningEntry) (*RefiningEntry, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	entry := RefiningEntry{
		UserId:   userId,
		UserName: userName,
	}
	for _, b := range input.Batches {
		for _, kg := range []decimal.Decimal{b.LeadIngotKg, b.InitialDrossKg, b.Dross2ndKg, b.Dross3rdKg, b.PureLeadKg} {
			if kg.IsNegative() {
				return nil, errors.New("batch masses must not be negative")
			}
		}

		source := strings.TrimSpace(b.InputSource)
		if source == "" {
			source = InputSourceManual
		}

		batch := RefiningBatch{
			InputSource:     source,
			SbPercentage:    b.SbPercentage,
			LeadIngotKg:     b.LeadIngotKg,
			LeadIngotPieces: b.LeadIngotPieces,
			InitialDrossKg:  b.InitialDrossKg,
			Dross2ndKg:      b.Dross2ndKg,
			Dross3rdKg:      b.Dross3rdKg,
			PureLeadKg:      b.PureLeadKg,
		}

		if ClassifyInputSource(source) == InputSourceClassRml {
			rmlBatch, err := FindRmlBatchBySku(ctx, source)
			if err != nil {
				// Keep the label so it can be repaired later by backfill.
				config.LogError(logger, "refiningEntry", "CreateRefiningEntry",
					"no purchase batch found for input source", source, err)
			} else {
				batch.RmlBatchId = &rmlBatch.ID
				sb := rmlBatch.SbPercentage
				batch.SbPercentage = &sb
			}
		}

		entry.Batches = append(entry.Batches, batch)
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func GetRefiningEntries(ctx context.Context) ([]*RefiningEntry, error) {
	db := config.GetDB()

	var entries []*RefiningEntry
	if err := db.WithContext(ctx).
		Preload("Batches").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func DeleteRefiningEntry(ctx context.Context, id int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("entry_id = ?", id).Delete(&RefiningBatch{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&RefiningEntry{}, id)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorRecordNotFound
	}
	return tx.Commit().Error
}
