package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/utils"
	"github.com/shopspring/decimal"
)

// RmlPurchaseEntry is one inward delivery of raw material lots.
type RmlPurchaseEntry struct {
	ID        int                `gorm:"primary_key" json:"id"`
	UserId    int                `gorm:"index;not null" json:"user_id"`
	UserName  string             `gorm:"size:100;not null" json:"user_name"`
	Batches   []RmlPurchaseBatch `gorm:"foreignKey:EntryId" json:"batches"`
	CreatedAt time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
}

// RmlPurchaseBatch is a single purchased lot. Its SKU label is minted once
// at creation and is the key the consumption and sale streams net against.
type RmlPurchaseBatch struct {
	ID           int             `gorm:"primary_key" json:"id"`
	EntryId      int             `gorm:"index;not null" json:"entry_id"`
	QuantityKg   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_kg"`
	Pieces       int             `gorm:"default:0" json:"pieces"`
	SbPercentage decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sb_percentage"`
	Remarks      string          `gorm:"size:255" json:"remarks"`
	InwardDate   time.Time       `gorm:"not null" json:"inward_date"`
	Sku          string          `gorm:"index;size:255;not null" json:"sku"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewRmlPurchaseBatch struct {
	QuantityKg   decimal.Decimal `json:"quantity_kg" validate:"required"`
	Pieces       int             `json:"pieces" validate:"required,gt=0"`
	SbPercentage decimal.Decimal `json:"sb_percentage"`
	Remarks      string          `json:"remarks"`
	InwardDate   *time.Time      `json:"inward_date"`
}

type NewRmlPurchaseEntry struct {
	Batches []NewRmlPurchaseBatch `json:"batches" validate:"required,min=1,dive"`
}

// MintSkuLabel derives the lot label from remarks, antimony percentage and
// inward date. The label must be stable for a given combination: it is the
// join key for netting consumption and sales against this lot. Empty remarks
// fall back to "RML".
func MintSkuLabel(remarks string, sbPercentage decimal.Decimal, inwardDate time.Time) string {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		remarks = "RML"
	}
	return fmt.Sprintf("%s, %s%%, %s", remarks, sbPercentage.String(), inwardDate.Format("02/01/2006"))
}

func CreateRmlPurchaseEntry(ctx context.Context, input *NewRmlPurchaseEntry) (*RmlPurchaseEntry, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	entry := RmlPurchaseEntry{
		UserId:   userId,
		UserName: userName,
	}
	for _, b := range input.Batches {
		if !b.QuantityKg.IsPositive() {
			return nil, errors.New("quantity_kg must be positive")
		}
		if b.SbPercentage.IsNegative() || b.SbPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errors.New("sb_percentage must be between 0 and 100")
		}
		inwardDate := time.Now().UTC()
		if b.InwardDate != nil {
			inwardDate = b.InwardDate.UTC()
		}
		entry.Batches = append(entry.Batches, RmlPurchaseBatch{
			QuantityKg:   b.QuantityKg,
			Pieces:       b.Pieces,
			SbPercentage: b.SbPercentage,
			Remarks:      strings.TrimSpace(b.Remarks),
			InwardDate:   inwardDate,
			Sku:          MintSkuLabel(b.Remarks, b.SbPercentage, inwardDate),
		})
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func GetRmlPurchaseEntries(ctx context.Context) ([]*RmlPurchaseEntry, error) {
	db := config.GetDB()

	var entries []*RmlPurchaseEntry
	if err := db.WithContext(ctx).
		Preload("Batches").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindRmlBatchBySku returns the purchase batch that minted the given label.
// When two lots share an identical label (same remarks, Sb% and date) the
// earliest one wins; the ledger nets them as a single lot either way.
func FindRmlBatchBySku(ctx context.Context, sku string) (*RmlPurchaseBatch, error) {
	db := config.GetDB()

	var batch RmlPurchaseBatch
	if err := db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("id ASC").
		First(&batch).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &batch, nil
}

// DeleteRmlPurchaseEntry removes the entry and its batches. No compensating
// updates: consumption or sales already referencing a minted SKU keep their
// label and silently stop netting against anything.
func DeleteRmlPurchaseEntry(ctx context.Context, id int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("entry_id = ?", id).Delete(&RmlPurchaseBatch{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&RmlPurchaseEntry{}, id)
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
