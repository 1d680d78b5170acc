package models

import (
	"context"
	"errors"
	"time"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/utils"
	"github.com/shopspring/decimal"
)

// DrossRecyclingEntry groups dross lots sent out for high-lead recovery.
type DrossRecyclingEntry struct {
	ID        int                   `gorm:"primary_key" json:"id"`
	UserId    int                   `gorm:"index;not null" json:"user_id"`
	UserName  string                `gorm:"size:100;not null" json:"user_name"`
	Batches   []DrossRecyclingBatch `gorm:"foreignKey:EntryId" json:"batches"`
	CreatedAt time.Time             `gorm:"autoCreateTime;index" json:"created_at"`
}

type DrossRecyclingBatch struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	EntryId             int             `gorm:"index;not null" json:"entry_id"`
	QuantitySentKg      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_sent_kg"`
	HighLeadRecoveredKg decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"high_lead_recovered_kg"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewDrossRecyclingBatch struct {
	QuantitySentKg      decimal.Decimal  `json:"quantity_sent_kg"`
	HighLeadRecoveredKg *decimal.Decimal `json:"high_lead_recovered_kg"`
}

type NewDrossRecyclingEntry struct {
	Batches []NewDrossRecyclingBatch `json:"batches" validate:"required,min=1,dive"`
}

func CreateDrossRecyclingEntry(ctx context.Context, input *NewDrossRecyclingEntry) (*DrossRecyclingEntry, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	entry := DrossRecyclingEntry{
		UserId:   userId,
		UserName: userName,
	}
	for _, b := range input.Batches {
		recovered := utils.DereferencePtr(b.HighLeadRecoveredKg)
		if b.QuantitySentKg.IsNegative() || recovered.IsNegative() {
			return nil, errors.New("batch masses must not be negative")
		}
		entry.Batches = append(entry.Batches, DrossRecyclingBatch{
			QuantitySentKg:      b.QuantitySentKg,
			HighLeadRecoveredKg: recovered,
		})
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func GetDrossRecyclingEntries(ctx context.Context) ([]*DrossRecyclingEntry, error) {
	db := config.GetDB()

	var entries []*DrossRecyclingEntry
	if err := db.WithContext(ctx).
		Preload("Batches").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func DeleteDrossRecyclingEntry(ctx context.Context, id int) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("entry_id = ?", id).Delete(&DrossRecyclingBatch{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	result := tx.Delete(&DrossRecyclingEntry{}, id)
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
