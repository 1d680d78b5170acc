package models

import (
	"context"
	"errors"
	"time"

	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/utils"
	"github.com/shopspring/decimal"
)

// RecyclingEntry groups battery-recycling batches sent out to a processor.
type RecyclingEntry struct {
	ID        int              `gorm:"primary_key" json:"id"`
	UserId    int              `gorm:"index;not null" json:"user_id"`
	UserName  string           `gorm:"size:100;not null" json:"user_name"`
	Batches   []RecyclingBatch `gorm:"foreignKey:EntryId" json:"batches"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// RecyclingBatch records batteries sent for remelting. The recovery rate in
// force at creation is frozen on the row, so RemeltedLeadKg and ReceivableKg
// never change when an admin later edits the settings.
type RecyclingBatch struct {
	ID                     int             `gorm:"primary_key" json:"id"`
	EntryId                int             `gorm:"index;not null" json:"entry_id"`
	BatteryType            BatteryType     `gorm:"type:enum('PP','MC_SMF');not null" json:"battery_type"`
	BatteryKg              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"battery_kg"`
	AppliedRecoveryPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"applied_recovery_percent"`
	RemeltedLeadKg         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remelted_lead_kg"`
	QuantityReceivedKg     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_received_kg"`
	ReceivableKg           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"receivable_kg"`
	RecoveryPercent        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"recovery_percent"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewRecyclingBatch struct {
	BatteryType        string           `json:"battery_type" validate:"required"`
	BatteryKg          decimal.Decimal  `json:"battery_kg"`
	QuantityReceivedKg *decimal.Decimal `json:"quantity_received_kg"`
}

type NewRecyclingEntry struct {
	Batches []NewRecyclingBatch `json:"batches" validate:"required,min=1,dive"`
}

// ComputeRecyclingFigures derives the frozen batch figures from its raw
// inputs. recovery_percent is 0 when battery_kg is 0.
func ComputeRecyclingFigures(batteryKg, ratePercent, receivedKg decimal.Decimal) (remelted, receivable, recoveryPercent decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	remelted = batteryKg.Mul(ratePercent).Div(hundred)
	receivable = remelted.Sub(receivedKg)
	if batteryKg.IsZero() {
		recoveryPercent = decimal.Zero
	} else {
		recoveryPercent = receivedKg.Div(batteryKg).Mul(hundred)
	}
	return remelted, receivable, recoveryPercent
}

func CreateRecyclingEntry(ctx context.Context, input *NewRecyclingEntry) (*RecyclingEntry, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	entry := RecyclingEntry{
		UserId:   userId,
		UserName: userName,
	}
	for _, b := range input.Batches {
		batteryType, err := ParseBatteryType(b.BatteryType)
		if err != nil {
			return nil, err
		}
		if b.BatteryKg.IsNegative() {
			return nil, errors.New("battery_kg must not be negative")
		}

		rate, err := SnapshotRecoveryRate(ctx, batteryType)
		if err != nil {
			return nil, err
		}

		receivedKg := utils.DereferencePtr(b.QuantityReceivedKg)
		remelted, receivable, recoveryPercent := ComputeRecyclingFigures(b.BatteryKg, rate, receivedKg)

		entry.Batches = append(entry.Batches, RecyclingBatch{
			BatteryType:            batteryType,
			BatteryKg:              b.BatteryKg,
			AppliedRecoveryPercent: rate,
			RemeltedLeadKg:         remelted,
			QuantityReceivedKg:     receivedKg,
			ReceivableKg:           receivable,
			RecoveryPercent:        recoveryPercent,
		})
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

func GetRecyclingEntries(ctx context.Context) ([]*RecyclingEntry, error) {
	db := config.GetDB()

	var entries []*RecyclingEntry
	if err := db.WithContext(ctx).
		Preload("Batches").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
