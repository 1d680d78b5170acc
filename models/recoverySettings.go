package models

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recoverySettingsCacheKey = "leadtrack:recovery-settings"
const recoverySettingsLockKey = "leadtrack:recovery-settings:lock"

// RecoverySettings is a singleton row holding the expected lead recovery
// rate per battery type. Recycling batches snapshot the applicable rate at
// creation, so editing these values never rewrites history.
type RecoverySettings struct {
	ID               int             `gorm:"primary_key" json:"id"`
	PpBatteryPercent decimal.Decimal `gorm:"type:decimal(20,4);default:60.5" json:"pp_battery_percent"`
	McSmfPercent     decimal.Decimal `gorm:"type:decimal(20,4);default:58.0" json:"mc_smf_battery_percent"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type UpdateRecoverySettings struct {
	PpBatteryPercent decimal.Decimal `json:"pp_battery_percent" validate:"required"`
	McSmfPercent     decimal.Decimal `json:"mc_smf_battery_percent" validate:"required"`
}

func defaultRecoverySettings() RecoverySettings {
	return RecoverySettings{
		PpBatteryPercent: decimal.NewFromFloat(60.5),
		McSmfPercent:     decimal.NewFromFloat(58.0),
	}
}

// RateFor returns the recovery percentage for the given battery type.
func (s *RecoverySettings) RateFor(batteryType BatteryType) decimal.Decimal {
	if batteryType == BatteryTypePP {
		return s.PpBatteryPercent
	}
	return s.McSmfPercent
}

// GetRecoverySettings returns the singleton row, creating it with defaults
// on first access.
func GetRecoverySettings(ctx context.Context) (*RecoverySettings, error) {
	var settings RecoverySettings

	found, err := config.GetRedisObject(recoverySettingsCacheKey, &settings)
	if err == nil && found {
		return &settings, nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = defaultRecoverySettings()
		if err := db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	config.SetRedisObject(recoverySettingsCacheKey, settings, 10*time.Minute)
	return &settings, nil
}

// SaveRecoverySettings replaces both rates and invalidates the cache.
func SaveRecoverySettings(ctx context.Context, input *UpdateRecoverySettings) (*RecoverySettings, error) {
	hundred := decimal.NewFromInt(100)
	for _, rate := range []decimal.Decimal{input.PpBatteryPercent, input.McSmfPercent} {
		if !rate.IsPositive() || rate.GreaterThan(hundred) {
			return nil, errors.New("recovery percent must be between 0 and 100")
		}
	}

	settings, err := GetRecoverySettings(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	settings.PpBatteryPercent = input.PpBatteryPercent
	settings.McSmfPercent = input.McSmfPercent
	if err := db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}

	config.RemoveRedisKey(recoverySettingsCacheKey)
	return settings, nil
}

// SnapshotRecoveryRate reads the rate for a battery type under a short
// distributed lock, so a concurrent settings update cannot interleave with
// the read-then-freeze done when a recycling batch is created. Without
// Redis the lock is skipped and the plain read is used.
func SnapshotRecoveryRate(ctx context.Context, batteryType BatteryType) (decimal.Decimal, error) {
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, recoverySettingsLockKey, 3*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
		})
		if err == nil {
			defer lock.Release(ctx)
		}
	}

	settings, err := GetRecoverySettings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return settings.RateFor(batteryType), nil
}
