package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RmlPurchaseEntry{},
		&RmlPurchaseBatch{},
		&RefiningEntry{},
		&RefiningBatch{},
		&RecyclingEntry{},
		&RecyclingBatch{},
		&DrossRecyclingEntry{},
		&DrossRecyclingBatch{},
		&Sale{},
		&RecoverySettings{},
	)
}
