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

// Sale removes quantity against a named SKU. SkuType is "Pure Lead",
// "High Lead" or an RML lot label; for RML lots the minting purchase batch
// is referenced when it can be resolved at creation.
type Sale struct {
	ID         int             `gorm:"primary_key" json:"id"`
	UserId     int             `gorm:"index;not null" json:"user_id"`
	UserName   string          `gorm:"size:100;not null" json:"user_name"`
	SkuType    string          `gorm:"index;size:255;not null" json:"sku_type"`
	RmlBatchId *int            `gorm:"index" json:"rml_batch_id"`
	QuantityKg decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_kg"`
	Party      string          `gorm:"size:255" json:"party"`
	SaleDate   time.Time       `gorm:"not null" json:"sale_date"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

type NewSale struct {
	SkuType    string          `json:"sku_type" validate:"required"`
	QuantityKg decimal.Decimal `json:"quantity_kg" validate:"required"`
	Party      string          `json:"party" validate:"required"`
	SaleDate   *time.Time      `json:"sale_date"`
}

// CreateSale records a sale. Quantity is not capped at current stock: the
// ledger clamps at zero on the read side, so an oversell only flattens the
// SKU's figure. It is logged so the discrepancy is visible.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	if !input.QuantityKg.IsPositive() {
		return nil, errors.New("quantity_kg must be positive")
	}

	skuType := strings.TrimSpace(input.SkuType)
	if skuType == "" {
		return nil, errors.New("sku_type is required")
	}

	saleDate := time.Now().UTC()
	if input.SaleDate != nil {
		saleDate = input.SaleDate.UTC()
	}

	sale := Sale{
		UserId:     userId,
		UserName:   userName,
		SkuType:    skuType,
		QuantityKg: input.QuantityKg,
		Party:      strings.TrimSpace(input.Party),
		SaleDate:   saleDate,
	}

	if skuType != SkuPureLead && skuType != SkuHighLead {
		rmlBatch, err := FindRmlBatchBySku(ctx, skuType)
		if err != nil {
			config.LogError(logger, "sale", "CreateSale",
				"no purchase batch found for sku", skuType, err)
		} else {
			sale.RmlBatchId = &rmlBatch.ID
		}
	}

	if available, err := availableForSku(ctx, skuType); err == nil && input.QuantityKg.GreaterThan(available) {
		logger.WithField("sku", skuType).
			WithField("available_kg", available.String()).
			WithField("sale_kg", input.QuantityKg.String()).
			Warn("sale exceeds computed stock; figure will clamp at zero")
	}

	if err := db.WithContext(ctx).Create(&sale).Error; err != nil {
		return nil, err
	}

	return &sale, nil
}

func availableForSku(ctx context.Context, skuType string) (decimal.Decimal, error) {
	skus, err := GetAvailableSkus(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, sku := range skus {
		if sku.SkuType == skuType {
			return sku.AvailableKg, nil
		}
	}
	return decimal.Zero, nil
}

func GetSales(ctx context.Context) ([]*Sale, error) {
	db := config.GetDB()

	var sales []*Sale
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func DeleteSale(ctx context.Context, id int) error {
	db := config.GetDB()

	result := db.WithContext(ctx).Delete(&Sale{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
