package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// Quote is a versioned, priced proposal for a deal. Versions are strictly
// increasing per deal and never reused; an approved quote's monetary fields
// are frozen.
type Quote struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID    uuid.UUID `gorm:"column:deal_id;type:uuid;not null;index;uniqueIndex:ux_quotes_deal_version"`
	FactoryID uuid.UUID `gorm:"column:factory_id;type:uuid;not null"`
	Version   int       `gorm:"column:version;not null;uniqueIndex:ux_quotes_deal_version"`
	Quantity  int64     `gorm:"column:quantity;not null"`

	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	ToolingFee  decimal.Decimal `gorm:"column:tooling_fee;type:numeric(14,4);not null;default:0"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:numeric(14,4);not null;default:0"`
	OtherFees   decimal.Decimal `gorm:"column:other_fees;type:numeric(14,4);not null;default:0"`
	CostRatio   decimal.Decimal `gorm:"column:cost_ratio;type:numeric(6,4);not null"`

	ExchangeRate   decimal.Decimal `gorm:"column:exchange_rate;type:numeric(12,6);not null"`
	TaxRatePercent decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(6,3);not null"`

	ProductCost        decimal.Decimal `gorm:"column:product_cost;type:numeric(16,4);not null"`
	TotalCost          decimal.Decimal `gorm:"column:total_cost;type:numeric(16,4);not null"`
	UnitCost           decimal.Decimal `gorm:"column:unit_cost;type:numeric(16,6);not null"`
	SellingPriceSource decimal.Decimal `gorm:"column:selling_price_source;type:numeric(16,6);not null"`
	SellingPriceTarget decimal.Decimal `gorm:"column:selling_price_target;type:numeric(16,0);not null"`
	BillingPreTax      decimal.Decimal `gorm:"column:billing_pre_tax;type:numeric(18,0);not null"`
	BillingWithTax     decimal.Decimal `gorm:"column:billing_with_tax;type:numeric(18,0);not null"`
	GrossProfitSource  decimal.Decimal `gorm:"column:gross_profit_source;type:numeric(16,4);not null"`
	GrossProfitMargin  decimal.Decimal `gorm:"column:gross_profit_margin;type:numeric(8,4);not null"`

	Status     enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	ApprovedAt *time.Time        `gorm:"column:approved_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
