package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&cartRecord{},
		&cartItemRecord{},
		&checkoutRecord{},
	)
}

// Cart schema mirrors the cart Postgres adapter.
type cartRecord struct {
	OwnerID   string    `gorm:"primaryKey;column:owner_id;size:255"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	OwnerID   string          `gorm:"primaryKey;column:owner_id;size:255"`
	ProductID string          `gorm:"primaryKey;column:product_id;size:255"`
	Position  int             `gorm:"column:position"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Quantity  int             `gorm:"column:quantity"`
	ImageURL  *string         `gorm:"column:image_url"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// Checkout journal schema mirrors the cart checkout journal.
type checkoutRecord struct {
	Key        string          `gorm:"primaryKey;column:key;size:255"`
	OwnerID    string          `gorm:"column:owner_id;size:255;index"`
	PickupAt   time.Time       `gorm:"column:pickup_at"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	ProductIDs pq.StringArray  `gorm:"column:product_ids;type:text[]"`
	ItemCount  int             `gorm:"column:item_count"`
	Message    string          `gorm:"column:message"`
	CreatedAt  time.Time       `gorm:"column:created_at;index"`
}

func (checkoutRecord) TableName() string { return "cart_checkouts" }
