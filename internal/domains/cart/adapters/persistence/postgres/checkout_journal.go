package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

var _ ports.CheckoutJournal = (*CheckoutJournal)(nil)

// CheckoutJournal persists confirmed checkouts in PostgreSQL.
type CheckoutJournal struct {
	db *gorm.DB
}

func NewCheckoutJournal(db *gorm.DB) *CheckoutJournal {
	return &CheckoutJournal{db: db}
}

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

// Find loads a record by key, returning nil when absent.
func (j *CheckoutJournal) Find(ctx context.Context, key string) (*ports.CheckoutRecord, error) {
	if err := j.ensureDB(); err != nil {
		return nil, err
	}
	var record checkoutRecord
	if err := j.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.CheckoutRecord{
		Key:        record.Key,
		OwnerID:    record.OwnerID,
		PickupAt:   record.PickupAt,
		Total:      record.Total,
		ProductIDs: []string(record.ProductIDs),
		ItemCount:  record.ItemCount,
		Message:    record.Message,
		CreatedAt:  record.CreatedAt,
	}, nil
}

// Record inserts the checkout; an existing key is left untouched.
func (j *CheckoutJournal) Record(ctx context.Context, rec ports.CheckoutRecord) error {
	if err := j.ensureDB(); err != nil {
		return err
	}
	record := checkoutRecord{
		Key:        rec.Key,
		OwnerID:    rec.OwnerID,
		PickupAt:   rec.PickupAt,
		Total:      rec.Total,
		ProductIDs: pq.StringArray(rec.ProductIDs),
		ItemCount:  rec.ItemCount,
		Message:    rec.Message,
		CreatedAt:  rec.CreatedAt,
	}
	return j.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&record).Error
}

func (j *CheckoutJournal) ensureDB() error {
	if j == nil || j.db == nil {
		return errors.New("postgres checkout journal not configured")
	}
	return nil
}
