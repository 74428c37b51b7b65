package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.IdlePurger = (*Repository)(nil)
	_ ports.Updater    = (*Repository)(nil)
)

// Repository persists carts in PostgreSQL using GORM. Schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Get loads a cart with its lines in insertion order.
func (r *Repository) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record cartRecord
	if err := r.db.WithContext(ctx).First(&record, "owner_id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []cartItemRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return toDomain(record, items), nil
}

// Save replaces the stored lines of the cart in one transaction.
func (r *Repository) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, errors.New("cart is nil")
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	updatedAt := cart.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeCart(tx, cart, updatedAt)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, cart.OwnerID)
}

// Update locks the cart row with SELECT ... FOR UPDATE, applies fn and writes the result in the
// same transaction. The row is inserted first when missing so there is always a row to lock.
func (r *Repository) Update(ctx context.Context, ownerID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := cartRecord{OwnerID: ownerID, UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return err
		}
		var record cartRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "owner_id = ?", ownerID).Error; err != nil {
			return err
		}
		var items []cartItemRecord
		if err := tx.Where("owner_id = ?", ownerID).Order("position ASC").Find(&items).Error; err != nil {
			return err
		}
		cart := toDomain(record, items)
		if err := fn(cart); err != nil {
			return err
		}
		if err := cart.Validate(); err != nil {
			return err
		}
		updatedAt := cart.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		return writeCart(tx, cart, updatedAt)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID)
}

// Delete removes a cart and its lines.
func (r *Repository) Delete(ctx context.Context, ownerID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&cartItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("owner_id = ?", ownerID).Delete(&cartRecord{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// PurgeIdle removes carts last updated before the cutoff.
func (r *Repository) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idle := tx.Model(&cartRecord{}).Select("owner_id").Where("updated_at < ?", before)
		if err := tx.Where("owner_id IN (?)", idle).Delete(&cartItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("updated_at < ?", before).Delete(&cartRecord{})
		purged = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

// writeCart upserts the cart row and replaces its lines.
func writeCart(tx *gorm.DB, cart *domain.Cart, updatedAt time.Time) error {
	record := cartRecord{OwnerID: cart.OwnerID, UpdatedAt: updatedAt}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.Assignments(map[string]any{"updated_at": updatedAt}),
	}).Create(&record).Error; err != nil {
		return err
	}
	if err := tx.Where("owner_id = ?", cart.OwnerID).Delete(&cartItemRecord{}).Error; err != nil {
		return err
	}
	items := toItemRecords(cart)
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func toItemRecords(cart *domain.Cart) []cartItemRecord {
	items := make([]cartItemRecord, 0, len(cart.Items))
	for i, item := range cart.Items {
		items = append(items, cartItemRecord{
			OwnerID:   cart.OwnerID,
			ProductID: item.ProductID,
			Position:  i,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return items
}

func toDomain(record cartRecord, items []cartItemRecord) *domain.Cart {
	cart := &domain.Cart{OwnerID: record.OwnerID, UpdatedAt: record.UpdatedAt}
	for _, item := range items {
		cart.Items = append(cart.Items, domain.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return cart
}
