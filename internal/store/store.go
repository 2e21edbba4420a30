package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"restaurant-pos-backend/internal/model"
)

// ErrStaleWrite is returned when a guarded order update matched no row: a
// concurrent writer advanced the version or status first.
var ErrStaleWrite = errors.New("stale write")

// Store defines the interface for all database operations the order state
// machine and the notification workers depend on. Plain CRUD handlers use
// DB() directly.
type Store interface {
	DB() *gorm.DB

	FindTableByNumber(ctx context.Context, restaurantID int64, tableNumber int) (*model.Table, error)
	FindTableByID(ctx context.Context, restaurantID, tableID int64) (*model.Table, error)
	SetTableAssistance(ctx context.Context, tableID int64, flag bool) error
	OccupyTable(ctx context.Context, tableID int64, orderID string) error
	ReleaseTable(ctx context.Context, tableID int64, currentOrderID *string) error

	FindProducts(ctx context.Context, restaurantID int64, ids []int64) (map[int64]model.Product, error)

	CreateOrder(ctx context.Context, order *model.Order) error
	FindOrder(ctx context.Context, restaurantID int64, orderID string) (*model.Order, error)
	AppendOrderItems(ctx context.Context, orderID string, version int64, items []model.OrderItem, newTotal float64) error
	UpdateOrderStatus(ctx context.Context, orderID, fromStatus, toStatus string) error

	SubscriptionsForTable(ctx context.Context, restaurantID int64, tableNumber int) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) FindTableByNumber(ctx context.Context, restaurantID int64, tableNumber int) (*model.Table, error) {
	var table model.Table
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *gormStore) FindTableByID(ctx context.Context, restaurantID, tableID int64) (*model.Table, error) {
	var table model.Table
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		First(&table, tableID).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// SetTableAssistance writes only the assistance flag, so it can never
// carry a stale occupancy state back into the row.
func (s *gormStore) SetTableAssistance(ctx context.Context, tableID int64, flag bool) error {
	err := s.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("needs_assistance", flag).Error
	if err != nil {
		return fmt.Errorf("failed to update assistance flag on table %d: %w", tableID, err)
	}
	return nil
}

// OccupyTable flips a table to occupied with the order back-reference. The
// update is guarded by the table not already being occupied, so two racing
// opens cannot both win.
func (s *gormStore) OccupyTable(ctx context.Context, tableID int64, orderID string) error {
	res := s.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ? AND status <> ?", tableID, model.TableOccupied).
		Updates(map[string]any{
			"status":           model.TableOccupied,
			"current_order_id": orderID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to occupy table %d: %w", tableID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// ReleaseTable sets a table back to available and clears the order
// reference. The update is guarded by the back-reference the caller read,
// so a clear built from a stale read cannot wipe a newer order's claim.
func (s *gormStore) ReleaseTable(ctx context.Context, tableID int64, currentOrderID *string) error {
	query := s.db.WithContext(ctx).Model(&model.Table{}).Where("id = ?", tableID)
	if currentOrderID == nil {
		query = query.Where("current_order_id IS NULL")
	} else {
		query = query.Where("current_order_id = ?", *currentOrderID)
	}

	res := query.Updates(map[string]any{
		"status":           model.TableAvailable,
		"current_order_id": nil,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to release table %d: %w", tableID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// FindProducts resolves product ids within the tenant. Callers decide what a
// missing id means; the map simply omits it.
func (s *gormStore) FindProducts(ctx context.Context, restaurantID int64, ids []int64) (map[int64]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND id IN ?", restaurantID, ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	productMap := make(map[int64]model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}
	return productMap, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *gormStore) FindOrder(ctx context.Context, restaurantID int64, orderID string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("restaurant_id = ?", restaurantID).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AppendOrderItems adds snapshot rows and advances total and version in one
// transaction. The update is guarded by the version the caller read, so a
// concurrent appender cannot silently lose the race.
func (s *gormStore) AppendOrderItems(ctx context.Context, orderID string, version int64, items []model.OrderItem, newTotal float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND version = ?", orderID, version).
			Updates(map[string]any{
				"total_amount": newTotal,
				"version":      version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to advance order %s: %w", orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleWrite
		}

		for i := range items {
			items[i].OrderID = orderID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to append items to order %s: %w", orderID, err)
		}
		return nil
	})
}

// UpdateOrderStatus moves an order between two known statuses. The update is
// guarded by the expected current status so racing transitions cannot both
// win.
func (s *gormStore) UpdateOrderStatus(ctx context.Context, orderID, fromStatus, toStatus string) error {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Update("status", toStatus)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// SubscriptionsForTable returns the push subscriptions of staff devices
// watching the given table within the tenant.
func (s *gormStore) SubscriptionsForTable(ctx context.Context, restaurantID int64, tableNumber int) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_table_mapping stm ON stm.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN tables ON tables.id = stm.table_id").
		Where("tables.restaurant_id = ? AND tables.table_number = ?", restaurantID, tableNumber).
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}
