package pos

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// ItemRequest is one requested line of an open/append call, by product id.
type ItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// Service owns the canonical order lifecycle: it is the sole writer of order
// status and of the table occupancy that mirrors it.
type Service struct {
	store store.Store
}

// NewService creates the order state machine on top of a store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// snapshotItems resolves every requested product inside the tenant and turns
// it into a snapshot line. One unresolvable product fails the whole request.
func (s *Service) snapshotItems(ctx context.Context, restaurantID int64, reqs []ItemRequest) ([]model.OrderItem, float64, error) {
	if len(reqs) == 0 {
		return nil, 0, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}

	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity < 0 {
			return nil, 0, fmt.Errorf("%w: negative quantity", ErrValidation)
		}
		ids = append(ids, r.ProductID)
	}

	products, err := s.store.FindProducts(ctx, restaurantID, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve products: %w", err)
	}

	items := make([]model.OrderItem, 0, len(reqs))
	var total float64
	for _, r := range reqs {
		product, ok := products[r.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: product %d", ErrNotFound, r.ProductID)
		}
		quantity := r.Quantity
		if quantity == 0 {
			quantity = 1
		}
		item := model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		}
		items = append(items, item)
		total += item.LineTotal()
	}
	return items, total, nil
}

// OpenOrder starts a table's tab: snapshots the items, creates the order and
// flips the table to occupied with a back-reference. Order creation and the
// table flip are two separate document writes; if the flip fails the order
// is compensated to cancelled rather than left orphaned.
func (s *Service) OpenOrder(ctx context.Context, restaurantID int64, tableNumber int, reqs []ItemRequest) (*model.Order, error) {
	table, err := s.store.FindTableByNumber(ctx, restaurantID, tableNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, tableNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %d: %w", tableNumber, err)
	}
	if table.Status == model.TableOccupied {
		return nil, fmt.Errorf("%w: table %d is occupied", ErrConflict, tableNumber)
	}

	items, total, err := s.snapshotItems(ctx, restaurantID, reqs)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Items:        items,
		TotalAmount:  total,
		Status:       StatusPending,
		Version:      1,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The flip is guarded against the table being occupied, so a racing
	// open that won between our read and this write loses here instead of
	// overwriting the winner's claim.
	if err := s.store.OccupyTable(ctx, table.ID, order.ID); err != nil {
		// Compensating action: never leave an active order pointing at a
		// table that was not flipped.
		if cerr := s.store.UpdateOrderStatus(ctx, order.ID, StatusPending, StatusCancelled); cerr != nil {
			log.Printf("failed to cancel orphaned order %s: %v", order.ID, cerr)
		}
		if errors.Is(err, store.ErrStaleWrite) {
			return nil, fmt.Errorf("%w: table %d is occupied", ErrConflict, tableNumber)
		}
		return nil, fmt.Errorf("failed to occupy table %d: %w", tableNumber, err)
	}

	return order, nil
}

// AppendItems adds snapshot lines to an open order and recomputes the total.
// The write is guarded by the order's version; expectedVersion, when
// non-zero, additionally rejects requests built from a stale read.
func (s *Service) AppendItems(ctx context.Context, restaurantID int64, orderID string, reqs []ItemRequest, expectedVersion int64) (*model.Order, error) {
	order, err := s.store.FindOrder(ctx, restaurantID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order %s: %w", orderID, err)
	}
	if IsTerminal(order.Status) {
		return nil, fmt.Errorf("%w: order %s is %s", ErrConflict, orderID, order.Status)
	}
	if expectedVersion != 0 && expectedVersion != order.Version {
		return nil, fmt.Errorf("%w: version %d is stale", ErrConflict, expectedVersion)
	}

	items, added, err := s.snapshotItems(ctx, restaurantID, reqs)
	if err != nil {
		return nil, err
	}

	err = s.store.AppendOrderItems(ctx, order.ID, order.Version, items, order.TotalAmount+added)
	if errors.Is(err, store.ErrStaleWrite) {
		return nil, fmt.Errorf("%w: order %s was modified concurrently", ErrConflict, orderID)
	}
	if err != nil {
		return nil, err
	}

	return s.store.FindOrder(ctx, restaurantID, orderID)
}

// Transition moves an order one step forward along the fixed sequence, or
// into cancelled. On success the updated order is returned for broadcasting.
func (s *Service) Transition(ctx context.Context, restaurantID int64, orderID, newStatus string) (*model.Order, error) {
	if !IsStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	order, err := s.store.FindOrder(ctx, restaurantID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order %s: %w", orderID, err)
	}
	if !CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, order.Status, newStatus)
	}

	err = s.store.UpdateOrderStatus(ctx, order.ID, order.Status, newStatus)
	if errors.Is(err, store.ErrStaleWrite) {
		return nil, fmt.Errorf("%w: order %s was modified concurrently", ErrConflict, orderID)
	}
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	return order, nil
}

// FreeTable sets a table back to available and clears the order reference.
// A table with a still-active order cannot be freed.
func (s *Service) FreeTable(ctx context.Context, restaurantID, tableID int64) (*model.Table, error) {
	table, err := s.store.FindTableByID(ctx, restaurantID, tableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, tableID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %d: %w", tableID, err)
	}

	if table.CurrentOrderID != nil {
		order, err := s.store.FindOrder(ctx, restaurantID, *table.CurrentOrderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up current order: %w", err)
		}
		if order != nil && !IsTerminal(order.Status) {
			return nil, fmt.Errorf("%w: order %s is still %s", ErrConflict, order.ID, order.Status)
		}
	}

	// Guarded by the order reference we just checked, so a clear built
	// from a stale read cannot wipe a newer order's claim.
	if err := s.store.ReleaseTable(ctx, table.ID, table.CurrentOrderID); err != nil {
		if errors.Is(err, store.ErrStaleWrite) {
			return nil, fmt.Errorf("%w: table %d changed concurrently", ErrConflict, tableID)
		}
		return nil, fmt.Errorf("failed to free table %d: %w", tableID, err)
	}

	table.Status = model.TableAvailable
	table.CurrentOrderID = nil
	return table, nil
}

// RequestAssistance raises a table's assistance flag. The endpoint behind it
// is public: a customer device is never a socket participant, it just posts
// this call.
func (s *Service) RequestAssistance(ctx context.Context, restaurantID int64, tableNumber int) (*model.Table, error) {
	return s.setAssistance(ctx, restaurantID, tableNumber, true)
}

// ResolveAssistance clears a table's assistance flag.
func (s *Service) ResolveAssistance(ctx context.Context, restaurantID int64, tableNumber int) (*model.Table, error) {
	return s.setAssistance(ctx, restaurantID, tableNumber, false)
}

func (s *Service) setAssistance(ctx context.Context, restaurantID int64, tableNumber int, flag bool) (*model.Table, error) {
	table, err := s.store.FindTableByNumber(ctx, restaurantID, tableNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, tableNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %d: %w", tableNumber, err)
	}

	if err := s.store.SetTableAssistance(ctx, table.ID, flag); err != nil {
		return nil, err
	}
	table.NeedsAssistance = flag
	return table, nil
}
