package model

import "time"

// Table occupancy states.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table represents a physical seat of the house. Occupancy status and the
// current-order back-reference always change together: set on order
// creation, cleared on free.
type Table struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	RestaurantID    int64     `gorm:"not null;uniqueIndex:idx_tables_tenant_number" json:"restaurantId"`
	TableNumber     int       `gorm:"not null;uniqueIndex:idx_tables_tenant_number" json:"tableNumber"`
	Capacity        int       `gorm:"not null" json:"capacity"`
	Status          string    `gorm:"size:16;not null;default:available" json:"status"`
	NeedsAssistance bool      `gorm:"not null;default:false" json:"needsAssistance"`
	CurrentOrderID  *string   `gorm:"size:36" json:"currentOrderId"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	CurrentOrder *Order `gorm:"foreignKey:CurrentOrderID" json:"currentOrder,omitempty"`
}
