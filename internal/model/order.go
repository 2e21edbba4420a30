package model

import "time"

// Order represents one table's active tab.
type Order struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	RestaurantID int64       `gorm:"index;not null" json:"restaurantId"`
	TableNumber  int         `gorm:"not null" json:"tableNumber"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount  float64     `gorm:"not null" json:"totalAmount"`
	Status       string      `gorm:"size:16;not null;default:pending" json:"status"`
	Version      int64       `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updatedAt"`
}

// OrderItem is a snapshot line item: name and unit price are copied from the
// product at order time and never updated afterwards.
type OrderItem struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	OrderID   string  `gorm:"index;size:36;not null" json:"-"`
	ProductID int64   `gorm:"not null" json:"productId"`
	Name      string  `gorm:"size:256;not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
}

// LineTotal returns price × quantity for this snapshot line.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
