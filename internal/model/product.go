package model

import "time"

// Product is a menu item. Orders never reference products live; they carry a
// name/price snapshot taken at order time, so later menu edits cannot alter
// historical totals.
type Product struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RestaurantID int64     `gorm:"index;not null" json:"restaurantId"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Price        float64   `gorm:"not null" json:"price"`
	Category     string    `gorm:"size:64" json:"category"`
	Description  string    `gorm:"size:1024" json:"description"`
	IsAvailable  bool      `gorm:"not null;default:true" json:"isAvailable"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}
