package model

import "time"

// Restaurant is the tenant document. Every other entity and every realtime
// audience is scoped to exactly one restaurant.
type Restaurant struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Address   string    `gorm:"size:256" json:"address"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Tables []Table `gorm:"foreignKey:RestaurantID" json:"-"`
}
