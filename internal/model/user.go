package model

import "time"

// User is a staff account. The password hash never leaves the server.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RestaurantID int64     `gorm:"index;not null" json:"restaurantId"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:staff" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Restaurant Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
