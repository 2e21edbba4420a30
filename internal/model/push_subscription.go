package model

import "time"

// PushSubscription holds the information for a staff device's browser push
// subscription. Watched tables are kept in a join table so the notification
// workers can target subscribers of a single table.
type PushSubscription struct {
	Endpoint     string    `gorm:"primaryKey"`
	P256DH       string    `gorm:"column:p256dh;not null"`
	Auth         string    `gorm:"not null"`
	RestaurantID int64     `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`

	// Associations
	Tables []*Table `gorm:"many2many:subscription_table_mapping;"`
}
