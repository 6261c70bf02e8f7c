package database

import (
	"slotly/internal/pools"
	"slotly/internal/reservations"
	"slotly/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&pools.ResourcePool{},
		&pools.Topic{},
		&waitlist.WaitlistEntry{},
		&reservations.Reservation{},
	)
}
