package database

import (
	"gorm.io/gorm"
)

// constraintStatements holds indexes the model tags cannot express.
// Uniqueness of (pool_id, participant_id) and (topic_id, participant_id)
// and the (pool_id, position) lookup index come from the gorm tags through
// AutoMigrate. The position index stays non-unique: the bulk decrement on
// leave would transiently collide with a non-deferrable unique constraint.
//
// Postgres has no ADD CONSTRAINT IF NOT EXISTS, so every statement here
// must use the CREATE INDEX IF NOT EXISTS form to stay rerunnable.
var constraintStatements = []string{
	// Confirmed-count checks filter by topic and confirmation state
	`CREATE INDEX IF NOT EXISTS idx_reservations_topic_confirmed
	 ON reservations (topic_id, confirmed);`,
}

// MigrateConstraints applies the supplemental indexes for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
