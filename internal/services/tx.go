package services

import (
	"context"

	"gorm.io/gorm"
)

// runTx executes fn inside a store transaction. Without a database handle
// fn runs directly with a nil tx, which the repos treat as "use your own
// handle" — the same convention they follow everywhere else.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
