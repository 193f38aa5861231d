package db

import (
	"matchday/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table the application owns, in creation order
func Models() []any {
	return []any{
		&domain.Account{},
		&domain.AccountItem{},
		&domain.Fixture{},
		&domain.Prediction{},
		&domain.CoinTransaction{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
