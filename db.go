package main

import (
	"fmt"
	"strings"

	"rashan/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// initDB connects Postgres and migrates the auth and ledger tables. The
// database is optional; without DB_DSN the service runs on the JSON file
// ledger alone and user accounts are unavailable.
func initDB(dsn string) error {
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	// Migrate models individually so a failure on one doesn't block others
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logg.Warn().Err(err).Msg("migration warning (users)")
	}
	if err := db.AutoMigrate(&models.Donation{}); err != nil {
		logg.Warn().Err(err).Msg("migration warning (donations)")
	}
	seedDB()
	return nil
}

func seedDB() {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return
	}
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := models.User{Username: "admin", HashedPassword: hashedPassword}
	if err := db.Create(&admin).Error; err != nil {
		logg.Warn().Err(err).Msg("failed to seed admin user")
		return
	}
	logg.Info().Msg("seeded admin user: username=admin, password=admin123")
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
