// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/database"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Password is the plaintext password of every user created by CreateUser.
const Password = "correct-horse-9"

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, role models.Role, name string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Name:              name,
		Email:             fmt.Sprintf("%s-%s@truckflow.test", name, uuid.NewString()[:8]),
		Password:          string(hash),
		Phone:             "+30 210 0000000",
		Role:              role,
		IsActive:          true,
		PreferredLanguage: "en",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateLoad inserts a load in the given status, optionally assigned.
func CreateLoad(t *testing.T, db *gorm.DB, creator uuid.UUID, driver *uuid.UUID, status models.LoadStatus) *models.Load {
	t.Helper()
	load := &models.Load{
		PickupLocation:   "Athens",
		DropoffLocation:  "Thessaloniki",
		ClientName:       "Aegean Foods",
		ClientPrice:      1200,
		DriverPrice:      700,
		AssignedDriverID: driver,
		ShippingType:     models.ShippingFTL,
		LoadingDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		LoadingTime:      "08:00",
		PaymentTerms:     30,
		Status:           status,
		CreatedBy:        creator,
	}
	if err := db.Create(load).Error; err != nil {
		t.Fatalf("create load: %v", err)
	}
	return load
}
