package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/config"
	"github.com/uniadmit/backoffice/models"
)

var DB *gorm.DB

// Connect opens the database and migrates the schema. If the DB is not
// up yet the process fails immediately.
func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := DB.AutoMigrate(
		&models.Institution{},
		&models.Batch{},
		&models.Student{},
		&models.Transfer{},
		&models.User{},
	); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}
