// scripts/create_admin.go
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/uniadmit/backoffice/config"
	"github.com/uniadmit/backoffice/database"
	"github.com/uniadmit/backoffice/models"
)

func main() {
	cfg := config.Load()
	database.Connect(cfg)

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var existing models.User
	if err := database.DB.Where("username = ?", username).First(&existing).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("failed to query users: %v", err)
		}
	} else {
		fmt.Println("admin user already exists with username:", username)
		os.Exit(0)
	}

	u := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "admin",
		Name:         "Administrator",
	}
	if err := database.DB.Create(&u).Error; err != nil {
		log.Fatalf("failed to insert admin: %v", err)
	}

	fmt.Println("admin user created:", username)
}
