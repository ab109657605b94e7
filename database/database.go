package database

import (
	"fmt"
	"log"

	"api/config"
	"api/models"
	"api/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

var DefaultPassword = "admin"
var StartingCoins = 500

// InitDB initializes the database connection and migrates the models and populates the database with default values if needed
func InitDB() {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable TimeZone=Europe/Paris", config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.DuelTask{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
	)

	if err != nil {
		log.Fatal("failed to migrate database: ", err)
	}
	Populate()
}

// Populate populates the database with default values if needed
func Populate() {
	var countUser int64

	// Check if there is no user in the database
	DB.Model(&models.User{}).Count(&countUser)
	if countUser == 0 {
		// Create default user admin with a default hashed password either from the .env file or the DefaultPassword constant
		password := DefaultPassword
		if config.DefaultPassword != "" {
			password = config.DefaultPassword
		}

		password, err := utils.HashPassword(password)
		if err != nil {
			panic(err)
		}

		user := models.User{
			Email:         "admin@admin.com",
			Username:      "admin",
			Password:      password,
			Coins:         StartingCoins,
			IsAdmin:       true,
			LastConnected: nil,
		}
		DB.Create(&user)
		log.Println("Default user admin created")
	}

	// Seed a starter category with a few duel tasks so duels can activate on a fresh install
	var countTask int64
	DB.Model(&models.DuelTask{}).Count(&countTask)
	if countTask == 0 {
		category := models.Category{Name: "Classical Ciphers", Description: "Substitution and transposition basics"}
		DB.Create(&category)

		tasks := []models.DuelTask{
			{Title: "Caesar warmup", Body: "Decrypt: FDHVDU vintage shift", Flag: utils.WrapFlag(config.FlagPrefix, "caesar_salad"), CategoryID: &category.ID, Difficulty: "easy"},
			{Title: "Vigenere square", Body: "Key length is four. Ciphertext in the attachment.", Flag: utils.WrapFlag(config.FlagPrefix, "le_chiffre_indechiffrable"), CategoryID: &category.ID, Difficulty: "medium"},
			{Title: "Rail fence sprint", Body: "Three rails, read fast.", Flag: utils.WrapFlag(config.FlagPrefix, "zigzag_zigzag"), CategoryID: &category.ID, Difficulty: "easy"},
		}
		for i := range tasks {
			DB.Create(&tasks[i])
		}
		log.Println("Starter duel tasks created")
	}
}
