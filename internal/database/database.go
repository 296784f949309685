package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/martensmichael89-pixel/parking4free/internal/config"
	"github.com/martensmichael89-pixel/parking4free/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for all models.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.ParkingSpot{},
		&models.ReportedSpot{},
		&models.Rating{},
		&models.UserStatistics{},
		&models.Favorite{},
		&models.SystemLog{},
	)
}

// Seed creates the admin account and sample parking spots on an empty
// database. Skipped silently when data already exists.
func Seed(cfg *config.Config) error {
	if cfg.SeedAdminPassword != "" {
		var admin models.User
		if err := DB.Where("email = ?", cfg.SeedAdminEmail).First(&admin).Error; err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash seed admin password: %w", err)
			}
			admin = models.User{
				Name:     "Admin",
				Email:    cfg.SeedAdminEmail,
				Password: string(hash),
				Role:     "admin",
			}
			if err := DB.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to create seed admin: %w", err)
			}
			slog.Info("admin account created", "email", cfg.SeedAdminEmail)
		}
	}

	var count int64
	DB.Model(&models.ParkingSpot{}).Count(&count)
	if count > 0 {
		return nil
	}

	spots := []models.ParkingSpot{
		{Name: "Parkplatz Alexanderplatz", Address: "Alexanderplatz 1, 10178 Berlin", City: "Berlin", Type: models.SpotTypePaid, Lat: f64(52.5219), Lng: f64(13.4132), Available: true},
		{Name: "Kostenloser Parkplatz Tiergarten", Address: "Strasse des 17. Juni, 10557 Berlin", City: "Berlin", Type: models.SpotTypeFree, Lat: f64(52.5145), Lng: f64(13.3505), Available: true},
		{Name: "Parkhaus Rathaus Hamburg", Address: "Rathausmarkt 1, 20095 Hamburg", City: "Hamburg", Type: models.SpotTypePaid, Lat: f64(53.5511), Lng: f64(9.9937), Available: false},
		{Name: "Strassenparken St. Pauli", Address: "Reeperbahn 1, 20359 Hamburg", City: "Hamburg", Type: models.SpotTypeTimeLimited, Lat: f64(53.5488), Lng: f64(9.9542), Available: true},
		{Name: "Parkplatz Marienplatz", Address: "Marienplatz 1, 80331 Muenchen", City: "Muenchen", Type: models.SpotTypePaid, Lat: f64(48.1372), Lng: f64(11.5755), Available: true},
		{Name: "Kostenloser Parkplatz Olympiapark", Address: "Spiridon-Louis-Ring 21, 80809 Muenchen", City: "Muenchen", Type: models.SpotTypeFree, Lat: f64(48.1758), Lng: f64(11.5497), Available: true},
		{Name: "Parkhaus Dom Koeln", Address: "Domkloster 4, 50667 Koeln", City: "Koeln", Type: models.SpotTypePaid, Lat: f64(50.9375), Lng: f64(6.9603), Available: true},
		{Name: "Strassenparken Altstadt", Address: "Hohe Strasse 1, 50667 Koeln", City: "Koeln", Type: models.SpotTypeTimeLimited, Lat: f64(50.9366), Lng: f64(6.9584), Available: false},
	}
	if err := DB.Create(&spots).Error; err != nil {
		return fmt.Errorf("failed to seed parking spots: %w", err)
	}
	slog.Info("sample parking spots seeded", "count", len(spots))
	return nil
}

func f64(v float64) *float64 { return &v }

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
