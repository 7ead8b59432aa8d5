package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-frontdesk/models"
)

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	// instants are stored in UTC; the operational zone is applied in code
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

// resolveMySQLDSN prefers MYSQL_URL, then DATABASE_URL, then the DB_* variables.
func resolveMySQLDSN() (string, string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, strings.TrimSpace(os.Getenv("DB_NAME")), nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := os.Getenv("DB_PASS")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	)
	return dsn, dbName, nil
}

// ConnectDatabase opens MySQL, migrates the schema and seeds reference data.
func ConnectDatabase(cfg Config, log *logrus.Logger) (*gorm.DB, error) {
	dsn, dbName, err := resolveMySQLDSN()
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	gormLogger := logger.New(log, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// parents before children
	if err := db.AutoMigrate(
		&models.User{},
		&models.HotelSetting{},
		&models.RoomType{},
		&models.Floor{},
		&models.Customer{},
		&models.Room{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.Payment{},
		&models.Service{},
		&models.Bill{},
		&models.Expense{},
	); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dbName, err)
	}

	if err := SeedDatabase(db, cfg, log); err != nil {
		return nil, err
	}
	log.WithField("database", dbName).Info("database ready")
	return db, nil
}

// SeedDatabase creates the first admin and the reference rows when missing.
func SeedDatabase(db *gorm.DB, cfg Config, log *logrus.Logger) error {
	// ---------------- Admin ----------------
	var admin models.User
	err := db.Where("email = ?", strings.ToLower(cfg.AdminEmail)).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin = models.User{
			Name:     "Admin User",
			Email:    strings.ToLower(cfg.AdminEmail),
			Password: string(hash),
			Role:     models.RoleAdmin,
			Active:   true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.WithField("email", admin.Email).Info("default admin seeded")
	case err != nil:
		return err
	}

	// ---------------- RoomTypes ----------------
	var rtCount int64
	if err := db.Model(&models.RoomType{}).Count(&rtCount).Error; err != nil {
		return err
	}
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TypeName: "Standard", Description: "Standard Room", MaxGuests: 2},
			{TypeName: "Deluxe", Description: "Deluxe Room", MaxGuests: 3},
			{TypeName: "Suite", Description: "Suite", MaxGuests: 4},
			{TypeName: "Family", Description: "Family Room", MaxGuests: 5},
		}
		if err := db.Create(&roomTypes).Error; err != nil {
			return fmt.Errorf("seed room types: %w", err)
		}
		log.Info("room types seeded")
	}

	// ---------------- Floors ----------------
	var floorCount int64
	if err := db.Model(&models.Floor{}).Count(&floorCount).Error; err != nil {
		return err
	}
	if floorCount == 0 {
		floors := []models.Floor{
			{Name: "Ground", Level: 0},
			{Name: "First", Level: 1},
			{Name: "Second", Level: 2},
		}
		if err := db.Create(&floors).Error; err != nil {
			return fmt.Errorf("seed floors: %w", err)
		}
		log.Info("floors seeded")
	}
	return nil
}
