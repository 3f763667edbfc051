// File: /database/database.go
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"motoroutes-api/config"
	"motoroutes-api/models"
)

// Initialize opens the primary connection for cfg.DBDriver and registers any read replicas.
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// SQLite serializes writers; a single connection also keeps in-memory databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if len(cfg.DBReplicaURLs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.DBReplicaURLs))
		for _, url := range cfg.DBReplicaURLs {
			replica, err := dialectorFor(cfg.DBDriver, url)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, replica)
		}

		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("failed to register read replicas: %w", err)
		}
		log.Info().Int("replicas", len(replicas)).Msg("read replicas registered")
	}

	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func newLogger(level string) logger.Interface {
	gormLog := log.With().Str("component", "gorm").Logger()

	logLevel := logger.Warn
	if lvl, err := zerolog.ParseLevel(level); err == nil && lvl <= zerolog.DebugLevel {
		logLevel = logger.Info
	}

	return logger.New(&gormLog, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Route{},
		&models.Location{},
		&models.Image{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	return nil
}

// addCustomIndexes creates composite indexes used by the list endpoints. Failures are logged only.
func addCustomIndexes(db *gorm.DB) {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		{"routes", "idx_routes_creator_created", []string{"creator_id", "created_at"}},
		{"locations", "idx_locations_route_created", []string{"route_id", "created_at"}},
		{"images", "idx_images_route_created", []string{"route_id", "created_at"}},
		{"comments", "idx_comments_route_created", []string{"route_id", "created_at"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			log.Warn().Err(err).Str("index", idx.name).Msg("could not create index")
		}
	}
}

// SeedData populates an empty database with a couple of riders and a sample route for development.
func SeedData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		log.Info().Msg("database already has data, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("ridefast123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	year := 2021
	testUsers := []models.User{
		{
			Username:        "john_doe",
			Email:           "john@example.com",
			Password:        string(hash),
			FirstName:       "John",
			LastName:        "Doe",
			Country:         "Italy",
			MotorcycleType:  models.MotorcycleAdventure,
			MotorcycleBrand: "BMW",
			MotorcycleModel: "R 1250 GS",
			MotorcycleYear:  &year,
		},
		{
			Username:  "jane_smith",
			Email:     "jane@example.com",
			Password:  string(hash),
			FirstName: "Jane",
			LastName:  "Smith",
			Country:   "Portugal",
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := range testUsers {
			if err := tx.Create(&testUsers[i]).Error; err != nil {
				return fmt.Errorf("failed to create seed user %s: %w", testUsers[i].Username, err)
			}
		}

		days := 2
		route := models.Route{
			Title:        "Stelvio Pass",
			Description:  "Forty-eight hairpins up to 2757 m.",
			Difficulty:   models.DifficultyHard,
			GeoJSON:      datatypes.JSON(`{"type":"LineString","coordinates":[[10.4515,46.5287],[10.5853,46.6176]]}`),
			Distance:     49.5,
			DurationDays: &days,
			CreatorID:    testUsers[0].ID,
		}
		if err := tx.Create(&route).Error; err != nil {
			return fmt.Errorf("failed to create seed route: %w", err)
		}

		location := models.Location{
			Name:         "Passo dello Stelvio summit",
			LocationType: models.LocationViewpoint,
			Latitude:     46.5287,
			Longitude:    10.4532,
			RouteID:      &route.ID,
			CreatorID:    testUsers[0].ID,
		}
		if err := tx.Create(&location).Error; err != nil {
			return fmt.Errorf("failed to create seed location: %w", err)
		}

		comment := models.Comment{Text: "Go early, it gets busy by noon.", RouteID: route.ID, AuthorID: testUsers[1].ID}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create seed comment: %w", err)
		}

		log.Info().Msg("database seeded with test data")
		return nil
	})
}
