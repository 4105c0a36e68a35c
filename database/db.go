package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // Import the postgres driver

	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/internal/cache"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}

		cacheInstance, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("Error creating cache: %v", errCache)
			// Continue without cache instead of failing completely.
		}

		instance = &Datasource{Conn: con, Cache: cacheInstance}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// ConnectDB establishes a database connection with pooling and ensures the
// schema exists.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createSeasonConfigTable(db)
	if err != nil {
		return nil, err
	}
	err = createClanTable(db)
	if err != nil {
		return nil, err
	}
	err = createLivePlayerTable(db)
	if err != nil {
		return nil, err
	}
	err = createPlayerSeasonRecordTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// createSeasonConfigTable creates a PostgreSQL table for season configurations
func createSeasonConfigTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS season_configs (
			id SERIAL PRIMARY KEY,
			season_config_id TEXT NOT NULL UNIQUE,
			scheduled_at TIMESTAMPTZ NOT NULL,
			is_processed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createClanTable creates a PostgreSQL table for the registered clan registry
func createClanTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS clans (
			id SERIAL PRIMARY KEY,
			clan_tag TEXT NOT NULL UNIQUE,
			name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createLivePlayerTable creates a PostgreSQL table for live tracking rows
func createLivePlayerTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS live_players (
			id SERIAL PRIMARY KEY,
			player_tag TEXT NOT NULL UNIQUE,
			player_name TEXT,
			trophies INTEGER NOT NULL DEFAULT 5000,
			attack_wins INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createPlayerSeasonRecordTable creates a PostgreSQL table for preserved season records
func createPlayerSeasonRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS player_season_records (
			id SERIAL PRIMARY KEY,
			record_id TEXT NOT NULL UNIQUE,
			player_tag TEXT NOT NULL,
			player_name TEXT,
			clan_tag TEXT,
			season_id TEXT NOT NULL,
			season_config_id TEXT NOT NULL REFERENCES season_configs(season_config_id),
			rank INTEGER,
			trophies INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (player_tag, season_id, season_config_id)
		)
	`)
	return err
}
