package db

import (
	"database/sql"
	"fmt"
	"log"

	"glyphtone/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createExportsTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createExportsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS exports (
		id INT AUTO_INCREMENT PRIMARY KEY,
		uuid VARCHAR(36) NOT NULL UNIQUE,
		title VARCHAR(255) NOT NULL,
		album VARCHAR(255),
		artist VARCHAR(255),
		file_name VARCHAR(512) NOT NULL,
		object_path VARCHAR(767) NOT NULL,
		duration DOUBLE,
		frame_count INT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create exports table: %w", err)
	}
	log.Println("Exports table initialized successfully (or already exists).")
	return nil
}
