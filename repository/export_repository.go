package repository

import (
	"database/sql"
	"fmt"
	"time"

	"glyphtone/db"
	"glyphtone/model"
)

// ExportRepository defines the interface for export record operations.
type ExportRepository interface {
	CreateExport(record *model.ExportRecord) (int64, error)
	GetExportByUUID(uuid string) (*model.ExportRecord, error)
	ListExports(limit int) ([]*model.ExportRecord, error)
}

// mysqlExportRepository implements ExportRepository for MySQL.
type mysqlExportRepository struct {
	DB *sql.DB
}

// NewMySQLExportRepository creates a new instance of mysqlExportRepository.
func NewMySQLExportRepository() ExportRepository {
	return &mysqlExportRepository{DB: db.DB}
}

// CreateExport adds a new export record to the database.
func (r *mysqlExportRepository) CreateExport(record *model.ExportRecord) (int64, error) {
	query := `INSERT INTO exports (uuid, title, album, artist, file_name, object_path, duration, frame_count, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateExport: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(record.UUID, record.Title, record.Album, record.Artist,
		record.FileName, record.ObjectPath, record.Duration, record.FrameCount, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateExport: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateExport: %w", err)
	}
	record.ID = id
	record.CreatedAt = now
	return id, nil
}

// GetExportByUUID fetches one export record by its public identifier.
func (r *mysqlExportRepository) GetExportByUUID(uuid string) (*model.ExportRecord, error) {
	query := `SELECT id, uuid, title, album, artist, file_name, object_path, duration, frame_count, created_at
	           FROM exports WHERE uuid = ?`

	record := &model.ExportRecord{}
	var album, artist sql.NullString
	err := r.DB.QueryRow(query, uuid).Scan(
		&record.ID, &record.UUID, &record.Title, &album, &artist,
		&record.FileName, &record.ObjectPath, &record.Duration, &record.FrameCount, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query export %s: %w", uuid, err)
	}
	record.Album = album.String
	record.Artist = artist.String
	return record, nil
}

// ListExports returns the most recent export records.
func (r *mysqlExportRepository) ListExports(limit int) ([]*model.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, uuid, title, album, artist, file_name, object_path, duration, frame_count, created_at
	           FROM exports ORDER BY created_at DESC LIMIT ?`

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []*model.ExportRecord
	for rows.Next() {
		record := &model.ExportRecord{}
		var album, artist sql.NullString
		if err := rows.Scan(
			&record.ID, &record.UUID, &record.Title, &album, &artist,
			&record.FileName, &record.ObjectPath, &record.Duration, &record.FrameCount, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		record.Album = album.String
		record.Artist = artist.String
		records = append(records, record)
	}
	return records, rows.Err()
}
