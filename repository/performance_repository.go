package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"glyphtone/model"
)

// PerformanceRepository defines the interface for saved compositions.
type PerformanceRepository interface {
	Create(record *model.PerformanceRecord) error
	GetByID(id int64) (*model.PerformanceRecord, error)
	List() ([]*model.PerformanceRecord, error)
	Update(record *model.PerformanceRecord) error
	Delete(id int64) error
}

// gormPerformanceRepository implements PerformanceRepository with GORM.
type gormPerformanceRepository struct {
	db *gorm.DB
}

// NewGormPerformanceRepository creates a new instance of gormPerformanceRepository.
func NewGormPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &gormPerformanceRepository{db: db}
}

func (r *gormPerformanceRepository) Create(record *model.PerformanceRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create performance %q: %w", record.Name, err)
	}
	return nil
}

func (r *gormPerformanceRepository) GetByID(id int64) (*model.PerformanceRecord, error) {
	var record model.PerformanceRecord
	err := r.db.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query performance %d: %w", id, err)
	}
	return &record, nil
}

func (r *gormPerformanceRepository) List() ([]*model.PerformanceRecord, error) {
	var records []*model.PerformanceRecord
	if err := r.db.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list performances: %w", err)
	}
	return records, nil
}

func (r *gormPerformanceRepository) Update(record *model.PerformanceRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to update performance %d: %w", record.ID, err)
	}
	return nil
}

func (r *gormPerformanceRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.PerformanceRecord{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete performance %d: %w", id, err)
	}
	return nil
}
