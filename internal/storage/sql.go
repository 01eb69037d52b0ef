package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionDocument is one row of the collections table
type CollectionDocument struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the default gorm table name
func (CollectionDocument) TableName() string {
	return "collections"
}

// SQLStorage keeps each document as a row in the collections table
type SQLStorage struct {
	db *gorm.DB
}

// NewSQLStorage creates a backend over an open gorm connection
func NewSQLStorage(db *gorm.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// Read loads the document row
func (s *SQLStorage) Read(ctx context.Context, name string) ([]byte, error) {
	var doc CollectionDocument
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	return []byte(doc.Data), nil
}

// Write upserts the document row
func (s *SQLStorage) Write(ctx context.Context, name string, data []byte) error {
	doc := CollectionDocument{
		Name:      name,
		Data:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

// Ping checks the underlying connection
func (s *SQLStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
