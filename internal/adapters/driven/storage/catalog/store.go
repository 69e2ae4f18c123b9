// Package catalog provides the document catalog store on a relational
// database through GORM. Postgres backs real deployments; the embedded
// SQLite driver keeps local setups and tests dependency free.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// documentRow is the persisted shape of a domain.DocumentRecord.
type documentRow struct {
	ID                string  `gorm:"primaryKey"`
	OriginalFilename  string  `gorm:"not null"`
	CollectionName    string  `gorm:"index;not null"`
	ActiveVersionHash string  `gorm:"index;not null"`
	BlobRef           string  `gorm:"index;not null"`
	ParentID          *string `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides GORM's pluralisation.
func (documentRow) TableName() string { return "documents" }

// Store persists document records.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open GORM connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("catalog: migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenPostgres connects to Postgres and migrates the schema.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("catalog: open postgres: %w", err)
	}
	return New(db)
}

// OpenSQLite opens (or creates) a SQLite database file and migrates the
// schema. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	return New(db)
}

// Insert stores a new record.
func (s *Store) Insert(ctx context.Context, rec *domain.DocumentRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("catalog: %w: record has no id", domain.ErrInvalidInput)
	}

	row := toRow(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("catalog: document %s: %w", rec.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("catalog: insert document %s: %w", rec.ID, err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing record.
func (s *Store) Update(ctx context.Context, rec *domain.DocumentRecord) error {
	result := s.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"original_filename":   rec.OriginalFilename,
			"active_version_hash": rec.ActiveVersionHash,
			"blob_ref":            rec.BlobRef,
			"updated_at":          rec.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("catalog: update document %s: %w", rec.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("catalog: document %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&documentRow{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("catalog: delete document %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("catalog: document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID returns the record or domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog: document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: get document %s: %w", id, err)
	}
	return fromRow(row), nil
}

// GetByHash returns the record with the active hash inside one collection.
func (s *Store) GetByHash(ctx context.Context, collection, hash string) (*domain.DocumentRecord, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		First(&row, "collection_name = ? AND active_version_hash = ?", collection, hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog: hash %s in %q: %w", hash, collection, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: get document by hash %s: %w", hash, err)
	}
	return fromRow(row), nil
}

// FirstByHash returns any record with the active hash.
func (s *Store) FirstByHash(ctx context.Context, hash string) (*domain.DocumentRecord, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "active_version_hash = ?", hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog: hash %s: %w", hash, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: get document by hash %s: %w", hash, err)
	}
	return fromRow(row), nil
}

// FindByHashes returns the records of a collection whose active hash is in
// the set.
func (s *Store) FindByHashes(ctx context.Context, collection string, hashes []string) ([]domain.DocumentRecord, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection_name = ? AND active_version_hash IN ?", collection, hashes).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: find documents by hashes: %w", err)
	}
	return fromRows(rows), nil
}

// FindByIDs returns the records whose id is in the set.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]domain.DocumentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []documentRow
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: find documents by ids: %w", err)
	}
	return fromRows(rows), nil
}

// FindByIDsOrParents returns records whose id or parent id is in the set.
func (s *Store) FindByIDsOrParents(ctx context.Context, ids []string) ([]domain.DocumentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("id IN ? OR parent_id IN ?", ids, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: find documents by ids or parents: %w", err)
	}
	return fromRows(rows), nil
}

// CountByBlobRef counts records referencing the blob, excluding one id.
func (s *Store) CountByBlobRef(ctx context.Context, blobRef, excludeID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("blob_ref = ? AND id <> ?", blobRef, excludeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("catalog: count blob references for %s: %w", blobRef, err)
	}
	return count, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("catalog: access connection: %w", err)
	}
	return sqlDB.Close()
}

func toRow(rec *domain.DocumentRecord) documentRow {
	return documentRow{
		ID:                rec.ID,
		OriginalFilename:  rec.OriginalFilename,
		CollectionName:    rec.CollectionName,
		ActiveVersionHash: rec.ActiveVersionHash,
		BlobRef:           rec.BlobRef,
		ParentID:          rec.ParentID,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func fromRow(row documentRow) *domain.DocumentRecord {
	return &domain.DocumentRecord{
		ID:                row.ID,
		OriginalFilename:  row.OriginalFilename,
		CollectionName:    row.CollectionName,
		ActiveVersionHash: row.ActiveVersionHash,
		BlobRef:           row.BlobRef,
		ParentID:          row.ParentID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func fromRows(rows []documentRow) []domain.DocumentRecord {
	records := make([]domain.DocumentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *fromRow(row))
	}
	return records
}
