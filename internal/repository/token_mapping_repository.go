package repository

import (
	"context"
	"time"

	"nft-backend/internal/metrics"
	"nft-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenMappingRepository defines the interface for TokenURIMapping data access
type TokenMappingRepository interface {
	// Upsert writes the mapping, replacing the content ref if the record id was seen before
	Upsert(ctx context.Context, mapping *models.TokenURIMapping) error
	GetByRecordID(ctx context.Context, chainID, recordID string) (*models.TokenURIMapping, error)
	FindByChain(ctx context.Context, chainID string, page, pageSize int) ([]*models.TokenURIMapping, int64, error)
}

// tokenMappingRepository implements TokenMappingRepository
type tokenMappingRepository struct {
	db *gorm.DB
}

// NewTokenMappingRepository creates a new TokenMappingRepository instance
func NewTokenMappingRepository(db *gorm.DB) TokenMappingRepository {
	return &tokenMappingRepository{db: db}
}

func (r *tokenMappingRepository) Upsert(ctx context.Context, mapping *models.TokenURIMapping) error {
	defer observe("token_mapping_upsert", time.Now())
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}, {Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_ref", "tx_hash", "batch_id", "owner", "contract"}),
	}).Create(mapping).Error
}

// GetByRecordID returns nil, nil when no mapping exists
func (r *tokenMappingRepository) GetByRecordID(ctx context.Context, chainID, recordID string) (*models.TokenURIMapping, error) {
	defer observe("token_mapping_get", time.Now())
	var mapping models.TokenURIMapping
	err := r.db.WithContext(ctx).
		Where("chain_id = ? AND record_id = ?", chainID, recordID).
		First(&mapping).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *tokenMappingRepository) FindByChain(ctx context.Context, chainID string, page, pageSize int) ([]*models.TokenURIMapping, int64, error) {
	defer observe("token_mapping_list", time.Now())
	var total int64
	query := r.db.WithContext(ctx).Model(&models.TokenURIMapping{}).Where("chain_id = ?", chainID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	var mappings []*models.TokenURIMapping
	err := query.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&mappings).Error
	if err != nil {
		return nil, 0, err
	}
	return mappings, total, nil
}

func observe(queryType string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}
