package repository

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"nft-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MintJobRepository persists batch reports as one row per job
type MintJobRepository interface {
	SaveBatch(ctx context.Context, report *models.BatchReport) error
	// FindBatch returns nil, nil for an unknown batch
	FindBatch(ctx context.Context, batchID string) (*models.BatchReport, error)
}

type mintJobRepository struct {
	db *gorm.DB
}

// NewMintJobRepository creates a new MintJobRepository instance
func NewMintJobRepository(db *gorm.DB) MintJobRepository {
	return &mintJobRepository{db: db}
}

func (r *mintJobRepository) SaveBatch(ctx context.Context, report *models.BatchReport) error {
	defer observe("mint_job_save_batch", time.Now())
	if len(report.Jobs) == 0 {
		return nil
	}
	records := make([]*models.MintJobRecord, 0, len(report.Jobs))
	for _, job := range report.Jobs {
		records = append(records, ToMintJobRecord(report, job))
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(records).Error
}

func (r *mintJobRepository) FindBatch(ctx context.Context, batchID string) (*models.BatchReport, error) {
	defer observe("mint_job_find_batch", time.Now())
	var records []*models.MintJobRecord
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("request_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return FromMintJobRecords(records), nil
}

// mintJobRecordID stable row id per (batch, index) so re-saving a batch updates in place
func mintJobRecordID(batchID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(batchID+"/"+strconv.Itoa(index))).String()
}

// ToMintJobRecord flattens one job of a report
func ToMintJobRecord(report *models.BatchReport, job models.MintJob) *models.MintJobRecord {
	record := &models.MintJobRecord{
		ID:                mintJobRecordID(report.BatchID, job.RequestIndex),
		BatchID:           report.BatchID,
		RequestIndex:      job.RequestIndex,
		DisplayName:       job.DisplayName,
		State:             job.State,
		Owner:             report.Owner,
		ChainID:           report.ChainID,
		AssetContentID:    job.AssetContentID,
		MetadataContentID: job.MetadataContentID,
		TokenURI:          job.TokenURI,
		TxHash:            job.TxHash,
		GasEstimate:       job.GasEstimate,
		GasLimit:          job.GasLimit,
		MappingError:      job.MappingError,
		BatchStartedAt:    report.StartedAt,
		BatchFinishedAt:   report.FinishedAt,
		UpdatedAt:         job.UpdatedAt,
	}
	if job.RecordID != nil {
		record.RecordID = job.RecordID.String()
	}
	if job.Error != nil {
		record.ErrorKind = string(job.Error.Kind)
		record.ErrorMessage = job.Error.Message
		record.RevertReason = job.Error.Reason
		record.AlreadyExists = job.Error.AlreadyExists
	}
	return record
}

// FromMintJobRecords rebuilds a report from rows ordered by request index
func FromMintJobRecords(records []*models.MintJobRecord) *models.BatchReport {
	first := records[0]
	report := &models.BatchReport{
		BatchID:    first.BatchID,
		Owner:      first.Owner,
		ChainID:    first.ChainID,
		StartedAt:  first.BatchStartedAt,
		FinishedAt: first.BatchFinishedAt,
		Jobs:       make([]models.MintJob, 0, len(records)),
	}
	for _, rec := range records {
		job := models.MintJob{
			RequestIndex:      rec.RequestIndex,
			DisplayName:       rec.DisplayName,
			AssetContentID:    rec.AssetContentID,
			MetadataContentID: rec.MetadataContentID,
			TokenURI:          rec.TokenURI,
			TxHash:            rec.TxHash,
			GasEstimate:       rec.GasEstimate,
			GasLimit:          rec.GasLimit,
			State:             rec.State,
			MappingError:      rec.MappingError,
			UpdatedAt:         rec.UpdatedAt,
		}
		if id, ok := new(big.Int).SetString(rec.RecordID, 10); ok {
			job.RecordID = id
		}
		if rec.ErrorKind != "" {
			job.Error = &models.ErrorInfo{
				Kind:          models.ErrorKind(rec.ErrorKind),
				Message:       rec.ErrorMessage,
				Reason:        rec.RevertReason,
				AlreadyExists: rec.AlreadyExists,
			}
		}
		switch job.State {
		case models.JobStateConfirmed:
			report.Succeeded++
		case models.JobStateFailed:
			report.Failed++
		}
		report.Jobs = append(report.Jobs, job)
	}
	return report
}
