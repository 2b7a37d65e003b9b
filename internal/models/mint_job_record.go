package models

import (
	"time"
)

// MintJobRecord persisted outcome of a mint job
type MintJobRecord struct {
	ID           string   `json:"id" gorm:"primaryKey"` // UUID
	BatchID      string   `json:"batch_id" gorm:"not null;index"`
	RequestIndex int      `json:"request_index" gorm:"not null"`
	DisplayName  string   `json:"display_name"`
	State        JobState `json:"state" gorm:"not null;index"`
	Owner        string   `json:"owner" gorm:"not null;index;size:42"`
	ChainID      string   `json:"chain_id" gorm:"not null"`

	// 交易信息
	RecordID          string `json:"record_id" gorm:"index"` // decimal
	AssetContentID    string `json:"asset_content_id"`
	MetadataContentID string `json:"metadata_content_id"`
	TokenURI          string `json:"token_uri" gorm:"type:text"`
	TxHash            string `json:"tx_hash" gorm:"size:66"`
	GasEstimate       uint64 `json:"gas_estimate"`
	GasLimit          uint64 `json:"gas_limit"`

	// 错误信息
	ErrorKind     string `json:"error_kind"`
	ErrorMessage  string `json:"error_message" gorm:"type:text"`
	RevertReason  string `json:"revert_reason" gorm:"type:text"`
	AlreadyExists bool   `json:"already_exists"`
	MappingError  string `json:"mapping_error" gorm:"type:text"`

	BatchStartedAt  time.Time  `json:"batch_started_at"`
	BatchFinishedAt *time.Time `json:"batch_finished_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName table name
func (MintJobRecord) TableName() string {
	return "mint_job_records"
}

// TokenURIMapping record id → content ref written after confirmation
type TokenURIMapping struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RecordID   string    `json:"record_id" gorm:"not null;uniqueIndex:uq_token_uri_mapping_record_chain,priority:1"`
	ChainID    string    `json:"chain_id" gorm:"not null;uniqueIndex:uq_token_uri_mapping_record_chain,priority:2"`
	Contract   string    `json:"contract" gorm:"size:42"`
	ContentRef string    `json:"content_ref" gorm:"not null;type:text"`
	TxHash     string    `json:"tx_hash" gorm:"size:66"`
	BatchID    string    `json:"batch_id" gorm:"index"`
	Owner      string    `json:"owner" gorm:"size:42"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName table name
func (TokenURIMapping) TableName() string {
	return "token_uri_mappings"
}
