package models

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// IngestSource represents where a price batch came from
type IngestSource string

const (
	UploadSource  IngestSource = "upload"
	WatcherSource IngestSource = "watcher"
	CLISource     IngestSource = "cli"
)

// BatchStatus represents the processing state of a price batch
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchPartial    BatchStatus = "partial"
	BatchFailed     BatchStatus = "failed"
)

// Scan implements the sql.Scanner interface for BatchStatus
func (s *BatchStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BatchProcessing
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = BatchStatus(v)
	case []byte:
		*s = BatchStatus(v)
	default:
		return errors.New("cannot convert batch status to string")
	}
	return nil
}

// Value implements the driver.Valuer interface for BatchStatus
func (s BatchStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// PricePoint represents one normalized market price row for a
// state/district/market/variety on a reported date
type PricePoint struct {
	ID             string       `json:"id,omitempty" db:"id"`
	State          string       `json:"state" db:"state" validate:"required"`
	District       string       `json:"district" db:"district" validate:"required"`
	Market         string       `json:"market" db:"market" validate:"required"`
	Variety        string       `json:"variety,omitempty" db:"variety"`
	CommodityGroup string       `json:"group,omitempty" db:"commodity_group"`
	Arrivals       string       `json:"arrivals,omitempty" db:"arrivals"`
	MinPrice       float64      `json:"min_price" db:"min_price" validate:"gte=0"`
	MaxPrice       float64      `json:"max_price" db:"max_price" validate:"gte=0"`
	ModalPrice     float64      `json:"modal_price" db:"modal_price" validate:"gte=0"`
	ReportedDate   time.Time    `json:"reported_date" db:"reported_date"`
	Grade          string       `json:"grade,omitempty" db:"grade"`
	Source         IngestSource `json:"source,omitempty" db:"source"`
	BatchID        string       `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt      time.Time    `json:"created_at,omitempty" db:"created_at"`
}

// PriceBatch represents the bookkeeping row for one ingestion run
type PriceBatch struct {
	ID          string         `json:"id" db:"id"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty" db:"processed_at"`
	Status      BatchStatus    `json:"status" db:"status"`
	RowCount    int            `json:"row_count" db:"row_count"`
	Source      IngestSource   `json:"source" db:"source"`
	Metadata    types.JSONText `json:"metadata,omitempty" db:"metadata"`
}

// BatchSummary is the result of an ingestion run, returned to callers
// and published to the price channel
type BatchSummary struct {
	BatchID   string       `json:"batch_id"`
	Source    IngestSource `json:"source"`
	Status    BatchStatus  `json:"status"`
	Parsed    int          `json:"parsed"`
	Dropped   int          `json:"dropped"`
	Inserted  int          `json:"inserted"`
	StartedAt time.Time    `json:"started_at"`
}

// StaffDetail holds the free-shape profile record for one staff member.
// The Data document carries the form-field values; its layout is tracked
// by SchemaVersion so readers can branch on version instead of probing
// key shapes.
type StaffDetail struct {
	ID            string         `json:"_id" db:"id"`
	UserID        string         `json:"userID" db:"user_id"`
	Data          types.JSONText `json:"data" db:"data"`
	SchemaVersion int            `json:"schemaVersion" db:"schema_version"`
	Position      int            `json:"position" db:"position"`
	Subposition   int            `json:"subposition" db:"subposition"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}

// InputTypes is the canonical set of staff form field types. The create
// and edit paths validate against this same list, and the schema CHECK
// constraint mirrors it.
var InputTypes = []string{
	"text", "textarea", "dropdown", "email", "number", "date", "password", "tel", "url",
}

// ValidInputType reports whether t is one of the canonical input types
func ValidInputType(t string) bool {
	for _, v := range InputTypes {
		if v == t {
			return true
		}
	}
	return false
}

// StaffInput represents one configurable field of the staff profile form
type StaffInput struct {
	ID        string         `json:"_id" db:"id"`
	Title     string         `json:"title" db:"title" validate:"required,max=50"`
	InputType string         `json:"type" db:"input_type" validate:"required,max=30"`
	Options   pq.StringArray `json:"options,omitempty" db:"options"`
	Required  bool           `json:"required" db:"required"`
	Position  int            `json:"position" db:"position"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}
