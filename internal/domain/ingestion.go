package domain

import "time"

// RunStatus represents the lifecycle state of an ingestion run.
// A run is created as RunStatusRunning and transitions exactly once to
// RunStatusSuccess or RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// IsTerminal reports whether the status closes a run.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed
}

// Entity kinds recorded on ingestion errors.
const (
	ErrorEntityPokemon = "pokemon"
	ErrorEntityRun     = "run"
)

// IngestionRun is one execution of the bulk synchronization process and its progress counters.
// Invariant: ItemsSuccess+ItemsFailed <= ItemsTotal, with equality once the run is closed.
type IngestionRun struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	Source       string     `gorm:"type:text;not null;index" json:"source"`
	Status       RunStatus  `gorm:"type:text;not null;default:RUNNING;index" json:"status"`
	Generation   int        `gorm:"not null;default:0" json:"generation"`
	RangeFrom    int        `gorm:"not null" json:"range_from"`
	RangeTo      int        `gorm:"not null" json:"range_to"`
	ItemsTotal   int        `gorm:"not null;default:0" json:"items_total"`
	ItemsSuccess int        `gorm:"not null;default:0" json:"items_success"`
	ItemsFailed  int        `gorm:"not null;default:0" json:"items_failed"`
	StartedAt    time.Time  `gorm:"not null;index" json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for IngestionRun.
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}

// IngestionError is an append-only record of one failed item inside a run.
type IngestionError struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	RunID     string    `gorm:"type:text;not null;index:idx_ingestion_errors_run" json:"run_id"`
	Entity    string    `gorm:"type:text;not null" json:"entity"`
	EntityKey string    `gorm:"type:text;not null" json:"entity_key"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;index:idx_ingestion_errors_run" json:"created_at"`

	Run *IngestionRun `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for IngestionError.
func (IngestionError) TableName() string {
	return "ingestion_errors"
}
