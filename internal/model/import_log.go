package model

import "time"

// ImportStatus classifies a finished import run.
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportPartial ImportStatus = "partial"
	ImportFailed  ImportStatus = "failed"
)

// ImportLog records the auditable outcome of one import run. Rows are
// append-only: created with zero counters when the run starts and finalized
// exactly once when it reaches a terminal state.
type ImportLog struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Source   Source `gorm:"not null;index"`
	FileName string

	Status           ImportStatus
	RecordsProcessed int `gorm:"not null;default:0"`
	RecordsAdded     int `gorm:"not null;default:0"`
	RecordsUpdated   int `gorm:"not null;default:0"`
	RecordsFailed    int `gorm:"not null;default:0"`

	ErrorMessage string

	CreatedAt time.Time `gorm:"index"`
}

func (ImportLog) TableName() string { return "import_logs" }

// Classify derives the terminal status from the counters per the run
// invariant: success iff nothing failed and something was processed, failed
// iff nothing was processed (or a fatal feed error, handled by the caller),
// partial otherwise.
func (l *ImportLog) Classify() ImportStatus {
	switch {
	case l.RecordsProcessed == 0:
		return ImportFailed
	case l.RecordsFailed == 0:
		return ImportSuccess
	default:
		return ImportPartial
	}
}
