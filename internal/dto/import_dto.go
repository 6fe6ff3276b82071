package dto

import (
	"time"

	"github.com/agoodis/product-management-system/internal/model"
)

type ImportLogResponse struct {
	ID               uint               `json:"id"`
	Source           model.Source       `json:"source"`
	FileName         string             `json:"file_name,omitempty"`
	Status           model.ImportStatus `json:"status"`
	RecordsProcessed int                `json:"records_processed"`
	RecordsAdded     int                `json:"records_added"`
	RecordsUpdated   int                `json:"records_updated"`
	RecordsFailed    int                `json:"records_failed"`
	ErrorMessage     string             `json:"error_message,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func NewImportLogResponse(l *model.ImportLog) ImportLogResponse {
	return ImportLogResponse{
		ID:               l.ID,
		Source:           l.Source,
		FileName:         l.FileName,
		Status:           l.Status,
		RecordsProcessed: l.RecordsProcessed,
		RecordsAdded:     l.RecordsAdded,
		RecordsUpdated:   l.RecordsUpdated,
		RecordsFailed:    l.RecordsFailed,
		ErrorMessage:     l.ErrorMessage,
		CreatedAt:        l.CreatedAt,
	}
}
