// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventJobStarted   EventType = "JOB_STARTED"
	EventJobCompleted EventType = "JOB_COMPLETED"
	EventJobFailed    EventType = "JOB_FAILED"
)

// PrinterEvent is pushed to clients watching a printer
type PrinterEvent struct {
	ID        uuid.UUID  `json:"id"`
	EventType EventType  `json:"event_type"`
	PrinterID string     `json:"printer_id"`
	JobID     uuid.UUID  `json:"job_id"`
	Data      JSONObject `json:"data,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewPrinterEvent builds an event for a job
func NewPrinterEvent(eventType EventType, job *PrintJob) PrinterEvent {
	data := JSONObject{
		"status":    job.Status,
		"forwarded": job.Forwarded,
		"dropped":   job.Dropped,
	}
	if job.ErrorMessage != nil {
		data["error"] = *job.ErrorMessage
	}
	return PrinterEvent{
		ID:        uuid.New(),
		EventType: eventType,
		PrinterID: job.PrinterID,
		JobID:     job.ID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
