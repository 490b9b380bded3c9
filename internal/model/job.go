// internal/model/job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// JobSource names the bridge a job arrived through
type JobSource string

const (
	JobSourceHTTP      JobSource = "HTTP"
	JobSourceWebSocket JobSource = "WEBSOCKET"
	JobSourceMQTT      JobSource = "MQTT"
)

// PrintJob summarises one batch of command records sent to a printer
type PrintJob struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	PrinterID     string          `json:"printer_id" db:"printer_id"`
	RequestID     *string         `json:"request_id,omitempty" db:"request_id"`
	Source        JobSource       `json:"source" db:"source"`
	Status        JobStatus       `json:"status" db:"status"`
	TotalCommands int             `json:"total_commands" db:"total_commands"`
	Forwarded     int             `json:"forwarded" db:"forwarded"`
	Dropped       int             `json:"dropped" db:"dropped"`
	OutcomeCounts JSONObject      `json:"outcome_counts" db:"outcome_counts"`
	BytesSent     int             `json:"bytes_sent" db:"bytes_sent"`
	ErrorMessage  *string         `json:"error_message,omitempty" db:"error_message"`
	DurationMs    *int            `json:"duration_ms,omitempty" db:"duration_ms"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	Results       []CommandResult `json:"results,omitempty" db:"-"`
}

// CommandResult is the per-record diagnostic returned to the submitter
type CommandResult struct {
	Index   int    `json:"index"`
	Command string `json:"command,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// IsCompleted checks if the job has finished
func (j *PrintJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
