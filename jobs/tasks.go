package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeReminderScan scans the ledger for overdue invoices and queues
	// reminder emails.
	TaskTypeReminderScan = "ledger:reminder_scan"
	// TaskTypeDashboardWarmup pre-populates the analytics caches.
	TaskTypeDashboardWarmup = "analytics:dashboard_warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// ReminderScanPayload scopes a reminder scan run.
type ReminderScanPayload struct {
	// MinDaysOverdue skips invoices that only just tipped over.
	MinDaysOverdue int `json:"min_days_overdue"`
}

// NewReminderScanTask constructs the periodic scan task.
func NewReminderScanTask(payload ReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReminderScan, data), nil
}

// NewDashboardWarmupTask constructs the cache warmup task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDashboardWarmup, nil)
}
