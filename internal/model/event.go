package model

import (
	"time"
)

// ExchangeStatus describes the outcome of one conversation flow.
type ExchangeStatus string

const (
	ExchangeCompleted ExchangeStatus = "completed"
	ExchangeFailed    ExchangeStatus = "failed"
)

// ExchangeEvent is published after each unit of work for observability.
type ExchangeEvent struct {
	CorrelationID string         `json:"correlation_id"`
	UserID        int64          `json:"user_id"`
	Language      string         `json:"language"`
	Kind          string         `json:"kind"`
	Provider      string         `json:"provider,omitempty"`
	Status        ExchangeStatus `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	LatencyMs     int64          `json:"latency_ms"`
	CreatedAt     time.Time      `json:"created_at"`
}
