package types

import (
	"context"
	"time"
)

// Mode selects which benchmark is computed.
type Mode string

const (
	ModeLayout Mode = "layout"
	ModeTable  Mode = "table"
)

// ParseMode converts a user supplied mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeLayout, ModeTable:
		return Mode(s), true
	}
	return "", false
}

// DocumentScore holds the per-document result. Only the fields relevant
// to the report's mode are set.
type DocumentScore struct {
	DocumentID string  `json:"document_id"`
	TEDS       float64 `json:"teds"`
	TEDSS      float64 `json:"teds_s"`
	NID        float64 `json:"nid"`
	Error      string  `json:"error,omitempty"`
}

// Report is the outcome of one corpus evaluation.
type Report struct {
	Mode      Mode            `json:"mode"`
	TEDS      float64         `json:"teds"`
	TEDSS     float64         `json:"teds_s"`
	NID       float64         `json:"nid"`
	Documents []DocumentScore `json:"documents"`
	Skipped   []string        `json:"skipped,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Run describes where an evaluation's inputs came from.
type Run struct {
	ID            int64     `json:"id"`
	Mode          Mode      `json:"mode"`
	LabelPath     string    `json:"label_path"`
	PredPath      string    `json:"pred_path"`
	IgnoreClasses []string  `json:"ignore_classes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Core interfaces
type ResultStore interface {
	Save(ctx context.Context, run Run, report *Report) (int64, error)
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close()
}

// ProgressFunc is called once per finished document. It may be invoked
// from several goroutines at once.
type ProgressFunc func(documentID string)
