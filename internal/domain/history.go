package domain

import "time"

// HistoryEntry is one row of the append-only prompt audit log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app"`
	Task      string    `json:"task"`
	Context   string    `json:"context"`
	Prompt    string    `json:"prompt"`
}
