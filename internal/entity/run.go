package entity

import "time"

// RunSummary describes one completed batch run.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Selected    int       `json:"selected"`
	Saved       int       `json:"saved"`
	Skipped     int       `json:"skipped"`
	Cancelled   bool      `json:"cancelled"`
	MappingPath string    `json:"mapping_path"`
}
