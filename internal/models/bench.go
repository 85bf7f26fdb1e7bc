package models

import (
	"fmt"
	"time"
)

// BenchRun is a recorded benchmark of one formatter implementation.
type BenchRun struct {
	ID         string    `json:"id"`
	Impl       string    `json:"impl"`
	Iterations int       `json:"iterations"`
	Origins    int       `json:"origins"`
	MeanMicros float64   `json:"mean_us"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate validates the bench run fields.
func (r *BenchRun) Validate() error {
	if r.Impl == "" {
		return fmt.Errorf("bench impl cannot be empty")
	}
	if r.Iterations <= 0 {
		return fmt.Errorf("bench iterations must be positive")
	}
	return nil
}
