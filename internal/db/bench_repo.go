package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/countdown/internal/models"
)

// BenchRepo provides database operations for benchmark runs.
type BenchRepo struct {
	db *sql.DB
}

// NewBenchRepo creates a new BenchRepo.
func NewBenchRepo(db *sql.DB) *BenchRepo {
	return &BenchRepo{db: db}
}

// Create records a benchmark run, assigning it an ID and timestamp.
func (r *BenchRepo) Create(run *models.BenchRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid bench run: %w", err)
	}

	query := `
		INSERT INTO bench_runs (id, impl, iterations, origins, mean_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id := uuid.New().String()
	now := time.Now()
	_, err := r.db.Exec(query, id, run.Impl, run.Iterations, run.Origins, run.MeanMicros, FormatTime(now))
	if err != nil {
		return fmt.Errorf("failed to create bench run: %w", err)
	}

	run.ID = id
	run.CreatedAt = now.UTC().Truncate(time.Second)
	return nil
}

// List returns the most recent runs, newest first. A non-positive limit returns all.
func (r *BenchRepo) List(impl string, limit int) ([]*models.BenchRun, error) {
	query := `SELECT id, impl, iterations, origins, mean_us, created_at FROM bench_runs`
	var args []interface{}
	if impl != "" {
		query += ` WHERE impl = ?`
		args = append(args, impl)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bench runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BenchRun
	for rows.Next() {
		var run models.BenchRun
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Impl, &run.Iterations, &run.Origins, &run.MeanMicros, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bench run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bench run time: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bench runs: %w", err)
	}
	return runs, nil
}

// DeleteAll removes every recorded run and returns how many were deleted.
func (r *BenchRepo) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM bench_runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bench runs: %w", err)
	}
	return result.RowsAffected()
}
