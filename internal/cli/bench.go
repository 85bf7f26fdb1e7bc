package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/bench"
	"github.com/spetersoncode/countdown/internal/common"
	"github.com/spetersoncode/countdown/internal/config"
	"github.com/spetersoncode/countdown/internal/countdown"
	"github.com/spetersoncode/countdown/internal/db"
	"github.com/spetersoncode/countdown/internal/models"
)

// Bench command flags
var (
	benchImpl       string
	benchIterations int
	benchNoSave     bool
	benchLimit      int
	benchClear      bool
)

func init() {
	benchRunCmd.Flags().StringVar(&benchImpl, "impl", "", "Run one implementation ("+strings.Join(bench.Impls(), ", ")+")")
	benchRunCmd.Flags().IntVarP(&benchIterations, "iterations", "n", bench.DefaultIterations, "Calls per implementation")
	benchRunCmd.Flags().BoolVar(&benchNoSave, "no-save", false, "Don't record the results")

	benchHistoryCmd.Flags().StringVar(&benchImpl, "impl", "", "Only show runs of this implementation")
	benchHistoryCmd.Flags().IntVar(&benchLimit, "limit", 20, "Maximum runs to show (0 = all)")
	benchHistoryCmd.Flags().BoolVar(&benchClear, "clear", false, "Delete all recorded runs")

	benchCmd.AddCommand(benchRunCmd)
	benchCmd.AddCommand(benchHistoryCmd)
	rootCmd.AddCommand(benchCmd)
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the formatter implementations",
	Long: `Time the formatter over the seed timers plus 200 synthetic ones.

Implementations:
  direct  formats in process
  bridge  formats through the CBOR buffer bridge used by foreign callers
  string  a naive concatenating formatter, as a baseline`,
}

var benchRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmarks",
	Args:  cobra.NoArgs,
	RunE:  runBenchRun,
}

var benchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded benchmark runs",
	Args:  cobra.NoArgs,
	RunE:  runBenchHistory,
}

// benchDBPath returns the sqlite database bench runs are recorded in: the
// store itself for the sqlite backend, a sibling bench.db for bolt, and the
// default database otherwise.
func benchDBPath() string {
	switch GetBackend() {
	case config.BackendSQLite:
		return GetStorePath()
	case config.BackendBolt:
		return filepath.Join(filepath.Dir(GetStorePath()), "bench.db")
	default:
		return db.DefaultDBPath
	}
}

func openBenchRepo() (*db.DB, *db.BenchRepo, error) {
	database, err := db.Open(benchDBPath())
	if err != nil {
		return nil, nil, ErrStorageWithSuggestion(err, SuggestRunInit, "failed to open bench database")
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, ErrStorage(err, "failed to migrate bench database")
	}
	return database, db.NewBenchRepo(database.DB), nil
}

func runBenchRun(cmd *cobra.Command, args []string) error {
	now := countdown.SystemClock{}.NowMillis()
	origins := bench.Seed()

	var runs []*models.BenchRun
	if benchImpl != "" {
		run, err := bench.Run(cmd.Context(), benchImpl, now, origins, benchIterations)
		if err != nil {
			return err
		}
		runs = append(runs, run)
	} else {
		var err error
		runs, err = bench.RunAll(cmd.Context(), now, origins, benchIterations)
		if err != nil {
			return err
		}
	}

	if !benchNoSave {
		database, repo, err := openBenchRepo()
		if err != nil {
			return err
		}
		defer database.Close()
		for _, run := range runs {
			if err := repo.Create(run); err != nil {
				return ErrGeneralWithCause(err, "failed to record bench run")
			}
		}
		VerboseOutput("Recorded %d runs in %s\n", len(runs), database.Path())
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, run := range runs {
		fmt.Println(bench.FormatRun(run))
	}
	return nil
}

func runBenchHistory(cmd *cobra.Command, args []string) error {
	if benchImpl != "" {
		if _, err := bench.Lookup(benchImpl); err != nil {
			return err
		}
	}

	database, repo, err := openBenchRepo()
	if err != nil {
		return err
	}
	defer database.Close()

	if benchClear {
		n, err := repo.DeleteAll()
		if err != nil {
			return ErrGeneralWithCause(err, "failed to clear bench runs")
		}
		OutputLine("Deleted %d bench runs", n)
		return nil
	}

	runs, err := repo.List(benchImpl, benchLimit)
	if err != nil {
		return ErrGeneralWithCause(err, "failed to list bench runs")
	}

	if IsJSON() {
		if runs == nil {
			runs = []*models.BenchRun{}
		}
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		OutputLine("No bench runs recorded. Run 'countdown bench run'.")
		return nil
	}

	fmt.Printf("%-8s %-8s %12s %10s %8s  %s\n", "ID", "IMPL", "MEAN (us)", "ITERS", "TIMERS", "WHEN")
	fmt.Println(strings.Repeat("-", 70))
	for _, run := range runs {
		fmt.Printf("%-8s %-8s %12.4f %10d %8d  %s\n",
			run.ID[:8], run.Impl, run.MeanMicros, run.Iterations, run.Origins, common.FormatAge(run.CreatedAt))
	}
	return nil
}
