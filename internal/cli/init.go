package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/config"
	"github.com/spetersoncode/countdown/internal/db"
	"github.com/spetersoncode/countdown/internal/storage"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing store")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize countdown for first-time use",
	Long: `Initialize countdown by creating the ~/.countdown/ directory and timer store.

This command:
- Creates ~/.countdown/ directory if it doesn't exist
- Creates the store file for the selected backend
- Writes the seed timers

Use --force to overwrite an existing store.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Store   string `json:"store"`
	Backend string `json:"backend"`
	Created bool   `json:"created"`
	Timers  int    `json:"timers"`
	Schema  int64  `json:"schema_version,omitempty"`
}

func runInit(cmd *cobra.Command, args []string) error {
	backend := GetBackend()
	if backend == config.BackendMemory {
		return ErrInvalidArgsWithSuggestion("Use --backend sqlite or --backend bolt.",
			"the memory backend has nothing to initialize")
	}
	storePath := GetStorePath()

	// Check if the store already exists
	if _, err := os.Stat(storePath); err == nil && !initForce {
		if IsJSON() {
			result := initResult{Store: storePath, Backend: backend, Created: false}
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		return ErrGeneral("store already exists at %s (use --force to overwrite)", storePath)
	}

	// Delete existing store if force is set
	if initForce {
		VerboseOutput("Removing existing store...\n")
		if err := db.Delete(storePath); err != nil && !os.IsNotExist(err) {
			return ErrGeneralWithCause(err, "failed to remove existing store")
		}
	}

	VerboseOutput("Creating store...\n")
	kv, err := storage.Open(GetStoreOptions())
	if err != nil {
		return err
	}
	store := storage.NewStore(kv)
	defer store.Close()

	// Loading an empty store writes the seeds back
	timers, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	// Only the sqlite backend carries a migrated schema
	var schema int64
	if sq, ok := kv.(*storage.SQLiteKV); ok {
		if schema, err = sq.DB().MigrationStatus(); err != nil {
			return ErrStorage(err, "failed to read schema version")
		}
	}

	if IsJSON() {
		result := initResult{Store: storePath, Backend: backend, Created: true, Timers: len(timers), Schema: schema}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Initialized %s store at %s", backend, storePath)
	OutputLine("Seeded %d timers", len(timers))
	if schema > 0 {
		OutputLine("Schema version: %d", schema)
	}

	return nil
}
