package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/config"
	"github.com/spetersoncode/countdown/internal/db"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of countdown, build date, Go version, and store information.`,
	RunE:  runVersion,
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Backend   string `json:"backend"`
	Store     string `json:"store,omitempty"`
	Schema    int64  `json:"schema_version,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Backend:   GetBackend(),
	}

	storePath := GetStorePath()
	if _, err := os.Stat(storePath); storePath != "" && err == nil {
		info.Store = storePath

		// Try to get the schema version of a sqlite store
		if info.Backend == config.BackendSQLite {
			if database, err := db.Open(storePath); err == nil {
				defer database.Close()
				if version, err := database.MigrationStatus(); err == nil {
					info.Schema = version
				}
			}
		}
	}

	if IsJSON() {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	// Compact format matching --version: countdown v0.1.0 (9f61316, 2026-02-02)
	fmt.Printf("countdown %s (%s, %s)\n", info.Version, shortCommit(), shortDate())

	fmt.Printf("Go: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s\n", info.Platform)

	switch {
	case info.Backend == config.BackendMemory:
		fmt.Println("Store: memory")
	case info.Schema > 0:
		fmt.Printf("Store: %s (%s, schema v%d)\n", info.Store, info.Backend, info.Schema)
	case info.Store != "":
		fmt.Printf("Store: %s (%s)\n", info.Store, info.Backend)
	default:
		fmt.Println("Store: not initialized (run 'countdown init')")
	}

	return nil
}
