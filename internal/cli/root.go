package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/backup"
	"github.com/spetersoncode/countdown/internal/config"
	"github.com/spetersoncode/countdown/internal/db"
	"github.com/spetersoncode/countdown/internal/storage"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath      string
	backendName string
	jsonOut     bool
	quiet       bool
	verbose     bool
	noColor     bool
)

// Global configuration (loaded once at startup)
var globalConfig *config.Config

// Exit codes, matching the shared error kinds
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArgs        = 2
	ExitNotFound           = 3
	ExitDuplicateKey       = 4
	ExitStorageUnavailable = 5
)

// skipBackupCommands lists commands that should not trigger automatic backup.
// These either don't touch the store or manage it themselves.
var skipBackupCommands = map[string]bool{
	"help":     true,
	"version":  true,
	"init":     true,
	"config":   true,
	"restore":  true,
	"discover": true,
}

var rootCmd = &cobra.Command{
	Use:   "countdown",
	Short: "Countdown timers in the terminal, the browser and over FFI",
	Long: `Countdown keeps a list of named dates and shows how long until (or since)
each one, broken down into weeks, days, hours, minutes, seconds and
milliseconds.

Use "countdown init" to create the timer store.
Use "countdown --help" to see all available commands.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return runAutoBackup(cmd)
	},
}

func init() {
	// Load global configuration at startup
	var err error
	globalConfig, err = config.Load()
	if err != nil {
		// If config file is invalid, print warning but continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		globalConfig = config.DefaultConfig()
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the store file (default ~/.countdown/countdown.db)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Store backend: sqlite, bolt or memory (default sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Set version template for --version flag
	rootCmd.SetVersionTemplate(fmt.Sprintf("countdown %s (%s, %s)\n", Version, shortCommit(), shortDate()))

	// Add commands
	rootCmd.AddCommand(versionCmd)
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// runAutoBackup performs automatic backup if needed before command execution.
// It skips backup for commands that don't need it.
func runAutoBackup(cmd *cobra.Command) error {
	// Skip for certain commands
	if skipBackupCommands[cmd.Name()] {
		return nil
	}

	// Skip if no config loaded
	if globalConfig == nil {
		return nil
	}

	// Skip if backups are disabled
	if !globalConfig.Backup.Enabled {
		return nil
	}

	storePath := GetStorePath()
	if storePath == "" {
		return nil // Memory backend
	}

	// Check if the store exists - no point backing up a non-existent store
	if _, err := os.Stat(storePath); os.IsNotExist(err) {
		return nil
	}

	// Create backup manager and run backup if needed
	mgr := backup.NewManager(storePath, globalConfig.Backup)
	backupPath, err := mgr.BackupIfNeeded()
	if err != nil {
		// Log warning but don't fail the command
		VerboseOutput("Warning: automatic backup failed: %v\n", err)
		return nil
	}

	if backupPath != "" {
		VerboseOutput("Created backup: %s\n", backupPath)
	}

	return nil
}

// GetDBPath returns the store path from flags or config, empty meaning the
// backend default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	// Command-line flag has highest priority
	if dbPath != "" {
		return dbPath
	}
	// Config already handles env > file > default
	if globalConfig != nil {
		return globalConfig.GetDB()
	}
	return ""
}

// GetBackend returns the store backend from flags or config.
func GetBackend() string {
	if backendName != "" {
		return backendName
	}
	if globalConfig != nil {
		return globalConfig.GetBackend()
	}
	return config.BackendSQLite
}

// GetStorePath returns the expanded store file path for the selected
// backend, or "" for the memory backend.
func GetStorePath() string {
	path := GetDBPath()
	switch GetBackend() {
	case config.BackendMemory:
		return ""
	case config.BackendBolt:
		if path == "" {
			path = storage.DefaultBoltPath
		}
	default:
		if path == "" {
			path = db.DefaultDBPath
		}
	}
	return db.ExpandPath(path)
}

// GetStoreOptions returns the storage options for the selected backend.
func GetStoreOptions() storage.Options {
	return storage.Options{Backend: GetBackend(), Path: GetStorePath()}
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	// Command-line flag has highest priority
	if noColor {
		return true
	}
	// Config already handles env > file > default
	if globalConfig != nil {
		return globalConfig.NoColor
	}
	return false
}

// UseColor reports whether output should carry ANSI colors: stdout is a
// terminal and color has not been disabled.
func UseColor() bool {
	if IsNoColor() {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// GetConfig returns the global configuration.
// This should only be used when direct access to all config values is needed.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// Output prints to stdout unless quiet mode is enabled
func Output(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format, args...)
	}
}

// OutputLine prints a line to stdout unless quiet mode is enabled
func OutputLine(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// VerboseOutput prints to stdout only in verbose mode
func VerboseOutput(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Printf(format, args...)
	}
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
