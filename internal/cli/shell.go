package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/db"
	"github.com/spetersoncode/countdown/internal/shell"
)

// shellHistoryPath is where the interactive shell keeps its history.
const shellHistoryPath = "~/.countdown/shell_history"

var shellNoHistory bool

func init() {
	shellCmd.Flags().BoolVar(&shellNoHistory, "no-history", false, "Don't read or write the history file")
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit and render timers interactively",
	Long: `Start an interactive prompt.

Commands inside the shell: list, add <date> <name...>, rm <index>,
render [spec...], help and exit.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	specs, err := resolveSpecs(nil)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := shell.Config{Specs: specs}
	if !shellNoHistory {
		cfg.HistoryFile = db.ExpandPath(shellHistoryPath)
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0755); err != nil {
			VerboseOutput("Warning: history disabled: %v\n", err)
			cfg.HistoryFile = ""
		}
	}

	sh, err := shell.New(a.svc, cfg)
	if err != nil {
		return ErrGeneralWithCause(err, "failed to start shell")
	}
	return sh.Run(cmd.Context())
}
