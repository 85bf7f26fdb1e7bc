package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/backup"
)

func init() {
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage rotating backups of the store file",
	Long: `Manage rotating backups of the store file.

Backups are taken automatically before commands when the newest one is
older than backup.interval_hours, and only backup.max_count are kept.
Backup 1 is the newest.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Take a backup regardless of the interval",
	Args:  cobra.NoArgs,
	RunE:  runBackupNow,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <n>",
	Short: "Copy backup n over the store file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

// backupManager returns a manager for the current store, failing for the
// memory backend.
func backupManager() (*backup.Manager, error) {
	storePath := GetStorePath()
	if storePath == "" {
		return nil, ErrInvalidArgs("the memory backend has no file to back up")
	}
	return backup.NewManager(storePath, GetConfig().Backup), nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	mgr, err := backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return ErrGeneralWithCause(err, "failed to list backups")
	}

	if IsJSON() {
		if backups == nil {
			backups = []string{}
		}
		data, _ := json.MarshalIndent(backups, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(backups) == 0 {
		OutputLine("No backups in %s", mgr.GetBackupDir())
		return nil
	}
	for i, path := range backups {
		fmt.Printf("%-3d %s\n", i+1, path)
	}
	return nil
}

func runBackupNow(cmd *cobra.Command, args []string) error {
	mgr, err := backupManager()
	if err != nil {
		return err
	}
	if _, err := os.Stat(mgr.StorePath()); err != nil {
		return ErrStorageWithSuggestion(err, SuggestRunInit, "no store to back up")
	}
	path, err := mgr.BackupNow()
	if err != nil {
		return ErrGeneralWithCause(err, "backup failed")
	}
	OutputLine("Created backup: %s", path)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return ErrInvalidArgsWithSuggestion("Run 'countdown backup list' to see backup numbers.", "invalid backup number %q", args[0])
	}
	mgr, err := backupManager()
	if err != nil {
		return err
	}
	path, err := mgr.Restore(n)
	if err != nil {
		return ErrGeneralWithCause(err, "restore failed")
	}
	OutputLine("Restored %s", path)
	return nil
}
