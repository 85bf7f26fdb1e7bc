package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/config"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage ~/.countdown/config.toml.

Settings are resolved from flags, then COUNTDOWN_* environment variables,
then the config file, then built-in defaults.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented sample config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if path == "" {
		return ErrGeneral("cannot determine home directory")
	}
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return ErrGeneral("config file already exists at %s (use --force to overwrite)", path)
	}
	if err := config.WriteConfigFile(path); err != nil {
		return ErrGeneralWithCause(err, "failed to write config file")
	}
	OutputLine("Wrote sample config to %s", path)
	return nil
}

// effectiveConfig returns the loaded config with command-line overrides
// applied.
func effectiveConfig() config.Config {
	cfg := *GetConfig()
	cfg.DB = GetStorePath()
	cfg.Backend = GetBackend()
	cfg.NoColor = IsNoColor()
	return cfg
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig()

	if IsJSON() {
		data, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	enc := toml.NewEncoder(os.Stdout)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return ErrGeneralWithCause(err, "failed to encode config")
	}
	return nil
}
