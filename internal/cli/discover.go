package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/discovery"
)

var discoverTimeout time.Duration

func init() {
	discoverCmd.Flags().DurationVarP(&discoverTimeout, "timeout", "t", 3*time.Second, "How long to listen for announcements")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find countdown servers on the local network",
	Long: `Browse mDNS for servers started with 'countdown serve --advertise'.

Examples:
  countdown discover
  countdown discover --timeout 10s --json`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoverTimeout <= 0 {
		return ErrInvalidArgs("timeout must be positive")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), discoverTimeout)
	defer cancel()

	VerboseOutput("Browsing %s for %s...\n", discovery.ServiceType, discoverTimeout)
	services, err := discovery.Browse(ctx)
	if err != nil {
		return ErrGeneralWithCause(err, "mDNS browse failed")
	}

	if IsJSON() {
		if services == nil {
			services = []*discovery.Service{}
		}
		data, _ := json.MarshalIndent(services, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(services) == 0 {
		OutputLine("No countdown servers found")
		return nil
	}

	fmt.Printf("%-24s %-10s %-32s %s\n", "INSTANCE", "VERSION", "URL", "ADDRESSES")
	fmt.Println(strings.Repeat("-", 80))
	for _, s := range services {
		fmt.Printf("%-24s %-10s %-32s %s\n", s.Instance, s.Version, s.URL(), strings.Join(s.Addresses, ", "))
	}
	return nil
}
