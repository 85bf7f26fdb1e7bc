package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/common"
	"github.com/spetersoncode/countdown/internal/countdown"
	"github.com/spetersoncode/countdown/internal/models"
	"github.com/spetersoncode/countdown/internal/service"
)

// dateLayout is used when showing a timer's origin.
const dateLayout = "2006-01-02 15:04:05"

// ANSI colors for past timers.
const (
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// Timer command flags
var (
	renderSpecs []string
	renderNow   string
)

func init() {
	renderCmd.Flags().StringArrayVarP(&renderSpecs, "spec", "s", nil, "Format spec, repeatable (e.g. dhms, wd, hmsms)")
	renderCmd.Flags().StringVar(&renderNow, "now", "", "Render at this instant instead of the current time")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(renderCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List timers",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var addCmd = &cobra.Command{
	Use:   "add <date> <name...>",
	Short: "Add a timer",
	Long: `Add a timer counting down to (or up from) date.

The date is Unix milliseconds, RFC 3339, or YYYY-MM-DD with an optional
THH:MM[:SS[.mmm]] time, read as UTC. The name is every remaining argument.

Examples:
  countdown add 2027-01-01 New Year
  countdown add 2026-12-24T18:00 Christmas Eve
  countdown add 1696174196000 Launch`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "remove <index>",
	Aliases: []string{"rm"},
	Short:   "Remove the timer at index",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Show the time remaining for every timer",
	Long: `Show the time remaining until (or elapsed since) every timer, one
column per format spec.

A spec lists units coarsest first: w (weeks), d, h, m, s and ms.

Examples:
  countdown render
  countdown render -s dhms -s wd
  countdown render --spec hmsms --now 2027-01-01`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

// timerJSON is the JSON form of a listed timer.
type timerJSON struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Origin int64  `json:"origin"`
	Date   string `json:"date"`
}

func toTimerJSON(i int, t models.Timer) timerJSON {
	return timerJSON{
		Index:  i,
		Key:    t.Key,
		Name:   t.Name,
		Origin: t.Origin,
		Date:   countdown.ToTime(t.Origin).Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	timers := a.svc.List()

	if IsJSON() {
		out := make([]timerJSON, len(timers))
		for i, t := range timers {
			out[i] = toTimerJSON(i, t)
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(timers) == 0 {
		OutputLine("No timers. Add one with 'countdown add <date> <name>'.")
		return nil
	}

	now := a.svc.Clock().NowMillis()
	fmt.Printf("%-4s %-16s %-20s %-10s %s\n", "#", "KEY", "DATE", "WHEN", "NAME")
	fmt.Println(strings.Repeat("-", 80))
	for i, t := range timers {
		fmt.Printf("%-4d %-16s %-20s %-10s %s\n", i, t.Key, countdown.ToTime(t.Origin).Format(dateLayout),
			common.FormatRelative(t.Origin, now), t.Name)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	timer, err := a.svc.Append(cmd.Context(), service.AppendInput{
		Date: args[0],
		Name: strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	index := models.IndexOfKey(a.svc.List(), timer.Key)

	if IsJSON() {
		data, _ := json.MarshalIndent(toTimerJSON(index, timer), "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Added timer %d: %s (%s)", index, timer.Name, countdown.ToTime(timer.Origin).Format(dateLayout))
	VerboseOutput("Key: %s\n", timer.Key)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return ErrInvalidArgsWithSuggestion(SuggestListTimers, "invalid timer index %q", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	timer, err := a.svc.Remove(cmd.Context(), index)
	if err != nil {
		return err
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(toTimerJSON(index, timer), "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Removed timer %d: %s", index, timer.Name)
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	specs, err := resolveSpecs(renderSpecs)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var r *service.Rendering
	if renderNow != "" {
		now, err := common.ParseOrigin(renderNow)
		if err != nil {
			return err
		}
		r, err = a.svc.Render(now, specs)
		if err != nil {
			return err
		}
	} else {
		r, err = a.svc.RenderNow(specs)
		if err != nil {
			return err
		}
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(r, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printRendering(os.Stdout, r, UseColor())
	return nil
}

// printRendering writes r as a fixed-width table. Past timers are dimmed
// when color is on.
func printRendering(w io.Writer, r *service.Rendering, color bool) {
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "No timers")
		return
	}

	nameWidth := len("NAME")
	for _, row := range r.Rows {
		if n := len(row.Name); n > nameWidth {
			nameWidth = n
		}
	}
	cellWidths := make([]int, len(r.Specs))
	for i, spec := range r.Specs {
		cellWidths[i] = len(spec)
		for _, row := range r.Rows {
			if n := len(strings.TrimSpace(row.Cells[i])); n > cellWidths[i] {
				cellWidths[i] = n
			}
		}
	}

	fmt.Fprintf(w, "%-4s %-*s", "#", nameWidth, "NAME")
	for i, spec := range r.Specs {
		fmt.Fprintf(w, "  %*s", cellWidths[i], spec)
	}
	fmt.Fprintln(w)

	for _, row := range r.Rows {
		past := row.Origin < r.Now
		if past && color {
			fmt.Fprint(w, ansiDim)
		}
		fmt.Fprintf(w, "%-4d %-*s", row.Index, nameWidth, row.Name)
		for i, cell := range row.Cells {
			fmt.Fprintf(w, "  %*s", cellWidths[i], strings.TrimSpace(cell))
		}
		if past && color {
			fmt.Fprint(w, ansiReset)
		}
		fmt.Fprintln(w)
	}
}
