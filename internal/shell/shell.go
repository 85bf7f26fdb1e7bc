// Package shell provides an interactive prompt for editing and rendering
// timers.
package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/chzyer/readline"

	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/service"
)

// Config configures a Shell.
type Config struct {
	// Specs are rendered by `render` when it is given none.
	Specs []countdown.FormatSpec

	// HistoryFile keeps entered lines between sessions. Empty disables it.
	HistoryFile string
}

// Shell is an interactive timer prompt.
type Shell struct {
	svc    *service.TimerService
	config Config
	out    io.Writer
	rl     *readline.Instance
}

// New creates a Shell reading from the terminal.
func New(svc *service.TimerService, cfg Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "countdown> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("list"),
			readline.PcItem("add"),
			readline.PcItem("rm"),
			readline.PcItem("render"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := NewWithWriter(svc, cfg, rl.Stdout())
	s.rl = rl
	return s, nil
}

// NewWithWriter creates a Shell without a terminal. Lines are fed to Exec
// and output goes to out.
func NewWithWriter(svc *service.TimerService, cfg Config, out io.Writer) *Shell {
	if len(cfg.Specs) == 0 {
		cfg.Specs = []countdown.FormatSpec{countdown.DefaultSpec}
	}
	return &Shell{svc: svc, config: cfg, out: out}
}

// Run starts the interactive command loop. It returns when the user exits
// or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	if s.rl == nil {
		return fmt.Errorf("shell has no terminal")
	}
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if s.Exec(ctx, line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "list", "ls", "l":
		s.cmdList()

	case "add", "a":
		s.cmdAdd(ctx, args)

	case "rm", "remove", "del":
		s.cmdRemove(ctx, args)

	case "render", "r":
		s.cmdRender(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Countdown Commands:
  list                 - List timers
  add <date> <name...> - Add a timer (date: ms, RFC 3339 or YYYY-MM-DD[THH:MM[:SS]])
  rm <index>           - Remove the timer at index
  render [spec...]     - Show time remaining (spec e.g. dhms, wd, ms)
  help                 - Show this help
  exit                 - Leave the shell`)
}

func (s *Shell) cmdList() {
	timers := s.svc.List()
	if len(timers) == 0 {
		fmt.Fprintln(s.out, "No timers")
		return
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKEY\tNAME\tDATE")
	for i, t := range timers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, t.Key, t.Name, countdown.ToTime(t.Origin).Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func (s *Shell) cmdAdd(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: add <date> <name...>")
		fmt.Fprintln(s.out, "  Example: add 2027-01-01 New Year 2027")
		return
	}

	timer, err := s.svc.Append(ctx, service.AppendInput{Date: args[0], Name: strings.Join(args[1:], " ")})
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Added %s (%s)\n", timer.Name, timer.Key)
}

func (s *Shell) cmdRemove(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: rm <index>")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid index: %s\n", args[0])
		return
	}

	timer, err := s.svc.Remove(ctx, index)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Removed %s\n", timer.Name)
}

func (s *Shell) cmdRender(args []string) {
	specs := s.config.Specs
	if len(args) > 0 {
		parsed, err := countdown.ParseSpecs(args)
		if err != nil {
			s.printError(err)
			return
		}
		specs = parsed
	}

	r, err := s.svc.RenderNow(specs)
	if err != nil {
		s.printError(err)
		return
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\n", row.Index, row.Name, strings.Join(row.Cells, "\t"))
	}
	w.Flush()
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
	if e, ok := cerrors.As(err); ok && e.Suggestion != "" {
		fmt.Fprintf(s.out, "  %s\n", e.Suggestion)
	}
}
