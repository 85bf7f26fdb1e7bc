package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spetersoncode/countdown/internal/tasks"
)

// Watch command flags
var (
	watchSpecs    []string
	watchInterval time.Duration
	watchCount    int
)

const clearScreen = "\x1b[H\x1b[2J"

func init() {
	watchCmd.Flags().StringArrayVarP(&watchSpecs, "spec", "s", nil, "Format spec, repeatable (e.g. dhms, wd, hmsms)")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "Refresh interval (default from tick_ms)")
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Stop after this many refreshes (0 = until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Redraw the timer table on every tick",
	Long: `Redraw the timer table until interrupted.

The refresh interval defaults to tick_ms from the configuration (1s).
On a terminal the screen is cleared before each frame and lines are cut to
the terminal width.

Examples:
  countdown watch
  countdown watch -s hmsms -i 100ms
  countdown watch --count 3`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	specs, err := resolveSpecs(watchSpecs)
	if err != nil {
		return err
	}

	interval := watchInterval
	if interval <= 0 {
		interval = time.Duration(GetConfig().TickMillis) * time.Millisecond
	}
	if interval <= 0 {
		interval = time.Second
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fd := int(os.Stdout.Fd())
	interactive := term.IsTerminal(fd)
	color := UseColor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := 0
	ticker := tasks.NewTicker(a.svc, specs)
	err = ticker.Run(ctx, interval, func(result *tasks.TickResult) {
		width := 0
		if interactive {
			if w, _, err := term.GetSize(fd); err == nil {
				width = w
			}
		}

		frame, err := watchFrame(result, color, width)
		if err != nil {
			ErrorOutput("Error: %v\n", err)
		} else {
			if interactive {
				fmt.Print(clearScreen)
			}
			os.Stdout.Write(frame)
		}

		frames++
		if watchCount > 0 && frames >= watchCount {
			cancel()
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchFrame renders one tick, cut to width when width is positive.
func watchFrame(result *tasks.TickResult, color bool, width int) ([]byte, error) {
	if result.Error != "" {
		return nil, errors.New(result.Error)
	}
	var buf bytes.Buffer
	printRendering(&buf, result.Rendering, color)
	if width > 0 {
		buf = clipLines(buf.Bytes(), width)
	}
	return buf.Bytes(), nil
}

// clipLines cuts every line of text to width visible bytes.
func clipLines(text []byte, width int) bytes.Buffer {
	var out bytes.Buffer
	for _, line := range strings.SplitAfter(string(text), "\n") {
		body := strings.TrimSuffix(line, "\n")
		if visibleLen(body) > width {
			body = clipVisible(body, width)
		}
		out.WriteString(body)
		if strings.HasSuffix(line, "\n") {
			out.WriteByte('\n')
		}
	}
	return out
}

// visibleLen counts bytes outside ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		n++
	}
	return n
}

// clipVisible keeps every escape sequence, so a dimmed line is still reset,
// and the first width visible bytes.
func clipVisible(s string, width int) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			j := i
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				j++
			}
			b.WriteString(s[i:j])
			i = j - 1
			continue
		}
		if n >= width {
			continue
		}
		b.WriteByte(s[i])
		n++
	}
	return b.String()
}
