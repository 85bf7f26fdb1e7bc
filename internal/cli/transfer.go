package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spetersoncode/countdown/internal/models"
	"github.com/spetersoncode/countdown/internal/service"
	"github.com/spetersoncode/countdown/internal/storage"
)

// Transfer formats
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// Export/import command flags
var (
	transferFormat string
	importDryRun   bool
)

func init() {
	exportCmd.Flags().StringVarP(&transferFormat, "format", "f", "", "Output format: json or yaml (default from file extension, else yaml)")
	importCmd.Flags().StringVarP(&transferFormat, "format", "f", "", "Input format: json or yaml (default from file extension, else yaml)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without replacing the timers")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the timer list to a file or stdout",
	Long: `Write the timer list as YAML or JSON.

With no file, or "-", the document goes to stdout.

Examples:
  countdown export timers.yaml
  countdown export --format json > timers.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the timer list from a file or stdin",
	Long: `Replace the timer list with the timers in a YAML or JSON document.

Timers without a key get one derived from their name. Every timer needs a
name and the keys must be unique. With no file, or "-", the document is
read from stdin.

Examples:
  countdown import timers.yaml
  countdown export | countdown --db other.db import`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// timerDocument is the exported file layout.
type timerDocument struct {
	Timers []models.Timer `json:"timers" yaml:"timers"`
}

// transferFormatFor picks the format from the flag, then the file
// extension, defaulting to YAML.
func transferFormatFor(path string) (string, error) {
	if transferFormat != "" {
		switch f := strings.ToLower(transferFormat); f {
		case formatJSON, formatYAML:
			return f, nil
		case "yml":
			return formatYAML, nil
		default:
			return "", ErrInvalidArgsWithSuggestion("Use --format json or --format yaml.", "unknown format %q", transferFormat)
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return formatJSON, nil
	}
	return formatYAML, nil
}

func encodeDocument(doc timerDocument, format string) ([]byte, error) {
	if format == formatJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument(data []byte, format string) (timerDocument, error) {
	var doc timerDocument
	var err error
	if format == formatJSON {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, ErrInvalidArgs("invalid %s document: %v", format, err)
	}
	return doc, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
	}
	format, err := transferFormatFor(path)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	timers := a.svc.List()
	data, err := encodeDocument(timerDocument{Timers: timers}, format)
	if err != nil {
		return ErrGeneralWithCause(err, "failed to encode timers")
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return ErrGeneralWithCause(err, "failed to write %s", path)
	}
	if !IsJSON() {
		OutputLine("Exported %d timers to %s", len(timers), path)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
	}
	format, err := transferFormatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	if path == "" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ErrGeneralWithCause(err, "failed to read timers")
	}

	doc, err := decodeDocument(data, format)
	if err != nil {
		return err
	}
	if doc.Timers == nil {
		doc.Timers = []models.Timer{}
	}

	if importDryRun {
		// Validate against a throwaway in-memory list
		scratch := service.NewTimerService(storage.NewStore(storage.NewMemoryKV()), nil)
		if err := scratch.Replace(cmd.Context(), doc.Timers); err != nil {
			return err
		}
		OutputLine("%d timers would be imported", len(doc.Timers))
		return nil
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Replace(cmd.Context(), doc.Timers); err != nil {
		return err
	}

	if IsJSON() {
		result := map[string]int{"imported": len(doc.Timers)}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	OutputLine("Imported %d timers", len(doc.Timers))
	return nil
}
