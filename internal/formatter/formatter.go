// package formatter renders the import run ledger in various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tripx/internal/models"
)

// Supported report formats
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

var csvHeaders = []string{
	"ID", "Kind", "Source", "Status", "Users", "Devices", "Trips", "Flights",
	"Airports", "Aircraft", "Dropped", "Started", "Completed", "Error",
}

// RunsToCSV converts runs to CSV with one row per run.
func RunsToCSV(runs []*models.ImportRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.ID,
			run.Kind,
			run.Source,
			run.Status,
			strconv.Itoa(run.Users),
			strconv.Itoa(run.Devices),
			strconv.Itoa(run.Trips),
			strconv.Itoa(run.Flights),
			strconv.Itoa(run.Airports),
			strconv.Itoa(run.Aircraft),
			strconv.Itoa(run.Dropped),
			run.StartedAt.UTC().Format(time.RFC3339),
			completedAt(run, time.RFC3339),
			run.ErrorMessage,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunsToMarkdown converts runs to a Markdown table.
func RunsToMarkdown(runs []*models.ImportRun) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Import Runs\n\n")
	buf.WriteString(fmt.Sprintf("**Runs**: %d\n\n", len(runs)))

	buf.WriteString("| Started | Kind | Status | Source | Rows | Dropped |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, run := range runs {
		status := run.Status
		if run.ErrorMessage != "" {
			status = fmt.Sprintf("%s: %s", status, escapeCell(run.ErrorMessage))
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | `%s` | %s | %d |\n",
			run.StartedAt.UTC().Format(time.DateTime), run.Kind, status, run.Source, rowCounts(run), run.Dropped))
	}

	return buf.Bytes(), nil
}

// RunsToText converts runs to plain text, two lines per run.
func RunsToText(runs []*models.ImportRun) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("═══════════════════════════════════════\n")
	buf.WriteString(fmt.Sprintf("Import runs (%d)\n", len(runs)))
	buf.WriteString("═══════════════════════════════════════\n")

	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%s  %-8s  %-9s  %s\n",
			run.StartedAt.Local().Format(time.DateTime), run.Kind, run.Status, run.Source))

		if run.ErrorMessage != "" {
			buf.WriteString(fmt.Sprintf("    error: %s\n", run.ErrorMessage))
			continue
		}
		buf.WriteString(fmt.Sprintf("    %s dropped=%d\n", rowCounts(run), run.Dropped))
	}

	return buf.Bytes(), nil
}

// Render converts runs to the named format.
func Render(runs []*models.ImportRun, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return RunsToText(runs)
	case FormatCSV:
		return RunsToCSV(runs)
	case FormatMarkdown, "md":
		return RunsToMarkdown(runs)
	case FormatJSON:
		if runs == nil {
			runs = []*models.ImportRun{}
		}
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// WriteReport renders runs and writes them to path.
//
// Defaults to import_runs.{ext} as the filename.
func WriteReport(runs []*models.ImportRun, format, path string) (string, error) {
	if path == "" {
		path = "import_runs." + extension(format)
	}

	data, err := Render(runs, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

// rowCounts lists the non-zero per-table counts of a run.
func rowCounts(run *models.ImportRun) string {
	var parts []string
	for _, c := range []struct {
		name string
		n    int
	}{
		{"users", run.Users},
		{"devices", run.Devices},
		{"trips", run.Trips},
		{"flights", run.Flights},
		{"airports", run.Airports},
		{"aircraft", run.Aircraft},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c.name, c.n))
		}
	}
	if len(parts) == 0 {
		return "no rows"
	}
	return strings.Join(parts, " ")
}

func completedAt(run *models.ImportRun, layout string) string {
	if run.CompletedAt == nil {
		return ""
	}
	return run.CompletedAt.UTC().Format(layout)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func extension(format string) string {
	switch format {
	case FormatCSV:
		return "csv"
	case FormatMarkdown, "md":
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}
