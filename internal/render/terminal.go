// Package render writes analysis tables to terminals, files and charts.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
)

// Format selects a table encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name; empty means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (use table|markdown|csv|json)", s)
	}
}

// Ext is the file extension used when a format is written to disk.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Write encodes t in the given format.
func Write(w io.Writer, t *analysis.Table, f Format) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, t.Markdown())
		return err
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON:
		return writeJSON(w, t)
	default:
		return writeTerminal(w, t, true)
	}
}

// Plain renders the terminal layout without colour codes.
func Plain(w io.Writer, t *analysis.Table) error { return writeTerminal(w, t, false) }

func writeTerminal(w io.Writer, t *analysis.Table, styled bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}
	if t.Name != "" {
		if _, err := fmt.Fprintln(w, style(titleStyle, t.Name)); err != nil {
			return err
		}
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, style(subtleStyle, "(no rows)"))
		return err
	}

	// Lay out plain text first; escape codes would count towards tabwriter cell widths.
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	header := t.Header()
	rules := make([]string, len(header))
	for i, h := range header {
		rules[i] = strings.Repeat("─", max(len(h), 4))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rules, "\t")); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	for _, row := range t.Strings() {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	head, body, _ := strings.Cut(buf.String(), "\n")
	if _, err := fmt.Fprintln(w, style(headerStyle, head)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	for _, n := range t.Warnings {
		if _, err := fmt.Fprintln(w, style(noteStyle, "⚠ "+n)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, t *analysis.Table) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(t.Dimensions)+len(t.Measures))
	for _, d := range t.Dimensions {
		header = append(header, string(d))
	}
	header = append(header, t.Measures...)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Strings()); err != nil {
		return err
	}
	return cw.Error()
}

type jsonTable struct {
	Name     string           `json:"name,omitempty"`
	Rows     []map[string]any `json:"rows"`
	Warnings []string         `json:"warnings,omitempty"`
}

func writeJSON(w io.Writer, t *analysis.Table) error {
	out := jsonTable{Name: t.Name, Warnings: t.Warnings, Rows: make([]map[string]any, 0, len(t.Rows))}
	for _, r := range t.Rows {
		m := make(map[string]any, len(r.Keys)+len(r.Values))
		for i, d := range t.Dimensions {
			m[string(d)] = r.Keys[i]
		}
		for i, name := range t.Measures {
			m[name] = r.Values[i]
		}
		out.Rows = append(out.Rows, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
