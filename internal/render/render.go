// Package render formats search results and progress for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/life-progress/internal/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (use text, json or yaml)", value)
	}
}

// CountryRecord is the encoded form of a table entry or search hit.
type CountryRecord struct {
	Name    string  `json:"name" yaml:"name"`
	All     float64 `json:"all" yaml:"all"`
	Male    float64 `json:"male" yaml:"male"`
	Female  float64 `json:"female" yaml:"female"`
	Score   *int    `json:"score,omitempty" yaml:"score,omitempty"`
	Indices []int   `json:"indices,omitempty" yaml:"indices,omitempty"`
}

// Hit pairs a match with the entry it points to.
type Hit struct {
	Match model.MatchResult
	Info  model.CountryInfo
}

// Printer writes command output in one format.
type Printer struct {
	w      io.Writer
	format Format

	nameStyle   lipgloss.Style
	matchStyle  lipgloss.Style
	bannerStyle lipgloss.Style
	valueStyle  lipgloss.Style
}

// NewPrinter returns a Printer for w. Colors follow the terminal
// capabilities detected for w.
func NewPrinter(w io.Writer, format Format) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:           w,
		format:      format,
		nameStyle:   r.NewStyle().Bold(true),
		matchStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A")),
		bannerStyle: r.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FF4D4F")),
		valueStyle:  r.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
	}
}

// Progress writes a progress summary.
func (p *Printer) Progress(info model.ProgressInfo) error {
	switch p.format {
	case FormatJSON:
		return writeJSON(p.w, info)
	case FormatYAML:
		return writeYAML(p.w, info)
	}
	_, err := fmt.Fprintf(p.w, "You spent %s days, completed %s of life progress, still have %s days left. enjoy!\n",
		p.valueStyle.Render(strconv.Itoa(info.Spent)),
		p.valueStyle.Render(strconv.Itoa(info.Progress)+"%"),
		p.valueStyle.Render(strconv.Itoa(info.Rest)),
	)
	return err
}

// Hits writes search hits with matched runes highlighted.
func (p *Printer) Hits(hits []Hit) error {
	if p.format != FormatText {
		records := make([]CountryRecord, len(hits))
		for i, h := range hits {
			score := h.Match.Score
			records[i] = newRecord(h.Match.Name, h.Info)
			records[i].Score = &score
			records[i].Indices = h.Match.Indices
		}
		return p.encode(records)
	}
	rows := make([][]cell, len(hits))
	for i, h := range hits {
		rows[i] = []cell{
			{text: Highlight(h.Match.Name, h.Match.Indices, p.nameStyle, p.matchStyle), width: displayWidth(h.Match.Name)},
			plainCell(describe(h.Info)),
		}
	}
	return p.writeLines(formatTable(rows))
}

// Country writes a single table entry.
func (p *Printer) Country(name string, info model.CountryInfo) error {
	if p.format != FormatText {
		return p.encode(newRecord(name, info))
	}
	_, err := fmt.Fprintf(p.w, "%s %s\n", p.nameStyle.Render(name), describe(info))
	return err
}

// NotFound writes the banner shown when a search or lookup is empty.
func (p *Printer) NotFound() error {
	if p.format != FormatText {
		return p.encode([]CountryRecord{})
	}
	_, err := fmt.Fprintf(p.w, "%s Nothing found\n", p.bannerStyle.Render(" ERROR "))
	return err
}

func (p *Printer) encode(v any) error {
	if p.format == FormatYAML {
		return writeYAML(p.w, v)
	}
	return writeJSON(p.w, v)
}

func (p *Printer) writeLines(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newRecord(name string, info model.CountryInfo) CountryRecord {
	return CountryRecord{Name: name, All: info.All, Male: info.Male, Female: info.Female}
}

func describe(info model.CountryInfo) string {
	return fmt.Sprintf("{ Average: %s, Male: %s, Female: %s }", years(info.All), years(info.Male), years(info.Female))
}

func years(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
