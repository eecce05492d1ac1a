package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

type entry struct {
	File           string   `json:"file"            yaml:"file"`
	Pairs          int      `json:"pairs"           yaml:"pairs"`
	TruePositives  int      `json:"true_positives"  yaml:"true_positives"`
	FalsePositives int      `json:"false_positives" yaml:"false_positives"`
	TPPerFP        *float64 `json:"tp_per_fp"       yaml:"tp_per_fp"`
	Precision      *float64 `json:"precision"       yaml:"precision"`
	Error          string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func entries(summaries []*Summary) []entry {
	out := make([]entry, 0, len(summaries))

	for _, s := range summaries {
		if s == nil {
			continue
		}

		e := entry{
			File:           s.File,
			Pairs:          s.Pairs,
			TruePositives:  s.TruePositives,
			FalsePositives: s.FalsePositives,
			TPPerFP:        s.TPPerFP,
			Precision:      s.Precision,
		}
		if s.Err != nil {
			e.Error = s.Err.Error()
		}

		out = append(out, e)
	}

	return out
}

// Render writes the non-nil summaries in the given format.
func Render(w io.Writer, summaries []*Summary, format string) error {
	switch format {
	case FormatTable, "":
		return renderTable(w, summaries)
	case FormatJSON:
		data, err := json.MarshalIndent(entries(summaries), "", "  ")
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}

		return nil
	case FormatYAML:
		data, err := yaml.Marshal(entries(summaries))
		if err != nil {
			return fmt.Errorf("render yaml: %w", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return fmt.Errorf("render yaml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, summaries []*Summary) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Pairs", "TP", "FP", "TP/FP", "Precision", "Error"})

	rows := entries(summaries)
	for _, e := range rows {
		tbl.AppendRow(table.Row{
			e.File,
			humanize.Comma(int64(e.Pairs)),
			humanize.Comma(int64(e.TruePositives)),
			humanize.Comma(int64(e.FalsePositives)),
			ratio(e.TPPerFP),
			ratio(e.Precision),
			e.Error,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", len(rows))})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	return nil
}

func ratio(v *float64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%.2f", *v)
}
