package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/screening"
)

type screenRow struct {
	File        string   `json:"file"`
	Prediction  string   `json:"prediction,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Degraded    []string `json:"degraded,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type featureRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type featureReport struct {
	File     string       `json:"file"`
	Features []featureRow `json:"features"`
	Degraded []string     `json:"degraded,omitempty"`
}

func screenRows(outcomes []screening.Outcome) (rows []screenRow, failed int) {
	rows = make([]screenRow, 0, len(outcomes))
	for _, o := range outcomes {
		row := screenRow{File: o.Name}
		if o.Err != nil {
			row.Error = o.Err.Error()
			failed++
		} else {
			resp := screening.NewResponse(o.Result)
			row.Prediction = resp.Prediction
			row.Probability = &resp.Probability
			row.Degraded = o.Result.Degraded
		}
		rows = append(rows, row)
	}
	return rows, failed
}

func newFeatureReport(file string, vec features.Vector, degraded []string) featureReport {
	names := features.Names()
	rows := make([]featureRow, len(names))
	for i, n := range names {
		rows[i] = featureRow{Name: n, Value: vec[i]}
	}
	return featureReport{File: file, Features: rows, Degraded: degraded}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeScreenTable(w io.Writer, rows []screenRow) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Prediction", "Probability", "Notes"})
	for _, r := range rows {
		prob := ""
		if r.Probability != nil {
			prob = strconv.FormatFloat(*r.Probability, 'f', 2, 64)
		}
		notes := r.Error
		if notes == "" && len(r.Degraded) > 0 {
			notes = "degraded: " + strings.Join(r.Degraded, ", ")
		}
		tw.AppendRow(table.Row{r.File, r.Prediction, prob, notes})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func writeFeatureTable(w io.Writer, rep featureReport) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(rep.File)
	tw.AppendHeader(table.Row{"Feature", "Value"})
	for _, r := range rep.Features {
		tw.AppendRow(table.Row{r.Name, strconv.FormatFloat(r.Value, 'g', 6, 64)})
	}
	if len(rep.Degraded) > 0 {
		tw.AppendFooter(table.Row{"degraded", strings.Join(rep.Degraded, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
