package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/latencytrace/pkg/latencytrace"
)

type reportRow struct {
	Name      string `json:"name" yaml:"name"`
	Depth     int    `json:"depth" yaml:"depth"`
	Samples   uint64 `json:"samples" yaml:"samples"`
	MeanTot   string `json:"mean_total" yaml:"mean_total"`
	P99Tot    string `json:"p99_total" yaml:"p99_total"`
	MeanAct   string `json:"mean_active" yaml:"mean_active"`
	MeanTotUs int64  `json:"mean_total_us" yaml:"mean_total_us"`
	P99TotUs  int64  `json:"p99_total_us" yaml:"p99_total_us"`
}

func renderReport(timings latencytrace.Timings, ro runOptions) error {
	rows := make([]reportRow, 0, len(timings.Entries))

	for _, e := range timings.Entries {
		stats := latencytrace.NewSummaryStats(e.Timing.Total)

		rows = append(rows, reportRow{
			Name:      strings.Repeat("  ", e.Group.Depth-1) + e.Group.Name,
			Depth:     e.Group.Depth,
			Samples:   stats.Count,
			MeanTot:   humanize.Comma(stats.Mean.Microseconds()) + "µs",
			P99Tot:    humanize.Comma(stats.P99.Microseconds()) + "µs",
			MeanAct:   humanize.Comma(e.Timing.Active.Mean().Microseconds()) + "µs",
			MeanTotUs: stats.Mean.Microseconds(),
			P99TotUs:  stats.P99.Microseconds(),
		})
	}

	switch ro.format {
	case formatJSON:
		return renderJSON(rows)
	case formatYAML:
		return renderYAML(rows)
	case formatHTML:
		return renderHTML(rows, ro.htmlOut)
	default:
		renderTable(rows, ro.noColor)

		return nil
	}
}

func renderJSON(rows []reportRow) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode report as json: %w", err)
	}

	return nil
}

func renderYAML(rows []reportRow) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer func() { _ = enc.Close() }()

	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode report as yaml: %w", err)
	}

	return nil
}

// renderHTML writes a standalone HTML bar chart comparing mean and p99
// total latency across span groups, the way the teacher's analyzer
// packages render a go-echarts chart for a metrics section.
func renderHTML(rows []reportRow, path string) error {
	names := make([]string, len(rows))
	mean := make([]opts.BarData, len(rows))
	p99 := make([]opts.BarData, len(rows))

	for i, r := range rows {
		names[i] = r.Name
		mean[i] = opts.BarData{Value: r.MeanTotUs}
		p99[i] = opts.BarData{Value: r.P99TotUs}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Span group total latency (µs)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "span group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "microseconds"}),
	)
	bar.SetXAxis(names).
		AddSeries("mean total", mean).
		AddSeries("p99 total", p99)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report %s: %w", path, err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", path)

	return nil
}

func renderTable(rows []reportRow, noColor bool) {
	color.NoColor = noColor

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false

	tw.AppendHeader(table.Row{"span group", "samples", "mean total", "p99 total", "mean active"})

	for _, r := range rows {
		name := r.Name
		if !noColor {
			name = color.CyanString(r.Name)
		}

		tw.AppendRow(table.Row{name, r.Samples, r.MeanTot, r.P99Tot, r.MeanAct})
	}

	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d groups", len(rows)), "", "", ""})
	tw.Render()
}
