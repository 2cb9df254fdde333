package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Columns with a positive entry in
// widths are wrapped at that many characters.
type tableSpec struct {
	title   string
	headers []string
	aligns  []columnAlignment
	widths  []int
	rows    [][]string
}

func (s tableSpec) render() string {
	columns := len(s.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.title != "" {
		tw.SetTitle(s.title)
	}

	header := make(table.Row, columns)
	for i, h := range s.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range s.rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(s.aligns) && s.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
		if i < len(s.widths) && s.widths[i] > 0 {
			configs[i].WidthMax = s.widths[i]
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
