// Package chart renders the close price of a series as a standalone HTML line chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"StockPulse/internal/export"
	"StockPulse/internal/model"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("chart: empty series")

// Title is the chart heading for a symbol.
func Title(symbol string) string {
	return symbol + " Price Over Time"
}

// FileName is the chart file name for a symbol.
func FileName(symbol string) string {
	return export.SafeName(symbol) + "_chart.html"
}

func timeLayout(i model.Interval) string {
	if i.Intraday() {
		return "2006-01-02 15:04"
	}
	return "2006-01-02"
}

// NewLine builds the Close-over-Time line chart for a non-empty series.
func NewLine(series *model.PriceSeries) (*charts.Line, error) {
	if series.Empty() {
		return nil, ErrEmptySeries
	}
	layout := timeLayout(series.Interval)
	xs := make([]string, 0, series.Len())
	ys := make([]opts.LineData, 0, series.Len())
	for _, b := range series.Bars {
		xs = append(xs, b.Time.Format(layout))
		ys = append(ys, opts.LineData{Value: b.Close})
	}

	priceAxis := "Price"
	if series.Currency != "" {
		priceAxis = fmt.Sprintf("Price (%s)", series.Currency)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: Title(series.Symbol),
			Theme:     types.ThemeChalk,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    Title(series.Symbol),
			Subtitle: fmt.Sprintf("Interval %s · Period %s", series.Interval, series.Period),
			Left:     "center",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: priceAxis}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(xs).AddSeries("Close Price", ys,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "cyan", Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "yellow"}),
	)
	return line, nil
}

// Render writes the chart page for series to w.
func Render(w io.Writer, series *model.PriceSeries) error {
	line, err := NewLine(series)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Save writes the chart to dir/{SYMBOL}_chart.html and returns the path.
func Save(dir string, series *model.PriceSeries) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, series); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(dir, FileName(series.Symbol))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}
