package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"StockPulse/internal/model"
)

// csvRow mirrors the original download columns.
type csvRow struct {
	Datetime string  `csv:"Datetime"`
	Open     float64 `csv:"Open"`
	High     float64 `csv:"High"`
	Low      float64 `csv:"Low"`
	Close    float64 `csv:"Close"`
	Volume   float64 `csv:"Volume"`
}

// timeLayout picks a date-only layout for daily bars.
func timeLayout(i model.Interval) string {
	if i == model.Interval1d {
		return "2006-01-02"
	}
	return time.RFC3339
}

// WriteCSV writes the series with a header row, comma-delimited, UTF-8.
// An empty series produces the header only.
func WriteCSV(w io.Writer, series *model.PriceSeries) error {
	if series.Empty() {
		_, err := io.WriteString(w, "Datetime,Open,High,Low,Close,Volume\n")
		return err
	}
	layout := timeLayout(series.Interval)
	rows := make([]*csvRow, 0, series.Len())
	for _, b := range series.Bars {
		rows = append(rows, &csvRow{
			Datetime: b.Time.Format(layout),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

// SafeName replaces characters that are not allowed in file names ("^GSPC", "BTC/USD").
func SafeName(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '^':
			return '_'
		}
		return r
	}, symbol)
}

// FileName is the export file name for a symbol.
func FileName(symbol string) string {
	return SafeName(symbol) + "_data.csv"
}

// SaveCSV writes the series to dir/{SYMBOL}_data.csv and returns the path.
func SaveCSV(dir string, series *model.PriceSeries) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(series.Symbol))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return path, nil
}
