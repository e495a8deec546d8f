package calculator

import (
	"errors"
	"math"
	"time"

	"StockPulse/internal/model"
)

// Summary is the per-period summary table shown next to the chart.
type Summary struct {
	Bars        int
	From        time.Time
	To          time.Time
	FirstOpen   float64
	LastClose   float64
	High        float64
	Low         float64
	TotalVolume float64
	// ChangePercent is LastClose against FirstOpen; zero when FirstOpen is zero.
	ChangePercent float64
}

// Summarize scans every bar of the series.
func Summarize(series *model.PriceSeries) (Summary, error) {
	if series.Empty() {
		return Summary{}, errors.New("no bars provided")
	}
	bars := series.Bars
	first, last := bars[0], bars[len(bars)-1]

	sum := Summary{
		Bars:      len(bars),
		From:      first.Time,
		To:        last.Time,
		FirstOpen: first.Open,
		LastClose: last.Close,
	}
	sum.High, sum.Low = priceRange(bars)
	for _, b := range bars {
		sum.TotalVolume += b.Volume
	}
	if first.Open != 0 {
		sum.ChangePercent = (last.Close - first.Open) / first.Open * 100
	}
	return sum, nil
}

// priceRange returns the highest high and lowest low. Bars without high/low
// (zero values from sparse vendor rows) fall back to their close.
func priceRange(bars []model.OHLCV) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		h, l := b.High, b.Low
		if h == 0 {
			h = b.Close
		}
		if l == 0 {
			l = b.Close
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low
}
