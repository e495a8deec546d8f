package collector

import (
	"context"
	"time"

	"StockPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With Bars nil and Price > 0 it generates Count bars around Price.
type MockFetcher struct {
	Price float64
	Count int
	Bars  []model.OHLCV
	Err   error

	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string, interval model.Interval, period model.Period) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, fetchErr(m.Name(), symbol, m.Err)
	}
	series := emptySeries(symbol, interval, period)
	series.Currency = "USD"
	series.FetchedAt = time.Now()
	switch {
	case m.Bars != nil:
		series.Bars = append([]model.OHLCV(nil), m.Bars...)
	case m.Price > 0:
		series.Bars = generateMockBars(m.Price, m.Count, barStep(interval))
	}
	return series, nil
}

func barStep(i model.Interval) time.Duration {
	switch i {
	case model.Interval1m:
		return time.Minute
	case model.Interval5m:
		return 5 * time.Minute
	case model.Interval15m:
		return 15 * time.Minute
	case model.Interval1h:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
