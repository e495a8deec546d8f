package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars returned for one symbol/interval/period request.
// Bars are ordered by time ascending, most recent last.
type PriceSeries struct {
	Symbol    string
	Interval  Interval
	Period    Period
	Currency  string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars. A nil series has none.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Empty reports whether the series carries no bars.
func (s *PriceSeries) Empty() bool { return s.Len() == 0 }

// Latest returns the most recent bar.
func (s *PriceSeries) Latest() (OHLCV, bool) {
	if s.Empty() {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Tail returns a copy of the last n bars (fewer if the series is shorter).
func (s *PriceSeries) Tail(n int) []OHLCV {
	if s.Empty() || n <= 0 {
		return nil
	}
	start := len(s.Bars) - n
	if start < 0 {
		start = 0
	}
	out := make([]OHLCV, len(s.Bars)-start)
	copy(out, s.Bars[start:])
	return out
}
