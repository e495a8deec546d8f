package collector

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/model"
)

// Fetcher retrieves bars for one symbol/interval/period request.
//
// An unknown symbol or an empty window is not an error: implementations return an
// empty series and a nil error. Transport and decoding failures return a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, interval model.Interval, period model.Period) (*model.PriceSeries, error)
	Name() string
}

// ErrMalformedResponse marks a vendor response that could not be interpreted.
var ErrMalformedResponse = errors.New("malformed response")

// FetchError is a vendor or network failure, distinct from an empty result.
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(source, symbol string, err error) *FetchError {
	return &FetchError{Source: source, Symbol: symbol, Err: err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

func emptySeries(symbol string, interval model.Interval, period model.Period) *model.PriceSeries {
	return &model.PriceSeries{Symbol: symbol, Interval: interval, Period: period}
}
