package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidInterval  = errors.New("invalid interval")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// Interval is the bar granularity of a request.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
)

// Intervals lists the supported intervals in display order.
var Intervals = []Interval{Interval1m, Interval5m, Interval15m, Interval1h, Interval1d}

// Intraday reports whether bars carry a time of day.
func (i Interval) Intraday() bool { return i != Interval1d }

// Period is the look-back window of a request.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
)

// Periods lists the supported periods in display order.
var Periods = []Period{Period1d, Period5d, Period1mo, Period3mo, Period6mo, Period1y}

// ParseInterval validates s against the supported intervals.
func ParseInterval(s string) (Interval, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, i := range Intervals {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidInterval, s, Intervals)
}

// ParsePeriod validates s against the supported periods.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidPeriod, s, Periods)
}

// Threshold bounds accepted from users. The evaluator itself takes any positive value.
const (
	MinThreshold = 1.0
	MaxThreshold = 20.0
)

// Params is one dashboard query.
type Params struct {
	Symbol    string
	Interval  Interval
	Period    Period
	Threshold float64
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate checks every field of p.
func (p Params) Validate() error {
	if p.Symbol == "" || strings.ContainsAny(p.Symbol, " \t/?#&") {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, p.Symbol)
	}
	if _, err := ParseInterval(string(p.Interval)); err != nil {
		return err
	}
	if _, err := ParsePeriod(string(p.Period)); err != nil {
		return err
	}
	if p.Threshold < MinThreshold || p.Threshold > MaxThreshold {
		return fmt.Errorf("%w: %.2f (want %.0f-%.0f)", ErrInvalidThreshold, p.Threshold, MinThreshold, MaxThreshold)
	}
	return nil
}
