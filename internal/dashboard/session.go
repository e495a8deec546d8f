// Package dashboard runs the fetch, evaluate, render and display cycle for one
// dashboard query.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockPulse/internal/alert"
	"StockPulse/internal/calculator"
	"StockPulse/internal/chart"
	"StockPulse/internal/collector"
	"StockPulse/internal/export"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
)

// Display is the presentation sink a rendered cycle is handed to.
type Display interface {
	Display(ctx context.Context, text string) error
}

// ErrNoSeries is returned by the exports before any non-empty series has been fetched.
var ErrNoSeries = errors.New("no data fetched yet")

// Options tune a Session.
type Options struct {
	TailRows               int
	ComparePreviousRefresh bool
	// ExportDir, when set, receives a CSV and a line chart of every non-empty fetch.
	ExportDir string
}

// Cycle is the outcome of one refresh.
type Cycle struct {
	ID         string
	Params     model.Params
	StartedAt  time.Time
	Series     *model.PriceSeries
	Summary    calculator.Summary
	Result     model.AlertResult
	ExportPath string
	ChartPath  string
	Err        error
}

// Session holds the current query and the series of the previous cycle.
// Refreshes are serialized: a timed tick and a manual command may arrive together.
type Session struct {
	mu       sync.Mutex
	fetcher  collector.Fetcher
	display  Display
	opts     Options
	log      zerolog.Logger
	params   model.Params
	previous *model.PriceSeries
	// latest is the last non-empty series, kept across failed cycles for export.
	latest *model.PriceSeries
	last   *Cycle
}

// NewSession validates the initial params and creates a Session.
func NewSession(fetcher collector.Fetcher, display Display, params model.Params, opts Options, logger zerolog.Logger) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		fetcher: fetcher,
		display: display,
		opts:    opts,
		log:     logger,
		params:  params,
	}, nil
}

// Params returns the current query.
func (s *Session) Params() model.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// LastCycle returns the most recent cycle, or nil before the first refresh.
func (s *Session) LastCycle() *Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SetParams validates and installs a new query. Changing what is fetched drops the
// previous series so cross-refresh comparison never mixes two queries.
func (s *Session) SetParams(p model.Params) error {
	p.Symbol = model.NormalizeSymbol(p.Symbol)
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Symbol != s.params.Symbol || p.Interval != s.params.Interval || p.Period != s.params.Period {
		s.previous = nil
	}
	s.params = p
	return nil
}

// Refresh runs one fetch, evaluate, render and display cycle.
// A fetch failure is displayed as a warning and returned; an empty result is not an error.
func (s *Session) Refresh(ctx context.Context) (*Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.params
	c := &Cycle{ID: uuid.NewString(), Params: p, StartedAt: time.Now()}
	s.last = c
	log := s.log.With().Str("cycle_id", c.ID).Str("symbol", p.Symbol).Logger()
	log.Debug().Str("interval", string(p.Interval)).Str("period", string(p.Period)).Msg("refresh started")

	series, err := s.fetcher.Fetch(ctx, p.Symbol, p.Interval, p.Period)
	if err != nil {
		c.Err = err
		log.Error().Err(err).Str("source", s.fetcher.Name()).Msg("fetch failed")
		s.show(ctx, log, notifier.FormatFetchFailure(p, err))
		return c, fmt.Errorf("refresh %s: %w", p.Symbol, err)
	}
	c.Series = series

	if series.Empty() {
		c.Result = alert.Evaluate(series, p.Threshold)
		log.Warn().Msg("no data for query")
		s.show(ctx, log, notifier.FormatNoData(p)+"\n"+notifier.FormatAlert(c.Result))
		return c, nil
	}

	if s.opts.ComparePreviousRefresh {
		c.Result = alert.EvaluateAgainstPrevious(series, s.previous, p.Threshold)
	} else {
		c.Result = alert.Evaluate(series, p.Threshold)
	}
	s.previous = series
	s.latest = series

	// Summarize cannot fail on a non-empty series.
	c.Summary, _ = calculator.Summarize(series)

	log.Info().
		Int("bars", series.Len()).
		Str("alert", string(c.Result.Kind)).
		Float64("change_pct", c.Result.ChangePercent).
		Float64("latest", c.Result.LatestPrice).
		Msg("refresh completed")

	s.show(ctx, log, notifier.FormatReport(series, c.Summary, c.Result, s.opts.TailRows))

	if s.opts.ExportDir != "" {
		path, err := export.SaveCSV(s.opts.ExportDir, series)
		if err != nil {
			log.Error().Err(err).Msg("csv export failed")
		} else {
			c.ExportPath = path
		}
		path, err = chart.Save(s.opts.ExportDir, series)
		if err != nil {
			log.Error().Err(err).Msg("chart export failed")
		} else {
			c.ChartPath = path
		}
	}
	return c, nil
}

// ExportCSV writes the last non-empty series to dir.
func (s *Session) ExportCSV(dir string) (string, error) {
	series, err := s.latestSeries()
	if err != nil {
		return "", err
	}
	return export.SaveCSV(dir, series)
}

// ExportChart writes the line chart of the last non-empty series to dir.
func (s *Session) ExportChart(dir string) (string, error) {
	series, err := s.latestSeries()
	if err != nil {
		return "", err
	}
	return chart.Save(dir, series)
}

func (s *Session) latestSeries() (*model.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, ErrNoSeries
	}
	return s.latest, nil
}

func (s *Session) show(ctx context.Context, log zerolog.Logger, text string) {
	if err := s.display.Display(ctx, text); err != nil {
		log.Error().Err(err).Msg("display failed")
	}
}
