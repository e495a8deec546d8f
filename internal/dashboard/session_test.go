package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockPulse/internal/collector"
	"StockPulse/internal/model"
)

type recordingDisplay struct {
	messages []string
	err      error
}

func (r *recordingDisplay) Display(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func (r *recordingDisplay) last() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

func bars(closes ...float64) []model.OHLCV {
	t0 := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{Time: t0.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 10}
	}
	return out
}

var defaultParams = model.Params{Symbol: "AAPL", Interval: model.Interval1m, Period: model.Period1d, Threshold: 5}

func newTestSession(t *testing.T, f collector.Fetcher, opts Options) (*Session, *recordingDisplay) {
	t.Helper()
	d := &recordingDisplay{}
	s, err := NewSession(f, d, defaultParams, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, d
}

func TestRefresh_Triggered(t *testing.T) {
	s, d := newTestSession(t, &collector.MockFetcher{Bars: bars(100, 107)}, Options{TailRows: 5})

	c, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" {
		t.Error("expected a cycle id")
	}
	if c.Result.Kind != model.AlertTriggered || c.Result.Direction != model.DirectionRisen {
		t.Errorf("expected TRIGGERED risen, got %+v", c.Result)
	}
	if c.Summary.Bars != 2 || c.Summary.LastClose != 107 {
		t.Errorf("unexpected summary %+v", c.Summary)
	}
	if len(d.messages) != 1 || !strings.Contains(d.last(), "🚨 ALERT: Price has risen by 7.00%") {
		t.Errorf("expected alert report, got %v", d.messages)
	}
	if s.LastCycle() != c {
		t.Error("LastCycle should return the latest cycle")
	}
}

func TestRefresh_EmptyIsNotAnError(t *testing.T) {
	s, d := newTestSession(t, &collector.MockFetcher{}, Options{})

	c, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("empty result must not be an error, got %v", err)
	}
	if c.Result.Kind != model.AlertNoData {
		t.Errorf("expected NO_DATA, got %s", c.Result.Kind)
	}
	if !strings.HasPrefix(d.last(), "⚠️ No data found for <b>AAPL</b>") {
		t.Errorf("unexpected display %q", d.last())
	}
}

func TestRefresh_FetchFailure(t *testing.T) {
	boom := errors.New("connection reset")
	s, d := newTestSession(t, &collector.MockFetcher{Err: boom}, Options{})

	c, err := s.Refresh(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	var fe *collector.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected *collector.FetchError in chain, got %T", err)
	}
	if c.Err == nil || c.Series != nil {
		t.Errorf("cycle should record the failure: %+v", c)
	}
	if !strings.HasPrefix(d.last(), "⚠️ Failed to fetch data for <b>AAPL</b>") {
		t.Errorf("unexpected display %q", d.last())
	}
}

func TestRefresh_DisplayErrorDoesNotFailCycle(t *testing.T) {
	s, d := newTestSession(t, &collector.MockFetcher{Bars: bars(100, 101)}, Options{})
	d.err = errors.New("telegram down")
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Errorf("display errors are logged, not returned: %v", err)
	}
}

func TestRefresh_ComparePreviousRefresh(t *testing.T) {
	f := &collector.MockFetcher{Bars: bars(99, 100)}
	s, _ := newTestSession(t, f, Options{ComparePreviousRefresh: true})
	ctx := context.Background()

	first, _ := s.Refresh(ctx)
	if first.Result.Basis != model.BasisPreviousInSeries {
		t.Errorf("first cycle has no previous refresh, got basis %q", first.Result.Basis)
	}

	f.Bars = bars(104, 106)
	second, _ := s.Refresh(ctx)
	if second.Result.Basis != model.BasisPreviousRefresh || second.Result.Baseline != 100 {
		t.Errorf("expected comparison with previous refresh close 100, got %+v", second.Result)
	}
	if second.Result.Kind != model.AlertTriggered {
		t.Errorf("100 -> 106 should trigger at 5%%, got %s", second.Result.Kind)
	}

	// Switching symbol forgets the previous series.
	p := s.Params()
	p.Symbol = "msft"
	if err := s.SetParams(p); err != nil {
		t.Fatalf("set params: %v", err)
	}
	third, _ := s.Refresh(ctx)
	if third.Result.Basis != model.BasisPreviousInSeries {
		t.Errorf("new symbol must not compare with old series, got basis %q", third.Result.Basis)
	}
	if third.Params.Symbol != "MSFT" {
		t.Errorf("expected normalized symbol MSFT, got %s", third.Params.Symbol)
	}
}

func TestSetParams_Validation(t *testing.T) {
	s, _ := newTestSession(t, &collector.MockFetcher{}, Options{})
	bad := defaultParams
	bad.Threshold = 0
	if err := s.SetParams(bad); !errors.Is(err, model.ErrInvalidThreshold) {
		t.Errorf("expected ErrInvalidThreshold, got %v", err)
	}
	if s.Params() != defaultParams {
		t.Error("invalid params must not be installed")
	}

	if _, err := NewSession(&collector.MockFetcher{}, &recordingDisplay{}, model.Params{}, Options{}, zerolog.Nop()); err == nil {
		t.Error("expected error for empty params")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, &collector.MockFetcher{Bars: bars(100, 101)}, Options{ExportDir: dir})

	if _, err := s.ExportCSV(dir); !errors.Is(err, ErrNoSeries) {
		t.Errorf("expected ErrNoSeries before first refresh, got %v", err)
	}

	c, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c.ExportPath != filepath.Join(dir, "AAPL_data.csv") {
		t.Errorf("unexpected export path %q", c.ExportPath)
	}
	if _, err := os.Stat(c.ExportPath); err != nil {
		t.Errorf("export file missing: %v", err)
	}
	if c.ChartPath != filepath.Join(dir, "AAPL_chart.html") {
		t.Errorf("unexpected chart path %q", c.ChartPath)
	}
	page, err := os.ReadFile(c.ChartPath)
	if err != nil || !strings.Contains(string(page), "AAPL Price Over Time") {
		t.Errorf("chart file missing or untitled: %v", err)
	}

	other := t.TempDir()
	path, err := s.ExportCSV(other)
	if err != nil || filepath.Dir(path) != other {
		t.Errorf("manual export failed: %s %v", path, err)
	}
}

func TestExport_KeepsLastSeriesAfterFailure(t *testing.T) {
	f := &collector.MockFetcher{Bars: bars(100, 101)}
	s, _ := newTestSession(t, f, Options{})
	ctx := context.Background()

	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	f.Err = errors.New("connection reset")
	if _, err := s.Refresh(ctx); err == nil {
		t.Fatal("expected second refresh to fail")
	}

	dir := t.TempDir()
	if _, err := s.ExportCSV(dir); err != nil {
		t.Errorf("csv export should use the last good series: %v", err)
	}
	path, err := s.ExportChart(dir)
	if err != nil {
		t.Fatalf("chart export should use the last good series: %v", err)
	}
	page, _ := os.ReadFile(path)
	if !strings.Contains(string(page), "101") {
		t.Error("chart is missing the last close")
	}
}

func TestExport_EmptyFetchDoesNotReplaceSeries(t *testing.T) {
	f := &collector.MockFetcher{Bars: bars(100, 101)}
	s, _ := newTestSession(t, f, Options{})
	ctx := context.Background()

	if _, err := s.ExportChart(t.TempDir()); !errors.Is(err, ErrNoSeries) {
		t.Errorf("expected ErrNoSeries before first refresh, got %v", err)
	}
	s.Refresh(ctx)
	f.Bars = nil
	s.Refresh(ctx)

	path, err := s.ExportCSV(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("expected header + 2 rows from the earlier fetch, got %d lines", lines)
	}
}
