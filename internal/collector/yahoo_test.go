package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"StockPulse/internal/model"
)

const yahooOK = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"AAPL","exchangeTimezoneName":"America/New_York"},
	"timestamp":[1714570260,1714570200,1714570320],
	"indicators":{"quote":[{
		"open":[101.0,100.0,null],
		"high":[102.0,101.0,null],
		"low":[100.5,99.5,null],
		"close":[101.5,100.5,null],
		"volume":[2000,1000,null]
	}]}
}],"error":null}}`

const yahooNotFoundBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

type capturedRequest struct {
	URL *url.URL
}

func newYahooTestServer(t *testing.T, status int, body string) (*YahooFetcher, *capturedRequest) {
	t.Helper()
	last := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.URL = r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	f.Client = srv.Client()
	return f, last
}

func TestYahooFetch_ParsesAndSortsBars(t *testing.T) {
	f, req := newYahooTestServer(t, http.StatusOK, yahooOK)

	series, err := f.Fetch(context.Background(), "AAPL", model.Interval1h, model.Period5d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.Path != "/v8/finance/chart/AAPL" {
		t.Errorf("unexpected path %s", req.URL.Path)
	}
	if got := req.URL.Query().Get("interval"); got != "60m" {
		t.Errorf("expected interval 60m, got %s", got)
	}
	if got := req.URL.Query().Get("range"); got != "5d" {
		t.Errorf("expected range 5d, got %s", got)
	}

	if series.Len() != 2 {
		t.Fatalf("expected 2 bars (null bar skipped), got %d", series.Len())
	}
	if series.Bars[0].Close != 100.5 || series.Bars[1].Close != 101.5 {
		t.Errorf("bars not sorted ascending: %+v", series.Bars)
	}
	if series.Currency != "USD" {
		t.Errorf("expected currency USD, got %q", series.Currency)
	}
	if loc := series.Bars[0].Time.Location().String(); loc != "America/New_York" && loc != "UTC" {
		t.Errorf("unexpected location %s", loc)
	}
	if series.Symbol != "AAPL" || series.Interval != model.Interval1h || series.Period != model.Period5d {
		t.Errorf("request echo mismatch: %+v", series)
	}
}

func TestYahooFetch_MapsIndexSymbol(t *testing.T) {
	f, req := newYahooTestServer(t, http.StatusOK, yahooOK)
	if _, err := f.Fetch(context.Background(), "SPX", model.Interval1d, model.Period1mo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL.Path != "/v8/finance/chart/^GSPC" {
		t.Errorf("expected ^GSPC path, got %s", req.URL.Path)
	}
}

func TestYahooFetch_UnknownSymbolIsEmpty(t *testing.T) {
	f, _ := newYahooTestServer(t, http.StatusNotFound, yahooNotFoundBody)

	series, err := f.Fetch(context.Background(), "NOPE", model.Interval1d, model.Period1mo)
	if err != nil {
		t.Fatalf("unknown symbol must not be an error, got %v", err)
	}
	if !series.Empty() {
		t.Errorf("expected empty series, got %d bars", series.Len())
	}
}

func TestYahooFetch_NoTimestampsIsEmpty(t *testing.T) {
	f, _ := newYahooTestServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{},"indicators":{"quote":[{}]}}],"error":null}}`)

	series, err := f.Fetch(context.Background(), "AAPL", model.Interval1m, model.Period1d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !series.Empty() {
		t.Errorf("expected empty series")
	}
}

func TestYahooFetch_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{"server error", http.StatusInternalServerError, "oops", false},
		{"bad json", http.StatusOK, "{not json", true},
		{"short quote arrays", http.StatusOK, `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[1]}]}}]}}`, true},
		{"missing indicators", http.StatusOK, `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[]}}]}}`, true},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newYahooTestServer(t, tt.status, tt.body)
			series, err := f.Fetch(context.Background(), "AAPL", model.Interval1d, model.Period1mo)
			if err == nil {
				t.Fatalf("expected error, got series %+v", series)
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %T", err)
			}
			if fe.Source != "yahoo" || fe.Symbol != "AAPL" {
				t.Errorf("unexpected error fields %+v", fe)
			}
			if got := errors.Is(err, ErrMalformedResponse); got != tt.malformed {
				t.Errorf("errors.Is(ErrMalformedResponse) = %v, want %v", got, tt.malformed)
			}
		})
	}
}

func TestYahooFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.Fetch(context.Background(), "AAPL", model.Interval1d, model.Period1mo)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
}
