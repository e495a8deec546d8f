package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockPulse/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// yahooNotFound is the error code Yahoo returns for unknown or delisted symbols.
const yahooNotFound = "Not Found"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps display symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func yahooInterval(i model.Interval) string {
	if i == model.Interval1h {
		return "60m"
	}
	return string(i)
}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Prices are pointers because Yahoo emits null for bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, interval model.Interval, period model.Period) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooInterval(interval), period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fetchErr(f.Name(), symbol, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fetchErr(f.Name(), symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchErr(f.Name(), symbol, fmt.Errorf("read body: %w", err))
	}

	// Yahoo answers unknown symbols with 404 and a JSON error body, so decode before
	// looking at the status.
	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if decodeErr == nil && chart.Chart.Error != nil && chart.Chart.Error.Code == yahooNotFound {
		return f.empty(symbol, interval, period), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fetchErr(f.Name(), symbol, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 256)))
	}
	if decodeErr != nil {
		return nil, fetchErr(f.Name(), symbol, malformed("decode: %v", decodeErr))
	}
	if chart.Chart.Error != nil {
		return nil, fetchErr(f.Name(), symbol, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return f.empty(symbol, interval, period), nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fetchErr(f.Name(), symbol, malformed("no quote indicators"))
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return nil, fetchErr(f.Name(), symbol, malformed("%d timestamps but quote arrays of %d/%d/%d/%d",
			n, len(quote.Open), len(quote.High), len(quote.Low), len(quote.Close)))
	}

	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	bars := make([]model.OHLCV, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue // no trades in this bucket
		}
		var vol float64
		if i < len(quote.Volume) {
			vol = value(quote.Volume[i])
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   value(quote.Open[i]),
			High:   value(quote.High[i]),
			Low:    value(quote.Low[i]),
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	series := f.empty(symbol, interval, period)
	series.Currency = result.Meta.Currency
	series.Bars = bars
	return series, nil
}

func (f *YahooFetcher) empty(symbol string, interval model.Interval, period model.Period) *model.PriceSeries {
	s := emptySeries(symbol, interval, period)
	s.FetchedAt = time.Now()
	return s
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
