package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

func timeFormat(i model.Interval) string {
	if i.Intraday() {
		return "2006-01-02 15:04"
	}
	return "2006-01-02"
}

// FormatReport renders one refresh cycle: header, summary table, the last bars and the alert.
func FormatReport(series *model.PriceSeries, sum calculator.Summary, result model.AlertResult, tailRows int) string {
	var b strings.Builder
	layout := timeFormat(series.Interval)

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | Last Price: %.2f", html.EscapeString(series.Symbol), sum.LastClose))
	if series.Currency != "" {
		b.WriteString(" " + html.EscapeString(series.Currency))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Interval %s · Period %s · %d bars\n\n", series.Interval, series.Period, sum.Bars))

	// Summary table
	b.WriteString("<pre>")
	b.WriteString(fmt.Sprintf("%-8s %12.2f\n", "Open", sum.FirstOpen))
	b.WriteString(fmt.Sprintf("%-8s %12.2f\n", "High", sum.High))
	b.WriteString(fmt.Sprintf("%-8s %12.2f\n", "Low", sum.Low))
	b.WriteString(fmt.Sprintf("%-8s %12.2f\n", "Close", sum.LastClose))
	b.WriteString(fmt.Sprintf("%-8s %+11.2f%%\n", "Change", sum.ChangePercent))
	b.WriteString(fmt.Sprintf("%-8s %12.0f\n", "Volume", sum.TotalVolume))
	b.WriteString(fmt.Sprintf("%-8s %s\n", "From", sum.From.Format(layout)))
	b.WriteString(fmt.Sprintf("%-8s %s\n", "To", sum.To.Format(layout)))
	b.WriteString("</pre>\n")

	// Latest bars
	if tail := series.Tail(tailRows); len(tail) > 0 {
		b.WriteString("<b>Latest bars</b>\n<pre>")
		b.WriteString(fmt.Sprintf("%-16s %10s %10s %10s %10s %12s\n", "Datetime", "Open", "High", "Low", "Close", "Volume"))
		for _, bar := range tail {
			b.WriteString(fmt.Sprintf("%-16s %10.2f %10.2f %10.2f %10.2f %12.0f\n",
				bar.Time.Format(layout), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
		}
		b.WriteString("</pre>\n")
	}

	b.WriteString("\n" + FormatAlert(result))
	return b.String()
}

// FormatAlert renders the evaluator message, bolding triggered alerts.
func FormatAlert(result model.AlertResult) string {
	msg := html.EscapeString(result.Message)
	if result.Triggered() {
		return "<b>" + msg + "</b>"
	}
	return msg
}

// FormatNoData is shown when the vendor returned no bars.
func FormatNoData(p model.Params) string {
	return fmt.Sprintf("⚠️ No data found for <b>%s</b> (%s / %s)!", html.EscapeString(p.Symbol), p.Interval, p.Period)
}

// FormatFetchFailure is shown when the vendor call failed.
func FormatFetchFailure(p model.Params, err error) string {
	return fmt.Sprintf("⚠️ Failed to fetch data for <b>%s</b>: %s", html.EscapeString(p.Symbol), html.EscapeString(err.Error()))
}

// FormatStatus shows the current query and the time of the last refresh.
func FormatStatus(p model.Params, lastRefresh time.Time) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Dashboard settings</b>\n\n")
	b.WriteString(fmt.Sprintf("Symbol: %s\n", html.EscapeString(p.Symbol)))
	b.WriteString(fmt.Sprintf("Interval: %s\n", p.Interval))
	b.WriteString(fmt.Sprintf("Period: %s\n", p.Period))
	b.WriteString(fmt.Sprintf("Alert threshold: %.2f%%\n", p.Threshold))
	if lastRefresh.IsZero() {
		b.WriteString("Last refresh: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last refresh: %s\n", lastRefresh.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	intervals := make([]string, len(model.Intervals))
	for i, v := range model.Intervals {
		intervals[i] = string(v)
	}
	periods := make([]string, len(model.Periods))
	for i, v := range model.Periods {
		periods[i] = string(v)
	}
	return "Available commands:\n" +
		"• /watch SYMBOL [INTERVAL] [PERIOD] [THRESHOLD]\n" +
		"• /refresh\n" +
		"• /threshold PERCENT\n" +
		"• /status\n" +
		"• /csv\n" +
		"• /chart\n\n" +
		"Intervals: " + strings.Join(intervals, ", ") + "\n" +
		"Periods: " + strings.Join(periods, ", ") + "\n" +
		fmt.Sprintf("Threshold: %.0f-%.0f%%", model.MinThreshold, model.MaxThreshold)
}
