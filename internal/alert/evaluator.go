package alert

import (
	"math"

	"StockPulse/internal/model"
)

// Evaluate decides whether the latest price moved by at least thresholdPercent.
//
// With two or more bars the last close is compared with the second-to-last close.
// With a single bar its close is compared with its own open. Empty input and a zero
// baseline are reported through the result kind, never as an error or panic.
func Evaluate(series *model.PriceSeries, thresholdPercent float64) model.AlertResult {
	n := series.Len()
	if n == 0 {
		return noData(thresholdPercent)
	}

	var latest, baseline float64
	var basis model.ComparisonBasis
	if n >= 2 {
		latest = series.Bars[n-1].Close
		baseline = series.Bars[n-2].Close
		basis = model.BasisPreviousInSeries
	} else {
		latest = series.Bars[0].Close
		baseline = series.Bars[0].Open
		basis = model.BasisPeriodOpen
	}
	return compare(latest, baseline, basis, thresholdPercent)
}

// EvaluateAgainstPrevious compares the latest close of current with the latest close of
// the series fetched in the previous refresh cycle. Without a usable previous series it
// falls back to Evaluate.
func EvaluateAgainstPrevious(current, previous *model.PriceSeries, thresholdPercent float64) model.AlertResult {
	cur, ok := current.Latest()
	if !ok {
		return noData(thresholdPercent)
	}
	prev, ok := previous.Latest()
	if !ok {
		return Evaluate(current, thresholdPercent)
	}
	return compare(cur.Close, prev.Close, model.BasisPreviousRefresh, thresholdPercent)
}

func compare(latest, baseline float64, basis model.ComparisonBasis, thresholdPercent float64) model.AlertResult {
	res := model.AlertResult{
		LatestPrice: latest,
		Baseline:    baseline,
		Basis:       basis,
		Threshold:   thresholdPercent,
	}
	if baseline == 0 {
		res.Kind = model.AlertInvalidBaseline
		res.Message = invalidBaselineMessage(basis)
		return res
	}

	change := (latest - baseline) / baseline * 100
	res.ChangePercent = change

	// A flat price never triggers, even for a non-positive threshold.
	if change != 0 && math.Abs(change) >= thresholdPercent {
		res.Kind = model.AlertTriggered
		if change > 0 {
			res.Direction = model.DirectionRisen
		} else {
			res.Direction = model.DirectionFallen
		}
		res.Message = triggeredMessage(res)
		return res
	}

	res.Kind = model.AlertStable
	res.Message = stableMessage(res)
	return res
}

func noData(thresholdPercent float64) model.AlertResult {
	return model.AlertResult{
		Kind:      model.AlertNoData,
		Threshold: thresholdPercent,
		Message:   noDataMessage,
	}
}
