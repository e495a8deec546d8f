package alert

import (
	"fmt"

	"StockPulse/internal/model"
)

const noDataMessage = "ℹ️ No price data available, cannot check alert."

func invalidBaselineMessage(basis model.ComparisonBasis) string {
	switch basis {
	case model.BasisPeriodOpen:
		return "ℹ️ Opening price is zero, cannot calculate change."
	case model.BasisPreviousRefresh:
		return "ℹ️ Price from previous refresh is zero, cannot calculate change."
	default:
		return "ℹ️ Previous price is zero, cannot calculate change."
	}
}

func triggeredMessage(r model.AlertResult) string {
	return fmt.Sprintf("🚨 ALERT: Price has %s by %.2f%% (compared to %s). Latest: $%.2f",
		r.Direction, r.ChangePercent, r.Basis, r.LatestPrice)
}

func stableMessage(r model.AlertResult) string {
	return fmt.Sprintf("✅ STABLE: Price change is %.2f%% (compared to %s). Latest: $%.2f",
		r.ChangePercent, r.Basis, r.LatestPrice)
}
