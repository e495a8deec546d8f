package model

// AlertKind tags the outcome of an alert evaluation.
type AlertKind string

const (
	AlertNoData          AlertKind = "NO_DATA"
	AlertInvalidBaseline AlertKind = "INVALID_BASELINE"
	AlertStable          AlertKind = "STABLE"
	AlertTriggered       AlertKind = "TRIGGERED"
)

// Direction of a triggered price move.
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionRisen  Direction = "risen"
	DirectionFallen Direction = "fallen"
)

// ComparisonBasis names the baseline a latest price was compared against.
type ComparisonBasis string

const (
	BasisNone             ComparisonBasis = ""
	BasisPreviousInSeries ComparisonBasis = "previous price in series"
	BasisPeriodOpen       ComparisonBasis = "opening price of the period"
	BasisPreviousRefresh  ComparisonBasis = "price from previous refresh"
)

// AlertResult is the rendering-agnostic output of the evaluator.
// ChangePercent, LatestPrice and Baseline are only meaningful for STABLE and TRIGGERED.
type AlertResult struct {
	Kind          AlertKind
	ChangePercent float64
	LatestPrice   float64
	Baseline      float64
	Direction     Direction
	Basis         ComparisonBasis
	Threshold     float64
	Message       string
}

// Triggered reports whether the threshold was reached.
func (r AlertResult) Triggered() bool { return r.Kind == AlertTriggered }

// Informational reports whether the result carries no price verdict.
func (r AlertResult) Informational() bool {
	return r.Kind == AlertNoData || r.Kind == AlertInvalidBaseline
}
