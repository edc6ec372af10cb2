package screening

import (
	"fmt"
	"strconv"

	"github.com/aristath/screener/internal/domain"
	"github.com/aristath/screener/pkg/formulas"
)

// Reason identifies why an instrument was eliminated
type Reason string

const (
	// ReasonTooYoung: fewer observations than Rules.MinHistory
	ReasonTooYoung Reason = "too_young"
	// ReasonInvalidData: metrics could not be computed from the series
	ReasonInvalidData Reason = "invalid_data"
	// ReasonIlliquid: median volume below Rules.MinMedianVolume
	ReasonIlliquid Reason = "illiquid"
	// ReasonSuspended: too many zero-volume days inside the momentum window
	ReasonSuspended Reason = "suspended"
)

// Reasons lists every elimination reason in rule priority order
func Reasons() []Reason {
	return []Reason{ReasonTooYoung, ReasonInvalidData, ReasonIlliquid, ReasonSuspended}
}

// Description returns a human-readable explanation without thresholds.
// Rules.Describe gives the wording for a concrete configuration.
func (r Reason) Description() string {
	switch r {
	case ReasonTooYoung:
		return "price history shorter than the minimum"
	case ReasonInvalidData:
		return "price history could not be scored"
	case ReasonIlliquid:
		return "median volume below the liquidity floor"
	case ReasonSuspended:
		return "too many zero-volume days in the momentum window"
	default:
		return string(r)
	}
}

// Describe returns the explanation for r using the configured thresholds
func (r Rules) Describe(reason Reason) string {
	switch reason {
	case ReasonTooYoung:
		return fmt.Sprintf("fewer than %d observations", r.MinHistory)
	case ReasonIlliquid:
		return "median volume below " + strconv.FormatFloat(r.MinMedianVolume, 'f', -1, 64)
	case ReasonSuspended:
		return fmt.Sprintf("more than %d zero-volume days in the momentum window", r.MaxZeroVolumeDays)
	default:
		return reason.Description()
	}
}

// Verdict is the outcome of evaluating one instrument
type Verdict struct {
	Metrics InstrumentMetrics
	Kept    bool
	Reason  Reason // Empty when kept
	Text    string // Human-readable reason, empty when kept
	Detail  string // Error text for invalid data
}

// Eliminator applies the disqualification rules. The first matching rule wins:
// age, then data validity, then liquidity, then suspension history. Age comes
// first because it only needs the series length; the rolling metrics of a young
// instrument are not trusted for any other verdict.
type Eliminator struct {
	rules          Rules
	momentumWindow int
}

// NewEliminator creates an eliminator. The momentum window bounds the
// suspension check.
func NewEliminator(rules Rules, momentumWindow int) *Eliminator {
	return &Eliminator{rules: rules, momentumWindow: momentumWindow}
}

// Evaluate routes one instrument to kept or eliminated.
// metricsErr is the error returned by Calculator.Compute, if any.
func (e *Eliminator) Evaluate(inst domain.Instrument, m InstrumentMetrics, metricsErr error) Verdict {
	switch {
	case inst.Series.Len() < e.rules.MinHistory:
		return e.eliminate(m, ReasonTooYoung, "")

	case metricsErr != nil:
		return e.eliminate(m, ReasonInvalidData, metricsErr.Error())

	// NaN never compares below the floor, so an undefined median does not eliminate
	case m.MedianVolume < e.rules.MinMedianVolume:
		return e.eliminate(m, ReasonIlliquid, "")

	case e.zeroVolumeDays(inst.Series) > e.rules.MaxZeroVolumeDays:
		return e.eliminate(m, ReasonSuspended, "")
	}

	return Verdict{Metrics: m, Kept: true}
}

func (e *Eliminator) eliminate(m InstrumentMetrics, reason Reason, detail string) Verdict {
	return Verdict{Metrics: m, Reason: reason, Text: e.rules.Describe(reason), Detail: detail}
}

func (e *Eliminator) zeroVolumeDays(series domain.Series) int {
	return formulas.CountEqualLast(series.Volumes(), e.momentumWindow, 0)
}
