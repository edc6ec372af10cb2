package screening

// KeptRecord is a row of the kept table
type KeptRecord struct {
	ID                string  `json:"id"`
	Score             float64 `json:"score"`
	Volatility        float64 `json:"volatility"`
	InverseVolatility float64 `json:"inverse_volatility"`
	FastMA            float64 `json:"fast_ma"`
	SlowMA            float64 `json:"slow_ma"`
	MedianVolume      float64 `json:"median_volume"`
}

// EliminatedRecord is a row of the eliminated table
type EliminatedRecord struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	Volatility float64 `json:"volatility"`
	Reason     Reason  `json:"reason"`
	ReasonText string  `json:"reason_text"`
	Detail     string  `json:"detail,omitempty"`
}

// Results holds the two output tables in input order
type Results struct {
	Kept       []KeptRecord
	Eliminated []EliminatedRecord
}

// Len returns the total number of rows across both tables
func (r Results) Len() int {
	return len(r.Kept) + len(r.Eliminated)
}

// Assembler fans verdicts into the kept and eliminated tables.
// Rows are appended in arrival order and never merged, so duplicate
// identifiers produce duplicate rows.
type Assembler struct {
	kept       []KeptRecord
	eliminated []EliminatedRecord
}

// NewAssembler creates an assembler sized for capacity verdicts
func NewAssembler(capacity int) *Assembler {
	return &Assembler{
		kept:       make([]KeptRecord, 0, capacity),
		eliminated: make([]EliminatedRecord, 0, capacity/4),
	}
}

// Add appends one verdict to the matching table
func (a *Assembler) Add(v Verdict) {
	m := v.Metrics
	if v.Kept {
		a.kept = append(a.kept, KeptRecord{
			ID:                m.ID,
			Score:             m.MomentumScore,
			Volatility:        m.Volatility,
			InverseVolatility: m.InverseVolatility,
			FastMA:            m.FastMA,
			SlowMA:            m.SlowMA,
			MedianVolume:      m.MedianVolume,
		})
		return
	}

	text := v.Text
	if text == "" {
		text = v.Reason.Description()
	}
	a.eliminated = append(a.eliminated, EliminatedRecord{
		ID:         m.ID,
		Score:      m.MomentumScore,
		Volatility: m.Volatility,
		Reason:     v.Reason,
		ReasonText: text,
		Detail:     v.Detail,
	})
}

// Results materializes both tables. The assembler can keep receiving verdicts
// afterwards; earlier results are not affected.
func (a *Assembler) Results() Results {
	kept := make([]KeptRecord, len(a.kept))
	copy(kept, a.kept)
	eliminated := make([]EliminatedRecord, len(a.eliminated))
	copy(eliminated, a.eliminated)

	return Results{Kept: kept, Eliminated: eliminated}
}
