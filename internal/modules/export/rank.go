// Package export publishes screening reports to the console, spreadsheets and the clipboard.
package export

import (
	"math"
	"slices"
	"strconv"

	"github.com/aristath/screener/internal/modules/screening"
)

// RankKept returns the kept rows sorted by score, highest first, truncated to n.
// NaN scores sort last; ties keep input order. n <= 0 returns every row.
func RankKept(kept []screening.KeptRecord, n int) []screening.KeptRecord {
	out := slices.Clone(kept)
	slices.SortStableFunc(out, func(a, b screening.KeptRecord) int {
		return compareScores(a.Score, b.Score)
	})
	return truncate(out, n)
}

// RankEliminated orders eliminated rows the same way as RankKept
func RankEliminated(eliminated []screening.EliminatedRecord, n int) []screening.EliminatedRecord {
	out := slices.Clone(eliminated)
	slices.SortStableFunc(out, func(a, b screening.EliminatedRecord) int {
		return compareScores(a.Score, b.Score)
	})
	return truncate(out, n)
}

func compareScores(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func truncate[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

var (
	keptHeader       = []string{"Ticker", "Score", "Volatility", "Inv Volatility", "Fast MA", "Slow MA", "Median Volume"}
	eliminatedHeader = []string{"Ticker", "Score", "Volatility", "Reason", "Description", "Detail"}
)

func formatFloat(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func keptRow(r screening.KeptRecord) []string {
	return []string{
		r.ID,
		formatFloat(r.Score, 2),
		formatFloat(r.Volatility, 4),
		formatFloat(r.InverseVolatility, 4),
		formatFloat(r.FastMA, 2),
		formatFloat(r.SlowMA, 2),
		formatFloat(r.MedianVolume, 0),
	}
}

func eliminatedRow(r screening.EliminatedRecord) []string {
	return []string{
		r.ID,
		formatFloat(r.Score, 2),
		formatFloat(r.Volatility, 4),
		string(r.Reason),
		r.ReasonText,
		r.Detail,
	}
}
